package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new board file",
	Long: `Create a new board file in the current board directory using the
sectors from configuration (or the default design, gameplay, art, audio
and qa sectors when no .boardrc.yaml is present).

Fails if a board file already exists -- init never overwrites a board.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil || Config == nil {
			return fmt.Errorf("board service not initialized")
		}

		if err := Svc.Init(Config.Sectors); err != nil {
			return err
		}

		fmt.Printf("Board created at %s\n\nSectors:\n", Svc.Path())
		for _, sector := range Config.Sectors {
			fmt.Printf("  %s %-10s %s\n", sector.Icon, sector.ID, sector.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
