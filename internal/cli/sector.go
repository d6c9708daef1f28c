package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/pkg/models"
)

var (
	sectorIcon  string
	sectorColor string
)

var sectorCmd = &cobra.Command{
	Use:   "sector",
	Short: "Manage board sectors",
	Long:  "Commands for listing the board's sectors and adding new ones.",
}

var sectorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the board's sectors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		sectors, err := Svc.Sectors()
		if err != nil {
			return err
		}

		for _, sector := range sectors {
			fmt.Printf("  %s %-10s %s\n", sector.Icon, sector.ID, sector.Name)
		}
		return nil
	},
}

var sectorAddCmd = &cobra.Command{
	Use:   "add <id> <name>",
	Short: "Add a sector to the board",
	Long: `Add a sector to the board.

Sector IDs are unique and immutable; there is no rename or remove.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		sector := models.Sector{
			ID:    args[0],
			Name:  args[1],
			Icon:  sectorIcon,
			Color: sectorColor,
		}
		if err := Svc.AddSector(sector); err != nil {
			return err
		}

		fmt.Printf("Added sector %s (%s)\n", sector.ID, sector.Name)
		return nil
	},
}

func init() {
	sectorAddCmd.Flags().StringVar(&sectorIcon, "icon", "", "Icon shown next to the sector name")
	sectorAddCmd.Flags().StringVar(&sectorColor, "color", "", "ANSI color code for the sector")
	sectorCmd.AddCommand(sectorListCmd)
	sectorCmd.AddCommand(sectorAddCmd)
	rootCmd.AddCommand(sectorCmd)
}
