package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <sector> <task-id>...",
	Short: "Reorder a sector's ready queue",
	Long: `Rewrite the display order of a sector's ready queue.

The task IDs must be exactly the ready tasks of the sector, each exactly
once, in the desired order. Reordering is presentational: it never
changes status, dependencies or history.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		sectorID := args[0]
		ids := args[1:]
		if err := Svc.ReorderQueue(sectorID, ids); err != nil {
			return err
		}

		fmt.Printf("Reordered %s queue: %s\n", sectorID, strings.Join(ids, ", "))
		return nil
	},
}

func init() {
	reorderCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return completeSectors(cmd, args, toComplete)
		}
		return completeTaskIDs()(cmd, args, toComplete)
	}
	rootCmd.AddCommand(reorderCmd)
}
