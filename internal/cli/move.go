package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveActor string

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <sector>",
	Short: "Move a task to another sector",
	Long: `Move a task to another sector of the board.

Moving never touches status or dependencies; a locked task stays locked
and its requirements still point at the same tasks.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.MoveTask(args[0], args[1], moveActor)
		if err != nil {
			return err
		}

		fmt.Printf("Moved %s to %s\n", res.Task.ID, res.Task.Sector)
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	moveCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return completeTaskIDs()(cmd, args, toComplete)
		}
		if len(args) == 1 {
			return completeSectors(cmd, args, toComplete)
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	rootCmd.AddCommand(moveCmd)
}
