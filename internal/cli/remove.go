package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <task-id>",
	Short: "Remove a task and its subtasks from the board",
	Long: `Remove a task from the board, along with all of its subtasks.

Other tasks keep their requirement entries pointing at the removed ID;
those entries become dangling and no longer block anything. Locked tasks
whose only unfinished requirement was the removed task become ready.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.RemoveTask(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Removed %s: %s\n", res.Task.ID, res.Task.Title)
		for _, id := range res.Removed {
			fmt.Printf("  Removed subtask %s\n", id)
		}
		for _, task := range res.Affected {
			fmt.Printf("  Unlocked %s: %s\n", task.ID, task.Title)
		}
		return nil
	},
}

func init() {
	removeCmd.ValidArgsFunction = completeTaskIDs()
	rootCmd.AddCommand(removeCmd)
}
