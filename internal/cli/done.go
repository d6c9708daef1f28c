package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/pkg/models"
)

var doneActor string

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Complete a task",
	Long: `Mark a ready or in-progress task as done.

Completing a task re-checks every task that requires it; any task whose
last unfinished requirement this was becomes ready, and the unlocked
tasks are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.CompleteTask(args[0], doneActor)
		if err != nil {
			return err
		}

		fmt.Printf("Completed %s: %s\n", res.Task.ID, res.Task.Title)
		for _, task := range res.Affected {
			fmt.Printf("  Unlocked %s: %s\n", task.ID, task.Title)
		}
		return nil
	},
}

func init() {
	doneCmd.Flags().StringVar(&doneActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	doneCmd.ValidArgsFunction = completeTaskIDs(models.StatusReady, models.StatusInProgress)
	rootCmd.AddCommand(doneCmd)
}
