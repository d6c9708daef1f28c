package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/pkg/models"
)

var startActor string

var startCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start working on a ready task",
	Long: `Mark a ready task as in progress.

Only ready tasks can be started; locked tasks must wait for their
requirements to complete. When no task ID is given, an interactive
picker lists the ready queue.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		var taskID string
		if len(args) > 0 {
			taskID = args[0]
		} else {
			picked, err := pickReadyTask("Start which task?")
			if err != nil {
				return err
			}
			taskID = picked
		}

		res, err := Svc.StartTask(taskID, startActor)
		if err != nil {
			return err
		}

		fmt.Printf("Started %s: %s\n", res.Task.ID, res.Task.Title)
		return nil
	},
}

func init() {
	startCmd.Flags().StringVar(&startActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	startCmd.ValidArgsFunction = completeTaskIDs(models.StatusReady)
	rootCmd.AddCommand(startCmd)
}
