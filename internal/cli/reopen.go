package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/pkg/models"
)

var reopenActor string

var reopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Reopen a completed task",
	Long: `Send a done task back to the board for another iteration.

Tasks that depend on the reopened task and were sitting ready fall back
to locked until it is completed again; the relocked tasks are listed.
Tasks already in progress or done keep their status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.ReopenTask(args[0], reopenActor)
		if err != nil {
			return err
		}

		fmt.Printf("Reopened %s: %s (iteration %d, now %s)\n",
			res.Task.ID, res.Task.Title, res.Task.Iteration, res.Task.Status)
		for _, task := range res.Affected {
			fmt.Printf("  Relocked %s: %s\n", task.ID, task.Title)
		}
		return nil
	},
}

func init() {
	reopenCmd.Flags().StringVar(&reopenActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	reopenCmd.ValidArgsFunction = completeTaskIDs(models.StatusDone)
	rootCmd.AddCommand(reopenCmd)
}
