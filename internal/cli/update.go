package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/pkg/models"
)

var (
	updateTitle    string
	updateDesc     string
	updatePriority string
	updateAgent    string
	updateActor    string
)

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Edit a task's title, description, priority or assignee",
	Long: `Edit the descriptive fields of a task.

At least one of --title, --desc, --priority or --agent must be given.
Status is never edited directly; use start, done and reopen for that.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.UpdateTask(args[0], core.TaskUpdate{
			Title:       updateTitle,
			Description: updateDesc,
			Priority:    models.Priority(updatePriority),
			Agent:       updateAgent,
			Actor:       updateActor,
		})
		if err != nil {
			return err
		}

		note := ""
		if entry := latestHistory(res.Task); entry != nil {
			note = entry.Note
		}
		fmt.Printf("Updated %s (%s)\n", res.Task.ID, note)
		return nil
	},
}

// latestHistory returns the most recent history entry, or nil.
func latestHistory(task *models.Task) *models.HistoryEntry {
	if len(task.History) == 0 {
		return nil
	}
	return &task.History[len(task.History)-1]
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDesc, "desc", "d", "", "New description")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "New priority: critical, high, medium, low")
	updateCmd.Flags().StringVar(&updateAgent, "agent", "", "New assignee")
	updateCmd.Flags().StringVar(&updateActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	_ = updateCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	updateCmd.ValidArgsFunction = completeFirstArgTaskIDs()
	rootCmd.AddCommand(updateCmd)
}
