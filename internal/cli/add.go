package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/pkg/models"
)

var (
	addSector   string
	addPriority string
	addDesc     string
	addRequires []string
	addAgent    string
	addActor    string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task to a sector",
	Long: `Add a task to a sector of the board.

The task starts ready unless --requires names unfinished tasks, in which
case it starts locked and unlocks automatically when the last requirement
is completed. Multi-word titles do not need quoting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		title := strings.Join(args, " ")
		res, err := Svc.AddTask(addSector, title, core.AddTaskOpts{
			Description: addDesc,
			Priority:    models.Priority(addPriority),
			Requires:    addRequires,
			Agent:       addAgent,
			Actor:       addActor,
		})
		if err != nil {
			return err
		}

		printTaskCreated(res.Task)
		return nil
	},
}

var (
	subtaskPriority string
	subtaskDesc     string
	subtaskAgent    string
	subtaskActor    string
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask <parent-id> <title>",
	Short: "Add a subtask under an existing task",
	Long: `Add a subtask under an existing task.

The subtask lives in the parent's sector and inherits the parent's
priority unless --priority overrides it. Subtasks participate in
dependencies like any other task but are excluded from the diagram.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		parentID := args[0]
		title := strings.Join(args[1:], " ")
		res, err := Svc.AddSubtask(parentID, title, core.AddTaskOpts{
			Description: subtaskDesc,
			Priority:    models.Priority(subtaskPriority),
			Agent:       subtaskAgent,
			Actor:       subtaskActor,
		})
		if err != nil {
			return err
		}

		printTaskCreated(res.Task)
		fmt.Printf("  Parent:   %s\n", res.Task.ParentID)
		return nil
	},
}

// printTaskCreated prints the summary block shown after task creation.
func printTaskCreated(task *models.Task) {
	fmt.Printf("Created %s\n", task.ID)
	fmt.Printf("  Title:    %s\n", task.Title)
	fmt.Printf("  Sector:   %s\n", task.Sector)
	fmt.Printf("  Priority: %s\n", task.Priority)
	fmt.Printf("  Status:   %s\n", task.Status)
	if len(task.Requires) > 0 {
		fmt.Printf("  Requires: %s\n", strings.Join(task.Requires, ", "))
	}
}

func init() {
	addCmd.Flags().StringVarP(&addSector, "sector", "s", "", "Sector to add the task to (required)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority: critical, high, medium, low (default medium)")
	addCmd.Flags().StringVarP(&addDesc, "desc", "d", "", "Task description")
	addCmd.Flags().StringSliceVarP(&addRequires, "requires", "r", nil, "Task IDs this task requires (repeatable)")
	addCmd.Flags().StringVar(&addAgent, "agent", "", "Team member the task is assigned to")
	addCmd.Flags().StringVar(&addActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	_ = addCmd.MarkFlagRequired("sector")
	_ = addCmd.RegisterFlagCompletionFunc("sector", completeSectors)
	_ = addCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	_ = addCmd.RegisterFlagCompletionFunc("requires", completeTaskIDs())
	rootCmd.AddCommand(addCmd)

	subtaskCmd.Flags().StringVarP(&subtaskPriority, "priority", "p", "", "Priority (defaults to the parent's priority)")
	subtaskCmd.Flags().StringVarP(&subtaskDesc, "desc", "d", "", "Subtask description")
	subtaskCmd.Flags().StringVar(&subtaskAgent, "agent", "", "Team member the subtask is assigned to")
	subtaskCmd.Flags().StringVar(&subtaskActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	_ = subtaskCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	subtaskCmd.ValidArgsFunction = completeFirstArgTaskIDs()
	rootCmd.AddCommand(subtaskCmd)
}
