package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task's full detail and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		task, err := Svc.Task(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", task.ID, task.Title)
		if task.Description != "" {
			fmt.Printf("  Description: %s\n", task.Description)
		}
		fmt.Printf("  Sector:      %s\n", task.Sector)
		fmt.Printf("  Priority:    %s\n", task.Priority)
		fmt.Printf("  Status:      %s\n", task.Status)
		if task.Agent != "" {
			fmt.Printf("  Agent:       %s\n", task.Agent)
		}
		if task.ParentID != "" {
			fmt.Printf("  Parent:      %s\n", task.ParentID)
		}
		if len(task.Requires) > 0 {
			fmt.Printf("  Requires:    %s\n", strings.Join(task.Requires, ", "))
		}
		if deps, err := Svc.Dependents(task.ID); err == nil && len(deps) > 0 {
			var ids []string
			for _, d := range deps {
				ids = append(ids, d.ID)
			}
			fmt.Printf("  Required by: %s\n", strings.Join(ids, ", "))
		}
		fmt.Printf("  Created:     %s\n", task.Created.Format(time.RFC3339))
		if task.StartedAt != nil {
			fmt.Printf("  Started:     %s\n", task.StartedAt.Format(time.RFC3339))
		}
		if task.CompletedAt != nil {
			fmt.Printf("  Completed:   %s\n", task.CompletedAt.Format(time.RFC3339))
		}
		if task.Iteration > 0 {
			fmt.Printf("  Iteration:   %d\n", task.Iteration)
		}

		if len(task.History) > 0 {
			fmt.Println("\n  History:")
			for _, entry := range task.History {
				line := fmt.Sprintf("    %s  %-18s %s", entry.At.Format("2006-01-02 15:04"), entry.Action, entry.Actor)
				if entry.ToSector != "" {
					line += " -> " + entry.ToSector
				}
				if entry.Note != "" {
					line += " (" + entry.Note + ")"
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	showCmd.ValidArgsFunction = completeTaskIDs()
	rootCmd.AddCommand(showCmd)
}
