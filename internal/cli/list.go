package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/pkg/models"
)

var (
	listSector string
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks grouped by sector",
	Long: `List the tasks on the board, grouped by sector in board order.

Optionally filter to a single sector with --sector or a single status
with --status (locked, ready, in_progress, done).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		if listStatus != "" && !models.TaskStatus(listStatus).Valid() {
			return fmt.Errorf("invalid status %q (expected locked, ready, in_progress or done)", listStatus)
		}

		sectors, err := Svc.Sectors()
		if err != nil {
			return err
		}

		shown := 0
		for _, sector := range sectors {
			if listSector != "" && sector.ID != listSector {
				continue
			}
			tasks, err := Svc.TasksBySector(sector.ID)
			if err != nil {
				return err
			}
			if listStatus != "" {
				filtered := tasks[:0]
				for _, task := range tasks {
					if string(task.Status) == listStatus {
						filtered = append(filtered, task)
					}
				}
				tasks = filtered
			}
			if len(tasks) == 0 {
				continue
			}
			printSectorGroup(sector, tasks)
			fmt.Println()
			shown += len(tasks)
		}

		if shown == 0 {
			fmt.Println("No tasks found.")
		}
		return nil
	},
}

// statusOrder is the display order for task rows within a sector.
var statusOrder = []models.TaskStatus{
	models.StatusInProgress,
	models.StatusReady,
	models.StatusLocked,
	models.StatusDone,
}

// printSectorGroup prints a table of tasks under a sector heading,
// grouped by status in lifecycle order.
func printSectorGroup(sector models.Sector, tasks []*models.Task) {
	fmt.Printf("== %s %s (%d) ==\n", sector.Icon, strings.ToUpper(sector.Name), len(tasks))
	fmt.Printf("  %-12s %-9s %-12s %s\n", "ID", "PRI", "STATUS", "TITLE")
	fmt.Printf("  %-12s %-9s %-12s %s\n", "----", "---", "------", "-----")
	for _, status := range statusOrder {
		for _, task := range tasks {
			if task.Status != status {
				continue
			}
			title := task.Title
			if task.ParentID != "" {
				title = "> " + title
			}
			fmt.Printf("  %-12s %-9s %-12s %s\n", task.ID, task.Priority, task.Status, title)
		}
	}
}

func init() {
	listCmd.Flags().StringVarP(&listSector, "sector", "s", "", "Only show tasks in this sector")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only show tasks with this status")
	_ = listCmd.RegisterFlagCompletionFunc("sector", completeSectors)
	_ = listCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	rootCmd.AddCommand(listCmd)
}
