package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	depAddActor    string
	depRemoveActor string
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage task dependencies",
	Long:  "Commands for adding and removing requirements between tasks.",
}

var depAddCmd = &cobra.Command{
	Use:   "add <task-id> <requires-id>",
	Short: "Add a requirement to a task",
	Long: `Declare that a task requires another task.

A ready task that gains an unfinished requirement falls back to locked.
Cycles are allowed: the board records them and doctor reports them, so a
deadlocked loop is visible instead of rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.AddDependency(args[0], args[1], depAddActor)
		if err != nil {
			return err
		}

		fmt.Printf("%s now requires %s (status %s)\n", res.Task.ID, args[1], res.Task.Status)
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:     "rm <task-id> <requires-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a requirement from a task",
	Long: `Remove a requirement from a task.

A locked task whose last unfinished requirement is removed becomes
ready. Removing a requirement on a task that no longer exists is
allowed, so dangling references can be cleaned up.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		res, err := Svc.RemoveDependency(args[0], args[1], depRemoveActor)
		if err != nil {
			return err
		}

		fmt.Printf("%s no longer requires %s (status %s)\n", res.Task.ID, args[1], res.Task.Status)
		return nil
	},
}

func init() {
	depAddCmd.Flags().StringVar(&depAddActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	depAddCmd.ValidArgsFunction = completeTaskIDs()
	depRemoveCmd.Flags().StringVar(&depRemoveActor, "actor", "", "Actor recorded in task history (defaults to configured actor)")
	depRemoveCmd.ValidArgsFunction = completeTaskIDs()
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	rootCmd.AddCommand(depCmd)
}
