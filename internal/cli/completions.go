package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/pkg/models"
)

// completeTaskIDs returns a completion function that lists task IDs,
// optionally filtered to the given statuses (empty means all).
func completeTaskIDs(statuses ...models.TaskStatus) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if Svc == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		tasks, err := Svc.Tasks()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		include := make(map[models.TaskStatus]bool)
		for _, s := range statuses {
			include[s] = true
		}

		var ids []string
		for _, task := range tasks {
			if len(include) > 0 && !include[task.Status] {
				continue
			}
			if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
				// Include sector and title as description for better UX.
				ids = append(ids, task.ID+"\t"+task.Sector+": "+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeFirstArgTaskIDs completes task IDs for the first positional
// argument only.
func completeFirstArgTaskIDs(statuses ...models.TaskStatus) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	inner := completeTaskIDs(statuses...)
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return inner(cmd, args, toComplete)
	}
}

// completeSectors lists the board's sector IDs.
func completeSectors(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Svc == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	sectors, err := Svc.Sectors()
	if err != nil {
		// Fall back to configured sectors when no board exists yet.
		if Config == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		sectors = Config.Sectors
	}

	var ids []string
	for _, sector := range sectors {
		if toComplete == "" || strings.HasPrefix(sector.ID, toComplete) {
			ids = append(ids, sector.ID+"\t"+sector.Name)
		}
	}

	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completePriorities returns the priority values.
func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"critical\tDrop everything",
		"high\tNext up",
		"medium\tNormal",
		"low\tWhen there is time",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeStatuses returns the task status values.
func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"locked\tWaiting on requirements",
		"ready\tAvailable to start",
		"in_progress\tActively being worked on",
		"done\tCompleted",
	}, cobra.ShellCompDirectiveNoFileComp
}
