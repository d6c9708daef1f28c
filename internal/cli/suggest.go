package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var suggestAlternatives int

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest the next task to pick up",
	Long: `Suggest the next task to pick up: the highest-priority ready task,
with ties broken by creation time. Alternatives at the same or adjacent
priority are listed below the pick.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		alternatives := suggestAlternatives
		if !cmd.Flags().Changed("alternatives") && Config != nil {
			alternatives = Config.Alternatives
		}

		suggestion, err := Svc.Suggest(alternatives)
		if err != nil {
			return err
		}

		task := suggestion.Task
		fmt.Printf("Next up: %s [%s] %s\n", task.ID, task.Priority, task.Title)
		if task.Description != "" {
			fmt.Printf("  %s\n", task.Description)
		}
		if len(suggestion.Alternatives) > 0 {
			fmt.Println("\nAlternatives:")
			for _, alt := range suggestion.Alternatives {
				fmt.Printf("  %s [%s] %s\n", alt.ID, alt.Priority, alt.Title)
			}
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestAlternatives, "alternatives", "n", 3, "Maximum number of alternatives to list")
	rootCmd.AddCommand(suggestCmd)
}
