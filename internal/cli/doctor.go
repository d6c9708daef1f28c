package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var doctorNotify bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the board for graph health problems",
	Long: `Evaluate health checks against the board and display any findings.

Checks cover dependency cycles, dangling requirements, tasks stuck
locked behind nothing, stale in-progress tasks, and oversized ready
queues. With --notify, findings are also sent to the configured
webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}
		if Health == nil {
			return fmt.Errorf("health engine not initialized")
		}

		snapshot, err := Svc.Snapshot()
		if err != nil {
			return err
		}

		findings, err := Health.Evaluate(snapshot)
		if err != nil {
			return fmt.Errorf("evaluating board health: %w", err)
		}

		if len(findings) == 0 {
			fmt.Println("Board looks healthy.")
			return nil
		}

		fmt.Printf("%d finding(s):\n\n", len(findings))
		for _, finding := range findings {
			severity := strings.ToUpper(string(finding.Severity))
			fmt.Printf("  [%s] %s\n", severity, finding.Message)
			if len(finding.Tasks) > 0 {
				fmt.Printf("         tasks: %s\n", strings.Join(finding.Tasks, ", "))
			}
			fmt.Println()
		}

		if doctorNotify {
			if Notify == nil {
				return fmt.Errorf("no webhook configured (set alerts.webhook_url in .boardrc.yaml)")
			}
			if err := Notify.Notify(findings); err != nil {
				return fmt.Errorf("sending findings: %w", err)
			}
			fmt.Println("Findings sent to webhook.")
		}

		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorNotify, "notify", false, "Send findings to the configured webhook")
	rootCmd.AddCommand(doctorCmd)
}
