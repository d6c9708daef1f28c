package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "prodboard",
	Short: "Production board - dependency-aware task tracking for game teams",
	Long: `Production board (prodboard) is a task tracker for game production teams.

Tasks live in sectors (design, gameplay, art, audio, qa) and declare which
other tasks they require. Availability is derived, never set by hand: a task
stays locked while any of its requirements is unfinished and becomes ready
the moment the last one is done.

It provides CLI commands for managing tasks and their dependencies, an
interactive board view, a dependency diagram, and board health checks.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prodboard %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
