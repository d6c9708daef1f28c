package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/internal/layout"
	boardmcp "github.com/gb2b/prodboard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the prodboard MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prodboard MCP server on stdio",
	Long: `Start the prodboard MCP server on stdio transport.

The server exposes the board as MCP tools that AI coding assistants can
call: add_task, start_task, complete_task, reopen_task, move_task,
add_dependency, remove_dependency, get_task, list_tasks, suggest_task,
board_diagram, board_health, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		alternatives := 3
		var layoutOpts layout.Options
		if Config != nil {
			alternatives = Config.Alternatives
			layoutOpts = layoutOptions()
		}

		srv := boardmcp.NewServer(Svc, MetricsCalc, Health, boardmcp.Config{
			Layout:       layoutOpts,
			Alternatives: alternatives,
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
