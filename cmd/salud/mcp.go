// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the consolidated store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants to query your consolidated glucose and fitness
data through a standardized protocol. The server communicates via
stdin/stdout.

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "salud": {
        "command": "salud",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  process_data   Run the ingestion pipeline and store a new run
  latest_run     Get the most recent run's provenance
  load_run       Load a run's consolidated rows (defaults to latest)
  list_runs      List ingestion runs, most recent first
  daily_summary  Per-day glucose and fitness summary from the sources

AVAILABLE RESOURCES:

  salud://runs/latest   The newest run with its consolidated rows`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(store, cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
