// ABOUTME: Root Cobra command for the salud CLI.
// ABOUTME: Loads config and opens the store via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/config"
	"github.com/nmoreno/salud/internal/storage"
)

var (
	cfg   *config.Config
	store *storage.Store
)

var rootCmd = &cobra.Command{
	Use:   "salud",
	Short: "Consolidate glucose and fitness data for your doctor",
	Long: `Salud consolidates glucose readings (Accu-Chek exports) with daily
activity metrics (Google Fit Takeout) into one dataset, one row per reading.

Processed data is stored in a local SQLite database. Row-level content
hashing keeps repeated imports from duplicating anything: re-running
"salud process" over the same exports is always safe.

QUICK START:

  $ salud config set --acc-root ~/salud/glucosa --fit-root ~/salud/fit/Takeout/Fit
  $ salud process                 # Consolidate and store a new run
  $ salud runs                    # See stored runs and their provenance
  $ salud export csv -o datos.csv # Export the latest run
  $ salud daily                   # Per-day summary straight from the sources

MCP INTEGRATION:

  Run 'salud mcp' to start a Model Context Protocol server for use with
  MCP-compatible AI assistants:

  {
    "mcpServers": {
      "salud": { "command": "salud", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  The database lives at ~/.local/share/salud/salud.db by default.
  Configuration lives at ~/.config/salud/config.json.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Commands that never touch the store skip opening it.
		switch cmd.Name() {
		case "version", "help", "completion", "config", "set", "show", "daily":
			return nil
		}

		store, err = storage.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}
