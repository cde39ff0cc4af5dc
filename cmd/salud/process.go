// ABOUTME: CLI command running the full ingestion pipeline.
// ABOUTME: Sources -> event-level consolidation -> deduplicated store.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/ingest"
)

var processCmd = &cobra.Command{
	Use:     "process",
	Aliases: []string{"p"},
	Short:   "Consolidate sources and store a new run",
	Long: `Read the newest Accu-Chek export and the Google Fit daily metrics,
consolidate them into one row per glucose reading (fitness-only days get a
midnight row), and store the result.

Rows already stored by earlier runs are skipped; if nothing is new, no run
is recorded and the command says so.

Source locations come from the config:

  salud config set --acc-root <dir> --fit-root <dir>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := ingest.Run(cfg, store)
		if err != nil {
			return fmt.Errorf("failed to process: %w", err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("Accu-Chek file: %s\n", result.AccFile)
		fmt.Printf("Fit daily CSV files: %d\n", result.FitFiles)
		fmt.Printf("Consolidated rows: %d\n", result.RowsTotal)

		if result.NoNewData {
			color.Yellow("No changes: this data was already processed.")
			return nil
		}

		color.Green("✓ Stored run with %d new rows", result.RowsStored)
		fmt.Printf("  %s\n", faint.Sprint(result.RunID.String()[:8]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
