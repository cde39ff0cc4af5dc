// ABOUTME: CLI command for exporting consolidated runs.
// ABOUTME: Supports JSON, YAML, Markdown, and CSV output.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/export"
	"github.com/nmoreno/salud/internal/models"
)

var (
	exportOutput string
	exportRun    string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export a consolidated run",
	Long: `Export a previously stored run in various formats.

FORMATS:

  json       Full JSON export (run provenance + rows)
  yaml       YAML export (human-readable)
  markdown   Markdown table (for documentation/sharing)
  csv        CSV table (for spreadsheets)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --run, -r      Export a specific run id (default: latest)

Markdown and CSV honor the configured field selection
("salud config set --fields ..."); date columns always come first.

EXAMPLES:

  salud export csv -o consolidado.csv
  salud export json
  salud export markdown --run 4be71b2c-...`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown", "csv"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		run, rows, err := loadRequestedRun()
		if err != nil {
			return err
		}
		data := export.New(run, rows)

		var out []byte
		switch format {
		case "json":
			out, err = data.JSON()
		case "yaml":
			out, err = data.YAML()
		case "markdown":
			out = []byte(data.Markdown(cfg.GetFields()))
		case "csv":
			out, err = data.CSV(cfg.GetFields())
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, markdown, or csv)", format)
		}
		if err != nil {
			return err
		}

		if exportOutput == "" {
			fmt.Print(string(out))
			return nil
		}
		if err := os.WriteFile(exportOutput, out, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		color.Green("✓ Exported %d rows to %s", len(rows), exportOutput)
		return nil
	},
}

func loadRequestedRun() (*models.Run, []models.Row, error) {
	if exportRun == "" {
		return store.LoadLatest()
	}
	id, err := uuid.Parse(exportRun)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid run id %q: %w", exportRun, err)
	}
	r, err := store.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	rs, err := store.LoadRun(id)
	if err != nil {
		return nil, nil, err
	}
	return r, rs, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().StringVarP(&exportRun, "run", "r", "", "run id to export (default: latest)")
	rootCmd.AddCommand(exportCmd)
}
