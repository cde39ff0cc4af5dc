// ABOUTME: CLI command listing stored ingestion runs.
// ABOUTME: Shows provenance: when, from where, and how many rows.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/storage"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs and their provenance",
	Long: `List stored ingestion runs, newest first.

Each run records where its data came from: the source directories,
the Accu-Chek export file that was read, how many Google Fit daily
CSV files were summed, and how many new rows the run contributed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := store.ListRuns()
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if runsLimit > 0 && len(runs) > runsLimit {
			runs = runs[:runsLimit]
		}
		if len(runs) == 0 {
			color.Yellow("No runs stored yet. Run 'salud process' first.")
			return nil
		}

		latestID, err := store.LatestRunID()
		if err != nil && !errors.Is(err, storage.ErrNoRuns) {
			return err
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		for _, run := range runs {
			marker := " "
			if run.ID == latestID {
				marker = color.GreenString("*")
			}
			fmt.Printf("%s %s  %s  %d rows\n",
				marker,
				bold.Sprint(run.ID.String()[:8]),
				run.CreatedAt.Format("2006-01-02 15:04"),
				run.RowsCount)
			if run.AccFile != nil {
				fmt.Printf("    %s\n", faint.Sprintf("accu-chek: %s", *run.AccFile))
			}
			fmt.Printf("    %s\n", faint.Sprintf("fit: %s (%d daily files)", run.FitRoot, run.FitFilesCount))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}
