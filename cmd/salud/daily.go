// ABOUTME: CLI command printing a per-day summary straight from the sources.
// ABOUTME: Glucose stats joined with daily fitness metrics, no store involved.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/consolidate"
	"github.com/nmoreno/salud/internal/sources"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Per-day summary from the current source files",
	Long: `Read the sources and print one line per day: glucose count, min, max
and mean alongside the day's fitness metrics.

This reads the configured source directories directly and does not touch
the stored runs, so it always reflects the files on disk right now.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		acc := sources.AccuChek{Root: cfg.GetAccRoot()}
		if err := acc.Validate(); err != nil {
			return fmt.Errorf("accu-chek source: %w", err)
		}
		fit := sources.GoogleFit{Root: cfg.GetFitRoot()}
		if err := fit.Validate(); err != nil {
			return fmt.Errorf("google fit source: %w", err)
		}

		accFile, err := acc.NewestExport()
		if err != nil {
			return err
		}
		readings, err := acc.LoadReadings(accFile, loc)
		if err != nil {
			return err
		}
		fitFiles, err := fit.DailyFiles()
		if err != nil {
			return err
		}
		fitDaily, err := fit.LoadDaily(fitFiles)
		if err != nil {
			return err
		}

		days := consolidate.ByDay(readings, fitDaily)
		if len(days) == 0 {
			color.Yellow("No data found in the sources.")
			return nil
		}

		bold := color.New(color.Bold)
		fmt.Printf("%s\n", bold.Sprintf("%-12s %5s %6s %6s %7s %8s %6s",
			"date", "n", "min", "max", "mean", "steps", "min.act"))
		for _, d := range days {
			fmt.Printf("%-12s %5s %6s %6s %7s %8s %6s\n",
				d.Date.String(),
				countCell(d.GlucoseCount),
				statCell(d.GlucoseMin),
				statCell(d.GlucoseMax),
				statCell(d.GlucoseAvg),
				statCell(d.Steps),
				statCell(d.ActiveMinutes))
		}
		return nil
	},
}

func countCell(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func statCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}
