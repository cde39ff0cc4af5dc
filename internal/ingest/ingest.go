// ABOUTME: End-to-end ingestion pipeline: sources -> consolidation -> store.
// ABOUTME: Shared by the process command and the MCP server.
package ingest

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nmoreno/salud/internal/config"
	"github.com/nmoreno/salud/internal/consolidate"
	"github.com/nmoreno/salud/internal/sources"
	"github.com/nmoreno/salud/internal/storage"
)

// Result reports one pipeline execution. NoNewData is set when every
// consolidated row was already stored; no run is recorded in that case.
type Result struct {
	RunID      uuid.UUID
	NoNewData  bool
	RowsTotal  int
	RowsStored int
	AccFile    string
	FitFiles   int
}

// Run reads both sources, consolidates them event-level, and ingests the
// result into the store.
func Run(cfg *config.Config, store *storage.Store) (*Result, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	acc := sources.AccuChek{Root: cfg.GetAccRoot()}
	fit := sources.GoogleFit{Root: cfg.GetFitRoot()}
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	if err := fit.Validate(); err != nil {
		return nil, err
	}

	accFile, err := acc.NewestExport()
	if err != nil {
		return nil, err
	}
	readings, err := acc.LoadReadings(accFile, loc)
	if err != nil {
		return nil, err
	}

	fitFiles, err := fit.DailyFiles()
	if err != nil {
		return nil, err
	}
	fitDaily, err := fit.LoadDaily(fitFiles)
	if err != nil {
		return nil, err
	}

	rows := consolidate.Readings(readings, fitDaily, loc)
	result := &Result{
		RowsTotal: len(rows),
		AccFile:   accFile,
		FitFiles:  len(fitFiles),
	}

	runID, err := store.IngestRun(rows, storage.Provenance{
		AccRoot:       cfg.GetAccRoot(),
		FitRoot:       cfg.GetFitRoot(),
		AccFile:       &accFile,
		FitFilesCount: len(fitFiles),
	})
	if errors.Is(err, storage.ErrNoNewRows) {
		result.NoNewData = true
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ingest run: %w", err)
	}

	run, err := store.GetRun(runID)
	if err != nil {
		return nil, err
	}
	result.RunID = runID
	result.RowsStored = run.RowsCount
	return result, nil
}
