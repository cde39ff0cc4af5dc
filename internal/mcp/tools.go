// ABOUTME: MCP tool implementations for consolidated health data.
// ABOUTME: Exposes ingestion, run retrieval, and the daily report.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nmoreno/salud/internal/consolidate"
	"github.com/nmoreno/salud/internal/ingest"
	"github.com/nmoreno/salud/internal/models"
	"github.com/nmoreno/salud/internal/sources"
	"github.com/nmoreno/salud/internal/storage"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "process_data",
		Description: "Consolidate glucose and fitness sources and store the result",
	}, s.handleProcessData)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "latest_run",
		Description: "Get the most recent ingestion run's provenance",
	}, s.handleLatestRun)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "load_run",
		Description: "Load the consolidated rows stored by a run",
	}, s.handleLoadRun)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_runs",
		Description: "List ingestion runs, most recent first",
	}, s.handleListRuns)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "daily_summary",
		Description: "Per-day glucose summary joined with fitness metrics, straight from the sources",
	}, s.handleDailySummary)
}

// Tool input/output types

type emptyInput struct{}

type processOutput struct {
	RunID      string `json:"run_id,omitempty"`
	NoNewData  bool   `json:"no_new_data"`
	RowsTotal  int    `json:"rows_total"`
	RowsStored int    `json:"rows_stored"`
	Message    string `json:"message"`
}

type loadRunInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"description=Run id; defaults to the latest run"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Max results (default 20)"`
}

// Tool handlers

func (s *Server) handleProcessData(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, processOutput, error) {
	result, err := ingest.Run(s.cfg, s.store)
	if err != nil {
		return nil, processOutput{}, fmt.Errorf("failed to process data: %w", err)
	}

	out := processOutput{
		NoNewData:  result.NoNewData,
		RowsTotal:  result.RowsTotal,
		RowsStored: result.RowsStored,
	}
	if result.NoNewData {
		out.Message = "No changes: this data was already processed."
		return nil, out, nil
	}
	out.RunID = result.RunID.String()
	out.Message = fmt.Sprintf("Stored run %s with %d new rows", result.RunID.String()[:8], result.RowsStored)
	return nil, out, nil
}

func (s *Server) handleLatestRun(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	id, err := s.store.LatestRunID()
	if errors.Is(err, storage.ErrNoRuns) {
		return nil, map[string]interface{}{"message": "No runs stored yet."}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	run, err := s.store.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	return nil, run, nil
}

func (s *Server) handleLoadRun(ctx context.Context, req *mcp.CallToolRequest, input loadRunInput) (*mcp.CallToolResult, any, error) {
	var runID uuid.UUID
	var err error
	if input.RunID == "" {
		runID, err = s.store.LatestRunID()
		if errors.Is(err, storage.ErrNoRuns) {
			return nil, map[string]interface{}{"message": "No runs stored yet."}, nil
		}
	} else {
		runID, err = uuid.Parse(input.RunID)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.store.LoadRun(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}
	return nil, map[string]interface{}{
		"run_id": runID.String(),
		"rows":   rows,
		"count":  len(rows),
	}, nil
}

func (s *Server) handleListRuns(ctx context.Context, req *mcp.CallToolRequest, input listRunsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	runs, err := s.store.ListRuns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) > input.Limit {
		runs = runs[:input.Limit]
	}
	if len(runs) == 0 {
		return nil, map[string]interface{}{"message": "No runs stored yet."}, nil
	}
	return nil, runs, nil
}

func (s *Server) handleDailySummary(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	loc, err := s.cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	acc := sources.AccuChek{Root: s.cfg.GetAccRoot()}
	fit := sources.GoogleFit{Root: s.cfg.GetFitRoot()}
	if err := acc.Validate(); err != nil {
		return nil, nil, err
	}
	if err := fit.Validate(); err != nil {
		return nil, nil, err
	}

	accFile, err := acc.NewestExport()
	if err != nil {
		return nil, nil, err
	}
	readings, err := acc.LoadReadings(accFile, loc)
	if err != nil {
		return nil, nil, err
	}
	fitFiles, err := fit.DailyFiles()
	if err != nil {
		return nil, nil, err
	}
	fitDaily, err := fit.LoadDaily(fitFiles)
	if err != nil {
		return nil, nil, err
	}

	days := consolidate.ByDay(readings, fitDaily)
	if len(days) == 0 {
		return nil, map[string]interface{}{"message": "No data found in either source."}, nil
	}
	return nil, daysPayload(days), nil
}

func daysPayload(days []models.DailyRow) map[string]interface{} {
	return map[string]interface{}{
		"days":  days,
		"count": len(days),
	}
}
