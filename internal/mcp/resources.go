// ABOUTME: MCP resource implementations for the consolidated store.
// ABOUTME: Provides salud://runs/latest with the newest run and its rows.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nmoreno/salud/internal/storage"
)

const latestRunURI = "salud://runs/latest"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         latestRunURI,
		Name:        "Latest Consolidated Run",
		Description: "The most recent ingestion run with its consolidated rows",
		MIMEType:    "application/json",
	}, s.handleLatestRunResource)
}

func (s *Server) handleLatestRunResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	var result map[string]interface{}

	run, rows, err := s.store.LoadLatest()
	switch {
	case errors.Is(err, storage.ErrNoRuns):
		result = map[string]interface{}{"message": "No runs stored yet."}
	case err != nil:
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	default:
		result = map[string]interface{}{
			"run":   run,
			"rows":  rows,
			"count": len(rows),
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      latestRunURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
