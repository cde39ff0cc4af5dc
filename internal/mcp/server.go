// ABOUTME: MCP server setup for the consolidated health store.
// ABOUTME: Wraps the MCP server with store and config access.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nmoreno/salud/internal/config"
	"github.com/nmoreno/salud/internal/storage"
)

// Server wraps the MCP server with storage and configuration.
type Server struct {
	mcpServer *mcp.Server
	store     *storage.Store
	cfg       *config.Config
}

// NewServer creates a new MCP server over the given store and config.
func NewServer(store *storage.Store, cfg *config.Config) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "salud",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
		cfg:       cfg,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
