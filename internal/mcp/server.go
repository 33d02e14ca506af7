// ABOUTME: MCP server setup for the medication and side-effect tracker.
// ABOUTME: Wraps the MCP server around a synced patient document and the side-effect resolver.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/models"
	"github.com/harperreed/medtrack/internal/resolver"
)

// Document is the working copy the tools read and mutate. The sync client
// satisfies it.
type Document interface {
	Load(ctx context.Context) models.PatientState
	Apply(mutation models.Mutation) (models.PatientState, error)
	Flush(ctx context.Context) error
}

// Resolver looks up side effects for a medication name.
type Resolver interface {
	Resolve(ctx context.Context, medication string) resolver.Result
}

// Server wraps the MCP server with document and lookup access.
type Server struct {
	mcpServer *mcp.Server
	doc       Document
	resolver  Resolver
	logger    zerolog.Logger
	today     func() string
}

// NewServer creates a new MCP server over doc and res.
func NewServer(doc Document, res Resolver, logger zerolog.Logger) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "medtrack",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		doc:       doc,
		resolver:  res,
		logger:    logger,
		today:     models.Today,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.doc.Load(ctx)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// commit applies mutation and persists it before the tool returns.
func (s *Server) commit(ctx context.Context, mutation models.Mutation) (models.PatientState, error) {
	s.doc.Load(ctx)
	doc, err := s.doc.Apply(mutation)
	if err != nil {
		return models.PatientState{}, err
	}
	if err := s.doc.Flush(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("change kept locally, push failed")
	}
	return doc, nil
}

func (s *Server) dateOrToday(date string) string {
	if date == "" {
		return s.today()
	}
	return date
}
