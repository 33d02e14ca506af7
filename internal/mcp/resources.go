// ABOUTME: MCP resource implementations for the patient document.
// ABOUTME: Provides medtrack://state and medtrack://today resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medtrack/internal/aggregate"
	"github.com/harperreed/medtrack/internal/models"
)

const (
	stateURI = "medtrack://state"
	todayURI = "medtrack://today"
)

func (s *Server) registerResources() {
	// medtrack://state - the whole document
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         stateURI,
		Name:        "Patient Document",
		Description: "Daily assessments, medications, side-effect severities, journal, and notes",
		MIMEType:    "application/json",
	}, s.handleStateResource)

	// medtrack://today - today's assessment, active medications, and weighted side effects
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today",
		Description: "Today's assessment, active medications, aggregated side effects with severities, and journal entry",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

// todayView is the medtrack://today payload.
type todayView struct {
	Date        string                  `json:"date"`
	Assessment  *models.DailyAssessment `json:"assessment,omitempty"`
	Medications []models.Medication     `json:"medications"`
	SideEffects []aggregate.Annotated   `json:"sideEffects"`
	Journal     string                  `json:"journal,omitempty"`
}

// Resource handlers

func (s *Server) handleStateResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(stateURI, s.doc.Load(ctx))
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	doc := s.doc.Load(ctx)
	date := s.today()

	view := todayView{
		Date:        date,
		Medications: []models.Medication{},
		SideEffects: aggregate.ForDate(doc, date),
		Journal:     doc.Journal[date],
	}
	if a, ok := doc.DailyAssessments[date]; ok {
		view.Assessment = &a
	}
	for _, m := range doc.Medications {
		if m.ActiveOn(date) {
			view.Medications = append(view.Medications, m)
		}
	}

	return jsonResource(todayURI, view)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
