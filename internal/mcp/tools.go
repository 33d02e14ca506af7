// ABOUTME: MCP tool implementations for medications and side effects.
// ABOUTME: Provides lookup, aggregation, and document editing tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medtrack/internal/aggregate"
	"github.com/harperreed/medtrack/internal/models"
)

func (s *Server) registerTools() {
	// lookup_side_effects
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "lookup_side_effects",
		Description: "Look up common side effects for a medication name",
	}, s.handleLookupSideEffects)

	// aggregate_side_effects
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "aggregate_side_effects",
		Description: "Combine the side effects of all medications active on a date, most shared first, with that date's severities",
	}, s.handleAggregateSideEffects)

	// get_state
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_state",
		Description: "Get the full patient document",
	}, s.handleGetState)

	// set_severity
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_severity",
		Description: "Record how severe a side effect was on a date (0 clears, 5 is worst)",
	}, s.handleSetSeverity)

	// add_medication
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_medication",
		Description: "Start tracking a medication; its side effects are looked up automatically",
	}, s.handleAddMedication)

	// end_medication
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "end_medication",
		Description: "Mark a medication as stopped on a date",
	}, s.handleEndMedication)
}

// Tool input/output types

type lookupInput struct {
	Medication string `json:"medication" jsonschema:"Medication name, e.g. Sertraline or Bupropion HCl XL"`
}

type lookupOutput struct {
	Medication  string                    `json:"medication"`
	Tier        string                    `json:"tier"`
	SideEffects []models.SideEffectRecord `json:"side_effects"`
}

type dateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Date as YYYY-MM-DD, defaults to today"`
}

type emptyInput struct{}

type setSeverityInput struct {
	Date     string `json:"date,omitempty" jsonschema:"Date as YYYY-MM-DD, defaults to today"`
	Effect   string `json:"effect" jsonschema:"Side effect name as shown by aggregate_side_effects"`
	Severity int    `json:"severity" jsonschema:"Severity from 0 (none) to 5 (worst)"`
}

type severityOutput struct {
	Date     string `json:"date"`
	Effect   string `json:"effect"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
}

type addMedicationInput struct {
	Name      string `json:"name" jsonschema:"Medication name"`
	Dosage    string `json:"dosage,omitempty" jsonschema:"Dosage, e.g. 50mg"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Start date as YYYY-MM-DD, defaults to today"`
}

type medicationOutput struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date,omitempty"`
	SideEffects []models.SideEffectRecord `json:"side_effects,omitempty"`
	Message     string                    `json:"message"`
}

type endMedicationInput struct {
	ID      string `json:"id" jsonschema:"Medication ID, unique ID prefix, or exact name"`
	EndDate string `json:"end_date,omitempty" jsonschema:"Last day taken as YYYY-MM-DD, defaults to today"`
}

// Tool handlers

func (s *Server) handleLookupSideEffects(ctx context.Context, req *mcp.CallToolRequest, input lookupInput) (*mcp.CallToolResult, lookupOutput, error) {
	name := strings.TrimSpace(input.Medication)
	if name == "" {
		return nil, lookupOutput{}, fmt.Errorf("medication is required")
	}

	res := s.resolver.Resolve(ctx, name)
	return nil, lookupOutput{
		Medication:  name,
		Tier:        string(res.Tier),
		SideEffects: res.Records,
	}, nil
}

func (s *Server) handleAggregateSideEffects(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date := s.dateOrToday(input.Date)
	if !models.IsValidDate(date) {
		return nil, nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	view := aggregate.ForDate(s.doc.Load(ctx), date)
	if len(view) == 0 {
		return nil, map[string]interface{}{"date": date, "message": "No active medications with side effects."}, nil
	}

	return nil, map[string]interface{}{
		"date":         date,
		"side_effects": view,
	}, nil
}

func (s *Server) handleGetState(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	return nil, s.doc.Load(ctx), nil
}

func (s *Server) handleSetSeverity(ctx context.Context, req *mcp.CallToolRequest, input setSeverityInput) (*mcp.CallToolResult, severityOutput, error) {
	date := s.dateOrToday(input.Date)
	effect := models.SeverityKey(input.Effect)

	if _, err := s.commit(ctx, models.SetSeverity(date, effect, input.Severity)); err != nil {
		return nil, severityOutput{}, fmt.Errorf("failed to set severity: %w", err)
	}

	msg := fmt.Sprintf("%s on %s: %d/%d", effect, date, input.Severity, models.MaxSeverity)
	if input.Severity == 0 {
		msg = fmt.Sprintf("Cleared %s on %s", effect, date)
	}
	return nil, severityOutput{
		Date:     date,
		Effect:   effect,
		Severity: input.Severity,
		Message:  msg,
	}, nil
}

func (s *Server) handleAddMedication(ctx context.Context, req *mcp.CallToolRequest, input addMedicationInput) (*mcp.CallToolResult, medicationOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, medicationOutput{}, fmt.Errorf("name is required")
	}
	start := s.dateOrToday(input.StartDate)
	if !models.IsValidDate(start) {
		return nil, medicationOutput{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
	}

	res := s.resolver.Resolve(ctx, name)
	med := models.NewMedication(name, start).
		WithDosage(input.Dosage).
		WithSideEffects(res.Records)

	if _, err := s.commit(ctx, models.AddMedication(*med)); err != nil {
		return nil, medicationOutput{}, fmt.Errorf("failed to add medication: %w", err)
	}

	return nil, medicationOutput{
		ID:          med.ID,
		Name:        med.Name,
		StartDate:   med.StartDate,
		SideEffects: res.Records,
		Message:     fmt.Sprintf("Added %s starting %s with %d side effects (ID: %s)", med.Name, start, len(res.Records), med.ID[:8]),
	}, nil
}

func (s *Server) handleEndMedication(ctx context.Context, req *mcp.CallToolRequest, input endMedicationInput) (*mcp.CallToolResult, medicationOutput, error) {
	end := s.dateOrToday(input.EndDate)

	id, err := s.doc.Load(ctx).ResolveMedicationID(input.ID)
	if err != nil {
		return nil, medicationOutput{}, err
	}

	doc, err := s.commit(ctx, models.EndMedication(id, end))
	if err != nil {
		return nil, medicationOutput{}, fmt.Errorf("failed to end medication: %w", err)
	}

	med := doc.Medications[doc.FindMedication(id)]
	return nil, medicationOutput{
		ID:        med.ID,
		Name:      med.Name,
		StartDate: med.StartDate,
		EndDate:   med.EndDate,
		Message:   fmt.Sprintf("Ended %s on %s", med.Name, med.EndDate),
	}, nil
}
