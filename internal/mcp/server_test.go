// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers over a file-backed sync client.
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/models"
	"github.com/harperreed/medtrack/internal/resolver"
	"github.com/harperreed/medtrack/internal/storage"
	"github.com/harperreed/medtrack/internal/syncclient"
)

const testToday = "2025-03-10"

// stubResolver knows a couple of medications and returns the sentinel otherwise.
type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, medication string) resolver.Result {
	switch strings.ToLower(medication) {
	case "sertraline":
		return resolver.Result{Tier: resolver.TierFallback, Records: []models.SideEffectRecord{
			{Name: "Nausea", Description: "Feeling sick"},
			{Name: "Insomnia", Description: "Trouble sleeping"},
		}}
	case "bupropion":
		return resolver.Result{Tier: resolver.TierExternal, Records: []models.SideEffectRecord{
			{Name: "Insomnia"},
			{Name: "Dry mouth"},
		}}
	}
	return resolver.Result{Tier: resolver.TierNone, Records: []models.SideEffectRecord{models.NoDataRecord(medication)}}
}

// setupServer creates a server over a sync client backed by a temp file.
func setupServer(t *testing.T) (*Server, *storage.FileStore) {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), storage.DefaultFileName), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	client := syncclient.New(syncclient.NewLocalRemote(store), zerolog.Nop(),
		syncclient.WithDebounce(time.Hour), syncclient.WithSavingHold(0))
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	server, err := NewServer(client, stubResolver{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	server.today = func() string { return testToday }
	return server, store
}

func addMedication(t *testing.T, server *Server, name, start string) medicationOutput {
	t.Helper()
	_, out, err := server.handleAddMedication(context.Background(), &mcp.CallToolRequest{}, addMedicationInput{
		Name:      name,
		StartDate: start,
	})
	if err != nil {
		t.Fatalf("handleAddMedication(%s) failed: %v", name, err)
	}
	return out
}

func resourceText(t *testing.T, result *mcp.ReadResourceResult) string {
	t.Helper()
	if result == nil || len(result.Contents) != 1 {
		t.Fatalf("Expected one resource content, got %+v", result)
	}
	return result.Contents[0].Text
}

func TestNewServer(t *testing.T) {
	server, _ := setupServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.doc == nil {
		t.Error("Expected non-nil doc")
	}
	if server.resolver == nil {
		t.Error("Expected non-nil resolver")
	}
}

func TestHandleLookupSideEffects(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleLookupSideEffects(ctx, &mcp.CallToolRequest{}, lookupInput{Medication: " Sertraline "})
	if err != nil {
		t.Fatalf("handleLookupSideEffects failed: %v", err)
	}
	if out.Medication != "Sertraline" {
		t.Errorf("Expected trimmed name, got %q", out.Medication)
	}
	if out.Tier != string(resolver.TierFallback) {
		t.Errorf("Expected fallback tier, got %s", out.Tier)
	}
	if len(out.SideEffects) != 2 || out.SideEffects[0].Name != "Nausea" {
		t.Errorf("Unexpected side effects: %+v", out.SideEffects)
	}

	_, out, err = server.handleLookupSideEffects(ctx, &mcp.CallToolRequest{}, lookupInput{Medication: "Xyzzyplex"})
	if err != nil {
		t.Fatalf("handleLookupSideEffects failed: %v", err)
	}
	if !models.IsNoData(out.SideEffects) {
		t.Errorf("Expected sentinel, got %+v", out.SideEffects)
	}
}

func TestHandleLookupSideEffectsBlank(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleLookupSideEffects(context.Background(), &mcp.CallToolRequest{}, lookupInput{Medication: "  "})
	if err == nil {
		t.Error("Expected error for blank medication")
	}
}

func TestHandleAddMedication(t *testing.T) {
	server, store := setupServer(t)

	out := addMedication(t, server, "Sertraline", "2025-03-01")
	if out.ID == "" {
		t.Fatal("Expected generated ID")
	}
	if out.StartDate != "2025-03-01" {
		t.Errorf("Expected start date 2025-03-01, got %s", out.StartDate)
	}
	if len(out.SideEffects) != 2 {
		t.Errorf("Expected 2 side effects, got %d", len(out.SideEffects))
	}
	if !strings.Contains(out.Message, out.ID[:8]) {
		t.Errorf("Expected message to contain short ID, got %q", out.Message)
	}

	// commit flushes, so the file already holds the medication
	doc, src := store.Read(context.Background())
	if src != storage.SourcePrimary {
		t.Fatalf("Expected primary file, got %s", src)
	}
	if len(doc.Medications) != 1 || doc.Medications[0].ID != out.ID {
		t.Errorf("Expected persisted medication, got %+v", doc.Medications)
	}
	if len(doc.Medications[0].SideEffects) != 2 {
		t.Errorf("Expected stored side effects, got %+v", doc.Medications[0].SideEffects)
	}
}

func TestHandleAddMedicationDefaultsToToday(t *testing.T) {
	server, _ := setupServer(t)

	out := addMedication(t, server, "Bupropion", "")
	if out.StartDate != testToday {
		t.Errorf("Expected start date %s, got %s", testToday, out.StartDate)
	}
}

func TestHandleAddMedicationValidation(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	if _, _, err := server.handleAddMedication(ctx, &mcp.CallToolRequest{}, addMedicationInput{Name: ""}); err == nil {
		t.Error("Expected error for blank name")
	}
	if _, _, err := server.handleAddMedication(ctx, &mcp.CallToolRequest{}, addMedicationInput{Name: "Sertraline", StartDate: "03/01/2025"}); err == nil {
		t.Error("Expected error for bad start date")
	}
}

func TestHandleEndMedication(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()
	added := addMedication(t, server, "Sertraline", "2025-03-01")

	_, out, err := server.handleEndMedication(ctx, &mcp.CallToolRequest{}, endMedicationInput{
		ID:      added.ID[:8],
		EndDate: "2025-03-05",
	})
	if err != nil {
		t.Fatalf("handleEndMedication failed: %v", err)
	}
	if out.ID != added.ID {
		t.Errorf("Expected ID %s, got %s", added.ID, out.ID)
	}
	if out.EndDate != "2025-03-05" {
		t.Errorf("Expected end date 2025-03-05, got %s", out.EndDate)
	}

	// end date can only be set once
	_, _, err = server.handleEndMedication(ctx, &mcp.CallToolRequest{}, endMedicationInput{ID: added.ID})
	if err == nil {
		t.Error("Expected error ending a medication twice")
	}
}

func TestHandleEndMedicationByName(t *testing.T) {
	server, _ := setupServer(t)
	added := addMedication(t, server, "Sertraline", "2025-03-01")

	_, out, err := server.handleEndMedication(context.Background(), &mcp.CallToolRequest{}, endMedicationInput{ID: "sertraline"})
	if err != nil {
		t.Fatalf("handleEndMedication failed: %v", err)
	}
	if out.ID != added.ID || out.EndDate != testToday {
		t.Errorf("Unexpected output: %+v", out)
	}
}

func TestHandleEndMedicationNotFound(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleEndMedication(context.Background(), &mcp.CallToolRequest{}, endMedicationInput{ID: "nope"})
	if err == nil {
		t.Error("Expected error for unknown medication")
	}
}

func TestHandleSetSeverity(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleSetSeverity(ctx, &mcp.CallToolRequest{}, setSeverityInput{Effect: "Nausea", Severity: 3})
	if err != nil {
		t.Fatalf("handleSetSeverity failed: %v", err)
	}
	if out.Date != testToday {
		t.Errorf("Expected date %s, got %s", testToday, out.Date)
	}
	if got := server.doc.Load(ctx).SideEffectSeverities[testToday]["Nausea"]; got != 3 {
		t.Errorf("Expected stored severity 3, got %d", got)
	}

	_, out, err = server.handleSetSeverity(ctx, &mcp.CallToolRequest{}, setSeverityInput{Effect: "Nausea", Severity: 0})
	if err != nil {
		t.Fatalf("handleSetSeverity clear failed: %v", err)
	}
	if !strings.HasPrefix(out.Message, "Cleared") {
		t.Errorf("Expected clear message, got %q", out.Message)
	}
	if _, ok := server.doc.Load(ctx).SideEffectSeverities[testToday]["Nausea"]; ok {
		t.Error("Expected severity 0 to remove the entry")
	}
}

func TestHandleSetSeverityOutOfRange(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleSetSeverity(context.Background(), &mcp.CallToolRequest{}, setSeverityInput{Effect: "Nausea", Severity: 9})
	if err == nil {
		t.Error("Expected error for severity above 5")
	}
}

func TestHandleAggregateSideEffects(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()
	addMedication(t, server, "Sertraline", "2025-03-01")
	addMedication(t, server, "Bupropion", "2025-03-01")

	_, out, err := server.handleAggregateSideEffects(ctx, &mcp.CallToolRequest{}, dateInput{})
	if err != nil {
		t.Fatalf("handleAggregateSideEffects failed: %v", err)
	}

	data, _ := json.Marshal(out)
	var view struct {
		Date        string `json:"date"`
		SideEffects []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"side_effects"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if view.Date != testToday {
		t.Errorf("Expected date %s, got %s", testToday, view.Date)
	}
	if len(view.SideEffects) != 3 {
		t.Fatalf("Expected 3 merged side effects, got %+v", view.SideEffects)
	}
	if view.SideEffects[0].Name != "Insomnia" || view.SideEffects[0].Count != 2 {
		t.Errorf("Expected shared Insomnia first, got %+v", view.SideEffects[0])
	}
}

func TestHandleAggregateSideEffectsEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, out, err := server.handleAggregateSideEffects(context.Background(), &mcp.CallToolRequest{}, dateInput{Date: "2025-01-01"})
	if err != nil {
		t.Fatalf("handleAggregateSideEffects failed: %v", err)
	}
	m, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map output, got %T", out)
	}
	if _, ok := m["message"]; !ok {
		t.Error("Expected message for empty aggregation")
	}
}

func TestHandleAggregateSideEffectsInvalidDate(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleAggregateSideEffects(context.Background(), &mcp.CallToolRequest{}, dateInput{Date: "yesterday"})
	if err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestHandleGetState(t *testing.T) {
	server, _ := setupServer(t)
	addMedication(t, server, "Sertraline", "2025-03-01")

	_, out, err := server.handleGetState(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("handleGetState failed: %v", err)
	}
	doc, ok := out.(models.PatientState)
	if !ok {
		t.Fatalf("Expected PatientState, got %T", out)
	}
	if len(doc.Medications) != 1 {
		t.Errorf("Expected 1 medication, got %d", len(doc.Medications))
	}
}

func TestHandleStateResource(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()
	addMedication(t, server, "Sertraline", "2025-03-01")

	result, err := server.handleStateResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleStateResource failed: %v", err)
	}
	if result.Contents[0].URI != stateURI {
		t.Errorf("Expected URI %s, got %s", stateURI, result.Contents[0].URI)
	}

	doc, err := models.ParseState([]byte(resourceText(t, result)))
	if err != nil {
		t.Fatalf("State resource is not a document: %v", err)
	}
	if len(doc.Medications) != 1 || doc.Medications[0].Name != "Sertraline" {
		t.Errorf("Unexpected medications: %+v", doc.Medications)
	}
}

func TestHandleTodayResource(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()
	addMedication(t, server, "Sertraline", "2025-03-01")
	ended := addMedication(t, server, "Bupropion", "2025-02-01")
	if _, _, err := server.handleEndMedication(ctx, &mcp.CallToolRequest{}, endMedicationInput{ID: ended.ID, EndDate: "2025-02-20"}); err != nil {
		t.Fatalf("handleEndMedication failed: %v", err)
	}
	if _, _, err := server.handleSetSeverity(ctx, &mcp.CallToolRequest{}, setSeverityInput{Effect: "Nausea", Severity: 4}); err != nil {
		t.Fatalf("handleSetSeverity failed: %v", err)
	}

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource failed: %v", err)
	}

	var view struct {
		Date        string              `json:"date"`
		Medications []models.Medication `json:"medications"`
		SideEffects []struct {
			Name     string `json:"name"`
			Severity int    `json:"severity"`
		} `json:"sideEffects"`
	}
	if err := json.Unmarshal([]byte(resourceText(t, result)), &view); err != nil {
		t.Fatalf("Failed to decode today view: %v", err)
	}
	if view.Date != testToday {
		t.Errorf("Expected date %s, got %s", testToday, view.Date)
	}
	if len(view.Medications) != 1 || view.Medications[0].Name != "Sertraline" {
		t.Errorf("Expected only the active medication, got %+v", view.Medications)
	}
	if len(view.SideEffects) != 2 {
		t.Fatalf("Expected 2 side effects, got %+v", view.SideEffects)
	}
	for _, se := range view.SideEffects {
		if se.Name == "Nausea" && se.Severity != 4 {
			t.Errorf("Expected Nausea severity 4, got %d", se.Severity)
		}
	}
}

func TestHandleSetSeverityLowercaseShowsInToday(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()
	addMedication(t, server, "Sertraline", "2025-03-01")

	_, out, err := server.handleSetSeverity(ctx, &mcp.CallToolRequest{}, setSeverityInput{Effect: " nausea ", Severity: 2})
	if err != nil {
		t.Fatalf("handleSetSeverity failed: %v", err)
	}
	if out.Effect != "Nausea" {
		t.Errorf("Expected canonical effect Nausea, got %q", out.Effect)
	}

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource failed: %v", err)
	}
	var view struct {
		SideEffects []struct {
			Name     string `json:"name"`
			Severity int    `json:"severity"`
		} `json:"sideEffects"`
	}
	if err := json.Unmarshal([]byte(resourceText(t, result)), &view); err != nil {
		t.Fatalf("Failed to decode today view: %v", err)
	}
	found := false
	for _, se := range view.SideEffects {
		if se.Name == "Nausea" {
			found = true
			if se.Severity != 2 {
				t.Errorf("Expected Nausea severity 2, got %d", se.Severity)
			}
		}
	}
	if !found {
		t.Errorf("Expected Nausea in today view, got %+v", view.SideEffects)
	}
}

func TestHandleTodayResourceEmpty(t *testing.T) {
	server, _ := setupServer(t)

	result, err := server.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource failed: %v", err)
	}
	text := resourceText(t, result)
	if strings.Contains(text, `"assessment"`) {
		t.Error("Expected no assessment for an empty day")
	}
	if !strings.Contains(text, `"medications": []`) {
		t.Errorf("Expected empty medication list, got %s", text)
	}
}
