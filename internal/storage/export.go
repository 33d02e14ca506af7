// ABOUTME: Export and import functionality for the patient document.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/medtrack/internal/aggregate"
	"github.com/harperreed/medtrack/internal/models"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// ExportVersion is written into every export envelope.
const ExportVersion = "1.0"

// ExportData represents the full export format for the patient document.
type ExportData struct {
	Version    string              `json:"version" yaml:"version"`
	ExportedAt time.Time           `json:"exportedAt" yaml:"exported_at"`
	Tool       string              `json:"tool" yaml:"tool"`
	Data       models.PatientState `json:"data" yaml:"-"`
}

// NewExportData wraps doc in an export envelope stamped at now.
func NewExportData(doc models.PatientState, now time.Time) *ExportData {
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: now,
		Tool:       "medtrack",
		Data:       doc.Clone(),
	}
}

// Export renders doc in format ("json", "yaml" or "markdown").
func Export(doc models.PatientState, format string, now time.Time) ([]byte, error) {
	data := NewExportData(doc, now)
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return data.JSON()
	case FormatYAML, "yml":
		return data.YAML()
	case FormatMarkdown, "md":
		return []byte(data.Markdown()), nil
	default:
		return nil, fmt.Errorf("unknown export format: %q", format)
	}
}

// JSON exports the envelope as indented JSON.
func (e *ExportData) JSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// YAML exports the envelope as YAML. The document is converted to a
// YAML-friendly shape with medications flattened and dates sorted.
func (e *ExportData) YAML() ([]byte, error) {
	doc := e.Data
	yamlData := struct {
		Version     string                    `yaml:"version"`
		ExportedAt  string                    `yaml:"exported_at"`
		Tool        string                    `yaml:"tool"`
		Theme       string                    `yaml:"theme"`
		Notes       string                    `yaml:"notes,omitempty"`
		Assessments []yamlAssessment          `yaml:"daily_assessments"`
		Medications []yamlMedication          `yaml:"medications"`
		Severities  map[string]map[string]int `yaml:"side_effect_severities,omitempty"`
		Journal     map[string]string         `yaml:"journal,omitempty"`
	}{
		Version:     e.Version,
		ExportedAt:  e.ExportedAt.Format(time.RFC3339),
		Tool:        e.Tool,
		Theme:       string(doc.Theme),
		Notes:       doc.Notes,
		Assessments: make([]yamlAssessment, 0, len(doc.DailyAssessments)),
		Medications: make([]yamlMedication, 0, len(doc.Medications)),
		Severities:  doc.SideEffectSeverities,
		Journal:     doc.Journal,
	}

	for _, date := range sortedKeys(doc.DailyAssessments) {
		a := doc.DailyAssessments[date]
		yamlData.Assessments = append(yamlData.Assessments, yamlAssessment{
			Date:          date,
			General:       a.General,
			Energy:        a.Energy,
			Concentration: a.Concentration,
			Sleep:         a.Sleep,
		})
	}

	for _, m := range doc.Medications {
		ym := yamlMedication{
			ID:        m.ID,
			Name:      m.Name,
			Dosage:    m.Dosage,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
		}
		for _, entry := range m.SideEffects {
			if rec, ok := entry.Normalize(); ok {
				ym.SideEffects = append(ym.SideEffects, rec.Name)
			}
		}
		yamlData.Medications = append(yamlData.Medications, ym)
	}

	return yaml.Marshal(yamlData)
}

type yamlAssessment struct {
	Date          string `yaml:"date"`
	General       int    `yaml:"general"`
	Energy        int    `yaml:"energy"`
	Concentration int    `yaml:"concentration"`
	Sleep         int    `yaml:"sleep"`
}

type yamlMedication struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Dosage      string   `yaml:"dosage,omitempty"`
	StartDate   string   `yaml:"start_date"`
	EndDate     string   `yaml:"end_date,omitempty"`
	SideEffects []string `yaml:"side_effects,omitempty"`
}

// Markdown exports the document as a readable report.
func (e *ExportData) Markdown() string {
	doc := e.Data
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Health Export - %s\n\n", e.ExportedAt.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", e.ExportedAt.Format(time.RFC3339)))

	if len(doc.DailyAssessments) > 0 {
		sb.WriteString("## Daily Assessments\n\n")
		sb.WriteString("| Date | General | Energy | Concentration | Sleep |\n")
		sb.WriteString("|------|---------|--------|---------------|-------|\n")
		for _, date := range sortedKeys(doc.DailyAssessments) {
			a := doc.DailyAssessments[date]
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				date, a.General, a.Energy, a.Concentration, a.Sleep))
		}
		sb.WriteString("\n")
	}

	if len(doc.Medications) > 0 {
		sb.WriteString("## Medications\n\n")
		sb.WriteString("| Name | Dosage | Started | Ended |\n")
		sb.WriteString("|------|--------|---------|-------|\n")
		for _, m := range doc.Medications {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				m.Name, m.Dosage, m.StartDate, m.EndDate))
		}
		sb.WriteString("\n")
	}

	if len(doc.SideEffectSeverities) > 0 {
		sb.WriteString("## Side Effects\n\n")
		for _, date := range sortedKeys(doc.SideEffectSeverities) {
			sb.WriteString(fmt.Sprintf("### %s\n\n", date))
			view := aggregate.ForDate(doc, date)
			for _, a := range view {
				if a.Severity == 0 {
					continue
				}
				sb.WriteString(fmt.Sprintf("- %s: %d/%d (%s)\n",
					a.Name, a.Severity, models.MaxSeverity, strings.Join(a.Medications, ", ")))
			}
			sb.WriteString("\n")
		}
	}

	if len(doc.Journal) > 0 {
		sb.WriteString("## Journal\n\n")
		for _, date := range sortedKeys(doc.Journal) {
			sb.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", date, strings.TrimSpace(doc.Journal[date])))
		}
	}

	if strings.TrimSpace(doc.Notes) != "" {
		sb.WriteString("## Notes\n\n")
		sb.WriteString(strings.TrimSpace(doc.Notes))
		sb.WriteString("\n")
	}

	return sb.String()
}

// ImportJSON reads either an export envelope or a bare patient document.
func ImportJSON(data []byte) (models.PatientState, error) {
	var envelope struct {
		Version string          `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Version != "" && len(envelope.Data) > 0 {
		data = envelope.Data
	}
	doc, err := models.ParseState(data)
	if err != nil {
		return models.PatientState{}, fmt.Errorf("import document: %w", err)
	}
	return doc, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
