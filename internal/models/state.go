// ABOUTME: PatientState document model: assessments, medications, severities, journal, notes, theme.
// ABOUTME: Provides defaults, shape checking on decode, deep copies, and medication construction.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO date format used for every date key in the document.
const DateLayout = "2006-01-02"

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValidTheme checks if a string is a supported theme.
func IsValidTheme(s string) bool {
	return s == string(ThemeLight) || s == string(ThemeDark)
}

// Assessment metric names.
const (
	MetricGeneral       = "general"
	MetricEnergy        = "energy"
	MetricConcentration = "concentration"
	MetricSleep         = "sleep"
)

// AllMetrics lists the daily assessment metrics in display order.
var AllMetrics = []string{MetricGeneral, MetricEnergy, MetricConcentration, MetricSleep}

// IsValidMetric checks if a string names a daily assessment metric.
func IsValidMetric(s string) bool {
	for _, m := range AllMetrics {
		if m == s {
			return true
		}
	}
	return false
}

const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
	MinSeverity  = 0
	MaxSeverity  = 5
)

// DailyAssessment holds the four wellness scores for one date.
type DailyAssessment struct {
	General       int `json:"general"`
	Energy        int `json:"energy"`
	Concentration int `json:"concentration"`
	Sleep         int `json:"sleep"`
}

// NewDailyAssessment returns an assessment with every metric at DefaultScore.
func NewDailyAssessment() DailyAssessment {
	return DailyAssessment{
		General:       DefaultScore,
		Energy:        DefaultScore,
		Concentration: DefaultScore,
		Sleep:         DefaultScore,
	}
}

// Get returns the score for a metric name.
func (a DailyAssessment) Get(metric string) int {
	switch metric {
	case MetricGeneral:
		return a.General
	case MetricEnergy:
		return a.Energy
	case MetricConcentration:
		return a.Concentration
	case MetricSleep:
		return a.Sleep
	}
	return 0
}

func (a *DailyAssessment) set(metric string, v int) {
	switch metric {
	case MetricGeneral:
		a.General = v
	case MetricEnergy:
		a.Energy = v
	case MetricConcentration:
		a.Concentration = v
	case MetricSleep:
		a.Sleep = v
	}
}

// Medication is a medication the patient takes or has taken.
type Medication struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Dosage      string            `json:"dosage,omitempty"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate,omitempty"`
	SideEffects []SideEffectEntry `json:"sideEffects"`
}

// NewMedication creates a Medication with a generated ID starting on startDate.
func NewMedication(name, startDate string) *Medication {
	return &Medication{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		StartDate:   startDate,
		SideEffects: []SideEffectEntry{},
	}
}

// WithDosage sets the dosage text.
func (m *Medication) WithDosage(dosage string) *Medication {
	m.Dosage = strings.TrimSpace(dosage)
	return m
}

// WithSideEffects stores resolved side effects on the medication.
func (m *Medication) WithSideEffects(records []SideEffectRecord) *Medication {
	m.SideEffects = EntriesFromRecords(records)
	return m
}

// ActiveOn reports whether the medication is active on date: it has no end
// date or ends on or after date.
func (m Medication) ActiveOn(date string) bool {
	return m.EndDate == "" || m.EndDate >= date
}

// PatientState is the single root document synchronized between client and server.
type PatientState struct {
	DailyAssessments     map[string]DailyAssessment `json:"dailyAssessments"`
	Medications          []Medication               `json:"medications"`
	SideEffectSeverities map[string]map[string]int  `json:"sideEffectSeverities"`
	Journal              map[string]string          `json:"journal"`
	Notes                string                     `json:"notes"`
	Theme                Theme                      `json:"theme"`
}

// DefaultState returns the empty document used when nothing is stored.
func DefaultState() PatientState {
	return PatientState{
		DailyAssessments:     map[string]DailyAssessment{},
		Medications:          []Medication{},
		SideEffectSeverities: map[string]map[string]int{},
		Journal:              map[string]string{},
		Notes:                "",
		Theme:                ThemeLight,
	}
}

// Normalize fills nil collections and resets an unknown theme.
func (s *PatientState) Normalize() {
	if s.DailyAssessments == nil {
		s.DailyAssessments = map[string]DailyAssessment{}
	}
	if s.Medications == nil {
		s.Medications = []Medication{}
	}
	for i := range s.Medications {
		if s.Medications[i].SideEffects == nil {
			s.Medications[i].SideEffects = []SideEffectEntry{}
		}
	}
	if s.SideEffectSeverities == nil {
		s.SideEffectSeverities = map[string]map[string]int{}
	}
	for date, m := range s.SideEffectSeverities {
		if m == nil {
			s.SideEffectSeverities[date] = map[string]int{}
		}
	}
	if s.Journal == nil {
		s.Journal = map[string]string{}
	}
	if !IsValidTheme(string(s.Theme)) {
		s.Theme = ThemeLight
	}
}

// IsEmpty reports whether the document carries no patient data. Theme alone
// does not count as data.
func (s PatientState) IsEmpty() bool {
	return len(s.DailyAssessments) == 0 &&
		len(s.Medications) == 0 &&
		len(s.SideEffectSeverities) == 0 &&
		len(s.Journal) == 0 &&
		strings.TrimSpace(s.Notes) == ""
}

// Clone returns a deep copy of the document.
func (s PatientState) Clone() PatientState {
	out := PatientState{
		DailyAssessments:     make(map[string]DailyAssessment, len(s.DailyAssessments)),
		Medications:          make([]Medication, len(s.Medications)),
		SideEffectSeverities: make(map[string]map[string]int, len(s.SideEffectSeverities)),
		Journal:              make(map[string]string, len(s.Journal)),
		Notes:                s.Notes,
		Theme:                s.Theme,
	}
	for k, v := range s.DailyAssessments {
		out.DailyAssessments[k] = v
	}
	for i, m := range s.Medications {
		m.SideEffects = append([]SideEffectEntry{}, m.SideEffects...)
		out.Medications[i] = m
	}
	for date, sev := range s.SideEffectSeverities {
		inner := make(map[string]int, len(sev))
		for k, v := range sev {
			inner[k] = v
		}
		out.SideEffectSeverities[date] = inner
	}
	for k, v := range s.Journal {
		out.Journal[k] = v
	}
	return out
}

// FindMedication returns the index of the medication with id, or -1.
func (s PatientState) FindMedication(id string) int {
	for i, m := range s.Medications {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// ResolveMedicationID expands an ID or unique ID prefix to a full ID.
// An exact name match (case-insensitive) is accepted as well.
func (s PatientState) ResolveMedicationID(idOrPrefix string) (string, error) {
	key := strings.TrimSpace(idOrPrefix)
	if key == "" {
		return "", fmt.Errorf("%w: empty medication id", ErrNotFound)
	}
	if s.FindMedication(key) >= 0 {
		return key, nil
	}

	var matches []string
	for _, m := range s.Medications {
		if strings.HasPrefix(m.ID, key) || strings.EqualFold(m.Name, key) {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: medication %s", ErrNotFound, key)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: ambiguous medication %s matches %d records", ErrInvalidInput, key, len(matches))
	}
}

// ErrMalformedDocument is returned when stored bytes fail the shape check.
var ErrMalformedDocument = errors.New("malformed patient document")

// ParseState decodes a stored document. The top-level value must be a JSON
// object; missing collections are filled in.
func ParseState(data []byte) (PatientState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return PatientState{}, ErrMalformedDocument
	}
	var s PatientState
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return PatientState{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	s.Normalize()
	return s, nil
}

// Today returns today's date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// IsValidDate checks that s is a YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
