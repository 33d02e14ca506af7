// ABOUTME: Pure update functions over PatientState.
// ABOUTME: Each returns a new document and never mutates its input.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/medtrack/internal/lookup"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrOutOfRange    = errors.New("value out of range")
	ErrUnknownMetric = errors.New("unknown metric")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyEnded  = errors.New("medication already ended")
	ErrInvalidInput  = errors.New("invalid input")
)

// Mutation transforms a document into a new one.
type Mutation func(PatientState) (PatientState, error)

func checkDate(date string) error {
	if !IsValidDate(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// SetAssessment sets one metric for date, creating the day's entry with
// neutral defaults when none exists.
func SetAssessment(date, metric string, value int) Mutation {
	return func(s PatientState) (PatientState, error) {
		if err := checkDate(date); err != nil {
			return s, err
		}
		if !IsValidMetric(metric) {
			return s, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
		}
		if value < MinScore || value > MaxScore {
			return s, fmt.Errorf("%w: %s must be %d-%d, got %d", ErrOutOfRange, metric, MinScore, MaxScore, value)
		}
		out := s.Clone()
		a, ok := out.DailyAssessments[date]
		if !ok {
			a = NewDailyAssessment()
		}
		a.set(metric, value)
		out.DailyAssessments[date] = a
		return out, nil
	}
}

// AddMedication appends m. The ID must be set and unused.
func AddMedication(m Medication) Mutation {
	return func(s PatientState) (PatientState, error) {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			return s, fmt.Errorf("%w: medication needs an id and a name", ErrInvalidInput)
		}
		if err := checkDate(m.StartDate); err != nil {
			return s, err
		}
		if m.EndDate != "" {
			if err := checkDate(m.EndDate); err != nil {
				return s, err
			}
		}
		if s.FindMedication(m.ID) >= 0 {
			return s, fmt.Errorf("%w: duplicate medication id %s", ErrInvalidInput, m.ID)
		}
		out := s.Clone()
		m.SideEffects = append([]SideEffectEntry{}, m.SideEffects...)
		out.Medications = append(out.Medications, m)
		return out, nil
	}
}

// EndMedication marks a medication as ended on endDate. An end date is set
// once and never changed.
func EndMedication(id, endDate string) Mutation {
	return func(s PatientState) (PatientState, error) {
		if err := checkDate(endDate); err != nil {
			return s, err
		}
		i := s.FindMedication(id)
		if i < 0 {
			return s, fmt.Errorf("%w: medication %s", ErrNotFound, id)
		}
		if s.Medications[i].EndDate != "" {
			return s, fmt.Errorf("%w: %s ended %s", ErrAlreadyEnded, s.Medications[i].Name, s.Medications[i].EndDate)
		}
		out := s.Clone()
		out.Medications[i].EndDate = endDate
		return out, nil
	}
}

// RemoveMedication deletes a medication, keeping the order of the rest.
func RemoveMedication(id string) Mutation {
	return func(s PatientState) (PatientState, error) {
		i := s.FindMedication(id)
		if i < 0 {
			return s, fmt.Errorf("%w: medication %s", ErrNotFound, id)
		}
		out := s.Clone()
		out.Medications = append(out.Medications[:i], out.Medications[i+1:]...)
		return out, nil
	}
}

// SeverityKey is the key a severity is stored under: the effect name in the
// same title case the aggregated view uses.
func SeverityKey(effect string) string {
	return lookup.TitleCase(strings.TrimSpace(effect))
}

// SetSeverity records a 0-5 severity for an effect on date. Zero clears it.
// The effect need not be in that day's aggregated view. Keys written by older
// clients in another case are replaced by the canonical key.
func SetSeverity(date, effect string, severity int) Mutation {
	return func(s PatientState) (PatientState, error) {
		if err := checkDate(date); err != nil {
			return s, err
		}
		if strings.TrimSpace(effect) == "" {
			return s, fmt.Errorf("%w: effect name is required", ErrInvalidInput)
		}
		if severity < MinSeverity || severity > MaxSeverity {
			return s, fmt.Errorf("%w: severity must be %d-%d, got %d", ErrOutOfRange, MinSeverity, MaxSeverity, severity)
		}
		out := s.Clone()
		day := out.SideEffectSeverities[date]
		if day == nil {
			day = map[string]int{}
		}
		key := SeverityKey(effect)
		for k := range day {
			if SeverityKey(k) == key {
				delete(day, k)
			}
		}
		if severity > 0 {
			day[key] = severity
		}
		if len(day) == 0 {
			delete(out.SideEffectSeverities, date)
		} else {
			out.SideEffectSeverities[date] = day
		}
		return out, nil
	}
}

// SetJournal stores the journal text for date. Blank text removes the entry.
func SetJournal(date, text string) Mutation {
	return func(s PatientState) (PatientState, error) {
		if err := checkDate(date); err != nil {
			return s, err
		}
		out := s.Clone()
		if strings.TrimSpace(text) == "" {
			delete(out.Journal, date)
		} else {
			out.Journal[date] = text
		}
		return out, nil
	}
}

// SetNotes replaces the free-text notes.
func SetNotes(text string) Mutation {
	return func(s PatientState) (PatientState, error) {
		out := s.Clone()
		out.Notes = text
		return out, nil
	}
}

// SetTheme switches the color scheme.
func SetTheme(theme string) Mutation {
	return func(s PatientState) (PatientState, error) {
		if !IsValidTheme(theme) {
			return s, fmt.Errorf("%w: theme %q", ErrInvalidInput, theme)
		}
		out := s.Clone()
		out.Theme = Theme(theme)
		return out, nil
	}
}
