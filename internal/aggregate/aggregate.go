// ABOUTME: Aggregates side effects across the medications active on a date.
// ABOUTME: Full recompute on every call; ordered by occurrence count then name.
package aggregate

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/harperreed/medtrack/internal/models"
)

// SideEffect is one effect's combined view across active medications.
type SideEffect struct {
	Name        string   `json:"name"`
	Medications []string `json:"medications"`
	Count       int      `json:"count"`
	Description string   `json:"description"`
}

// Annotated pairs an aggregated effect with the severity recorded for the
// reference date. Severity is 0 when unset.
type Annotated struct {
	SideEffect
	Severity int `json:"severity"`
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

// compareNames orders names the way a reader expects ("apple" near "Apple")
// and falls back to byte order so the result is total.
func compareNames(a, b string) int {
	collatorMu.Lock()
	c := collator.CompareString(a, b)
	collatorMu.Unlock()
	if c != 0 {
		return c
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Aggregate combines the side effects of every medication active on date.
// Each medication counts at most once per effect; entries without a usable
// name are skipped.
func Aggregate(meds []models.Medication, date string) []SideEffect {
	byName := make(map[string]*SideEffect)

	for _, m := range meds {
		if !m.ActiveOn(date) {
			continue
		}
		seen := make(map[string]bool)
		for _, entry := range m.SideEffects {
			rec, ok := entry.Normalize()
			if !ok {
				continue
			}
			agg, exists := byName[rec.Name]
			if !exists {
				agg = &SideEffect{Name: rec.Name, Medications: []string{}}
				byName[rec.Name] = agg
			}
			if len(rec.Description) > len(agg.Description) {
				agg.Description = rec.Description
			}
			if seen[rec.Name] {
				continue
			}
			seen[rec.Name] = true
			agg.Count++
			agg.Medications = append(agg.Medications, m.Name)
		}
	}

	out := make([]SideEffect, 0, len(byName))
	for _, agg := range byName {
		out = append(out, *agg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return compareNames(out[i].Name, out[j].Name) < 0
	})
	return out
}

// Names returns the effect names of a view, in view order.
func Names(view []SideEffect) []string {
	names := make([]string, len(view))
	for i, se := range view {
		names[i] = se.Name
	}
	return names
}

// Overlay attaches the caller's severities for the reference date to the
// view. Keys match case-insensitively, with an exact canonical key taking
// precedence. Severities for effects absent from the view are ignored here
// and remain untouched in the caller's state.
func Overlay(view []SideEffect, severities map[string]int) []Annotated {
	canonical := make(map[string]int, len(severities))
	for k, v := range severities {
		key := models.SeverityKey(k)
		if _, exact := severities[key]; exact && k != key {
			continue
		}
		canonical[key] = v
	}
	out := make([]Annotated, len(view))
	for i, se := range view {
		out[i] = Annotated{SideEffect: se, Severity: canonical[se.Name]}
	}
	return out
}

// ForDate aggregates a whole document for date and overlays that date's severities.
func ForDate(s models.PatientState, date string) []Annotated {
	return Overlay(Aggregate(s.Medications, date), s.SideEffectSeverities[date])
}
