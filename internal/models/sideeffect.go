// ABOUTME: Side-effect record types, including the legacy bare-string form.
// ABOUTME: SideEffectEntry.Normalize is the single place legacy and structured forms are unified.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/medtrack/internal/lookup"
)

// SideEffectRecord is a normalized side effect with its description.
type SideEffectRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NoDataName is the name of the sentinel record returned when no source
// knows a medication.
const NoDataName = "No data found"

// NoDataRecord builds the sentinel record for a medication name.
func NoDataRecord(medication string) SideEffectRecord {
	return SideEffectRecord{
		Name:        NoDataName,
		Description: fmt.Sprintf("No side effect data found for %q.", strings.TrimSpace(medication)),
	}
}

// IsNoData reports whether records is the sentinel result.
func IsNoData(records []SideEffectRecord) bool {
	return len(records) == 1 && records[0].Name == NoDataName
}

// RecordsFromLookup converts normalizer output into side-effect records.
func RecordsFromLookup(in []lookup.Record) []SideEffectRecord {
	out := make([]SideEffectRecord, len(in))
	for i, r := range in {
		out[i] = SideEffectRecord(r)
	}
	return out
}

// EntryKind tags which form a SideEffectEntry was stored in.
type EntryKind int

const (
	// EntryStructured is a {name, description} object.
	EntryStructured EntryKind = iota
	// EntryLegacy is a bare string term written by older clients.
	EntryLegacy
)

// SideEffectEntry is a side effect as persisted on a medication: either a
// legacy bare string or a structured record.
type SideEffectEntry struct {
	Kind   EntryKind
	Term   string
	Record SideEffectRecord
}

// LegacyEntry wraps a bare string term.
func LegacyEntry(term string) SideEffectEntry {
	return SideEffectEntry{Kind: EntryLegacy, Term: term}
}

// StructuredEntry wraps a structured record.
func StructuredEntry(r SideEffectRecord) SideEffectEntry {
	return SideEffectEntry{Kind: EntryStructured, Record: r}
}

// EntriesFromRecords wraps resolver output for storage on a medication.
func EntriesFromRecords(records []SideEffectRecord) []SideEffectEntry {
	out := make([]SideEffectEntry, len(records))
	for i, r := range records {
		out[i] = StructuredEntry(r)
	}
	return out
}

// Normalize returns the entry as a title-cased record. The boolean is false
// when the entry has no usable name and must be skipped.
func (e SideEffectEntry) Normalize() (SideEffectRecord, bool) {
	switch e.Kind {
	case EntryLegacy:
		if strings.TrimSpace(e.Term) == "" {
			return SideEffectRecord{}, false
		}
		return SideEffectRecord(lookup.Describe(e.Term)), true
	default:
		name := strings.TrimSpace(e.Record.Name)
		if name == "" {
			return SideEffectRecord{}, false
		}
		desc := e.Record.Description
		if desc == "" {
			desc = lookup.Description(name)
		}
		return SideEffectRecord{Name: lookup.TitleCase(name), Description: desc}, true
	}
}

// UnmarshalJSON accepts either a JSON string or a {name, description} object.
// Any other JSON value, or an object field that is not a string, decodes as
// empty so Normalize skips it instead of failing the whole document.
func (e *SideEffectEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var term string
		if err := json.Unmarshal(trimmed, &term); err != nil {
			return fmt.Errorf("decode legacy side effect: %w", err)
		}
		*e = LegacyEntry(term)
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return fmt.Errorf("decode side effect: %w", err)
		}
		*e = StructuredEntry(SideEffectRecord{
			Name:        stringField(fields, "name"),
			Description: stringField(fields, "description"),
		})
		return nil
	}
	*e = SideEffectEntry{Kind: EntryStructured}
	return nil
}

// stringField returns fields[key] when it is a JSON string, else "".
func stringField(fields map[string]json.RawMessage, key string) string {
	var v string
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &v) == nil {
		return v
	}
	return ""
}

// MarshalJSON writes the entry back in the form it was read in.
func (e SideEffectEntry) MarshalJSON() ([]byte, error) {
	if e.Kind == EntryLegacy {
		return json.Marshal(e.Term)
	}
	return json.Marshal(e.Record)
}
