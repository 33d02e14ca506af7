// ABOUTME: Side-effect term normalization: title casing, description lookup, name simplification.
// ABOUTME: Pure functions over the static tables in tables.go.
package lookup

import (
	"strings"
	"unicode"
)

// MaxTerms caps how many side-effect terms are kept from a live lookup.
const MaxTerms = 12

// Record is a normalized side-effect term with its plain-language description.
type Record struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TitleCase lowers s and upper-cases the first rune and every rune that
// follows whitespace. TitleCase(TitleCase(s)) == TitleCase(s).
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upperNext := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteRune(r)
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upperNext = false
	}
	return b.String()
}

// Description returns the known description for a term, trying the exact
// lowercased term first and then the term with one trailing "s" removed.
func Description(term string) string {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return ""
	}
	if d, ok := descriptions[key]; ok {
		return d
	}
	if strings.HasSuffix(key, "s") {
		if d, ok := descriptions[strings.TrimSuffix(key, "s")]; ok {
			return d
		}
	}
	return ""
}

// Describe turns a raw term into a Record.
func Describe(term string) Record {
	term = strings.TrimSpace(term)
	return Record{
		Name:        TitleCase(term),
		Description: Description(term),
	}
}

// Excluded reports whether term is a regulatory or administrative term
// rather than a symptom.
func Excluded(term string) bool {
	_, ok := excluded[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// Simplify strips pharmaceutical form and salt tokens from a medication
// name, e.g. "Bupropion HCl XL" becomes "Bupropion".
func Simplify(name string) string {
	fields := strings.Fields(name)
	kept := fields[:0:0]
	for _, f := range fields {
		token := strings.ToLower(strings.Trim(f, ".,()"))
		if _, ok := formSuffixes[token]; ok {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Fallback returns the built-in term list for a medication, looking up the
// name and then its simplified form. The returned slice is a copy.
func Fallback(name string) ([]string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if terms, ok := fallbackMedications[key]; ok {
		return append([]string(nil), terms...), true
	}
	simple := strings.ToLower(Simplify(name))
	if simple != "" && simple != key {
		if terms, ok := fallbackMedications[simple]; ok {
			return append([]string(nil), terms...), true
		}
	}
	return nil, false
}

// DescribeAll normalizes a list of raw terms, dropping blanks.
func DescribeAll(terms []string) []Record {
	out := make([]Record, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, Describe(t))
	}
	return out
}
