// ABOUTME: Side-effect resolution pipeline for a medication name.
// ABOUTME: Tries proxy, live adverse-event data, simplified name, static table, then a sentinel.
package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/lookup"
	"github.com/harperreed/medtrack/internal/models"
)

// Tier names the source that produced a resolution.
type Tier string

const (
	TierProxy      Tier = "proxy"
	TierExternal   Tier = "external"
	TierSimplified Tier = "simplified"
	TierFallback   Tier = "fallback"
	TierNone       Tier = "none"
)

// Source returns curated side effects for a medication, typically the
// server's side-effect endpoint.
type Source interface {
	SideEffects(ctx context.Context, medication string) ([]models.SideEffectRecord, error)
}

// Searcher returns raw adverse-event reaction terms reported for a
// medication, most frequent first.
type Searcher interface {
	TopReactions(ctx context.Context, medication string) ([]string, error)
}

// Result is the outcome of a resolution.
type Result struct {
	Records []models.SideEffectRecord `json:"sideEffects"`
	Tier    Tier                      `json:"tier"`
}

// Resolver runs the tiers in order and stops at the first success.
type Resolver struct {
	proxy    Source
	searcher Searcher
	logger   zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProxy puts src in front of the other tiers.
func WithProxy(src Source) Option {
	return func(r *Resolver) { r.proxy = src }
}

// New creates a Resolver. A nil searcher skips the live lookup tiers.
func New(searcher Searcher, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{searcher: searcher, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve always returns at least one record; when nothing is known it
// returns the "No data found" sentinel.
func (r *Resolver) Resolve(ctx context.Context, medication string) Result {
	name := strings.TrimSpace(medication)

	if r.proxy != nil {
		records, err := r.proxy.SideEffects(ctx, name)
		switch {
		case err != nil:
			r.logger.Warn().Err(err).Str("medication", name).Msg("proxy lookup failed")
		case len(usable(records)) > 0:
			return Result{Records: usable(records), Tier: TierProxy}
		default:
			r.logger.Debug().Str("medication", name).Msg("proxy returned no side effects")
		}
	}

	if res, ok := r.Lookup(ctx, name); ok {
		return res
	}

	r.logger.Info().Str("medication", name).Msg("no side effect data found")
	return Result{Records: []models.SideEffectRecord{models.NoDataRecord(name)}, Tier: TierNone}
}

// Lookup runs the live, simplified and static tiers without the proxy or
// the sentinel. ok is false when none of them produced data.
func (r *Resolver) Lookup(ctx context.Context, medication string) (Result, bool) {
	name := strings.TrimSpace(medication)
	if name == "" {
		return Result{}, false
	}

	if records, ok := r.external(ctx, name); ok {
		return Result{Records: records, Tier: TierExternal}, true
	}

	simple := lookup.Simplify(name)
	if simple != "" && !strings.EqualFold(simple, name) {
		if records, ok := r.external(ctx, simple); ok {
			return Result{Records: records, Tier: TierSimplified}, true
		}
	}

	if terms, ok := lookup.Fallback(name); ok {
		return Result{Records: models.RecordsFromLookup(lookup.DescribeAll(terms)), Tier: TierFallback}, true
	}

	return Result{}, false
}

func (r *Resolver) external(ctx context.Context, name string) ([]models.SideEffectRecord, bool) {
	if r.searcher == nil {
		return nil, false
	}
	raw, err := r.searcher.TopReactions(ctx, name)
	if err != nil {
		r.logger.Warn().Err(err).Str("medication", name).Msg("adverse event lookup failed")
		return nil, false
	}
	terms := FilterTerms(raw)
	if len(terms) == 0 {
		r.logger.Debug().Str("medication", name).Int("raw", len(raw)).Msg("no reportable terms")
		return nil, false
	}
	return models.RecordsFromLookup(lookup.DescribeAll(terms)), true
}

// FilterTerms drops excluded and blank terms, lowercases the rest, and caps
// the list at lookup.MaxTerms.
func FilterTerms(raw []string) []string {
	out := make([]string, 0, lookup.MaxTerms)
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || lookup.Excluded(t) {
			continue
		}
		out = append(out, t)
		if len(out) == lookup.MaxTerms {
			break
		}
	}
	return out
}

func usable(records []models.SideEffectRecord) []models.SideEffectRecord {
	out := make([]models.SideEffectRecord, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}
