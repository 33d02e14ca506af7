// ABOUTME: Searcher decorator that remembers successful adverse-event lookups.
// ABOUTME: Failures are never cached, so a cache hit is always live data seen earlier.
package resolver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/cache"
)

// CachedSearcher wraps a Searcher with a cache.Store.
type CachedSearcher struct {
	next   Searcher
	store  cache.Store
	logger zerolog.Logger
}

// NewCachedSearcher decorates next with store.
func NewCachedSearcher(next Searcher, store cache.Store, logger zerolog.Logger) *CachedSearcher {
	return &CachedSearcher{next: next, store: store, logger: logger}
}

func (c *CachedSearcher) TopReactions(ctx context.Context, medication string) ([]string, error) {
	key := cache.Key(medication)

	terms, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("medication", medication).Msg("lookup cache read failed")
	} else if ok {
		return terms, nil
	}

	terms, err = c.next.TopReactions(ctx, medication)
	if err != nil {
		return nil, err
	}
	if len(terms) > 0 {
		if err := c.store.Set(ctx, key, terms); err != nil {
			c.logger.Warn().Err(err).Str("medication", medication).Msg("lookup cache write failed")
		}
	}
	return terms, nil
}
