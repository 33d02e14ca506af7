// ABOUTME: Cache of adverse-event term lists keyed by medication name.
// ABOUTME: Defines the Store contract and the backend factory (sqlite, redis, none).
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Store caches the raw term lists returned by the adverse-event service.
type Store interface {
	// Get returns the cached terms for key. ok is false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) (terms []string, ok bool, err error)
	// Set stores terms for key with the store's TTL.
	Set(ctx context.Context, key string, terms []string) error
	Close() error
}

// Options configures Open.
type Options struct {
	Backend   string
	DataDir   string
	RedisAddr string
	TTL       time.Duration
}

// Key normalizes a medication name into a cache key.
func Key(medication string) string {
	return strings.ToLower(strings.Join(strings.Fields(medication), " "))
}

// Open creates a Store for the configured backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "sqlite":
		s, err := OpenSQLite(filepath.Join(opts.DataDir, "lookup-cache.db"), opts.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		r, err := NewRedis(opts.RedisAddr, opts.TTL)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", opts.Backend)
	}
}

// Purger is implemented by stores that keep expired entries until asked to
// remove them. Redis expires keys itself.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// PurgeExpired removes expired entries when s supports it.
func PurgeExpired(ctx context.Context, s Store) (int64, error) {
	if p, ok := s.(Purger); ok {
		return p.Purge(ctx)
	}
	return 0, nil
}

// Noop is a Store that never hits.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]string, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []string) error { return nil }
func (Noop) Close() error { return nil }
