// ABOUTME: Tests for the lookup cache backends.
// ABOUTME: Exercises sqlite in a temp dir and redis via miniredis.
package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T, ttl time.Duration) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupRedis(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = r.Close() })
	return mr, r
}

func TestKey(t *testing.T) {
	assert.Equal(t, "bupropion hcl xl", Key("  Bupropion   HCl XL "))
	assert.Equal(t, "", Key("   "))
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := setupSQLite(t, time.Hour)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "sertraline")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "sertraline", []string{"nausea", "headache"}))
	terms, ok, err := s.Get(ctx, "sertraline")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"nausea", "headache"}, terms)

	// Upsert replaces.
	require.NoError(t, s.Set(ctx, "sertraline", []string{"rash"}))
	terms, _, err = s.Get(ctx, "sertraline")
	require.NoError(t, err)
	assert.Equal(t, []string{"rash"}, terms)
}

func TestSQLiteExpiry(t *testing.T) {
	s := setupSQLite(t, time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, "metformin", []string{"nausea"}))

	_, ok, err := s.Get(ctx, "metformin")
	require.NoError(t, err)
	assert.True(t, ok)

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok, err = s.Get(ctx, "metformin")
	require.NoError(t, err)
	assert.False(t, ok)

	purged, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestPurgeExpired(t *testing.T) {
	s := setupSQLite(t, time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, "old", []string{"nausea"}))
	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.NoError(t, s.Set(ctx, "fresh", []string{"rash"}))

	n, err := PurgeExpired(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = PurgeExpired(ctx, Noop{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "lithium", []string{"tremor"}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()
	terms, ok, err := s.Get(ctx, "lithium")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"tremor"}, terms)
}

func TestRedisRoundTrip(t *testing.T) {
	mr, r := setupRedis(t, time.Minute)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "sertraline")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "sertraline", []string{"nausea"}))
	assert.True(t, mr.Exists(redisKeyPrefix+"sertraline"))

	terms, ok, err := r.Get(ctx, "sertraline")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"nausea"}, terms)

	mr.FastForward(2 * time.Minute)
	_, ok, err = r.Get(ctx, "sertraline")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCorruptValue(t *testing.T) {
	mr, r := setupRedis(t, time.Minute)
	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "not json"))

	_, ok, err := r.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Backend: "", DataDir: dir, TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	n, err := Open(Options{Backend: "none"})
	require.NoError(t, err)
	_, ok, err := n.Get(context.Background(), "x")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = Open(Options{Backend: "redis"})
	assert.Error(t, err, "redis without an address")

	_, err = Open(Options{Backend: "memcached"})
	assert.Error(t, err)
}
