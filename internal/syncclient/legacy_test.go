// ABOUTME: Tests for the legacy cache over a local Badger directory.
// ABOUTME: Seeds the well-known key and checks load, miss, and removal.
package syncclient

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBadger(t *testing.T) *BadgerKV {
	t.Helper()
	kv, err := OpenBadgerKV(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestLegacyCacheMiss(t *testing.T) {
	lc := NewLegacyCache(setupBadger(t), zerolog.Nop())

	_, ok, err := lc.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLegacyCacheLoadAndRemove(t *testing.T) {
	kv := setupBadger(t)
	require.NoError(t, kv.Set([]byte(LegacyKey), legacyDoc(t)))
	lc := NewLegacyCache(kv, zerolog.Nop())

	doc, ok, err := lc.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "from legacy", doc.Notes)
	require.Len(t, doc.Medications, 1)
	rec, usable := doc.Medications[0].SideEffects[0].Normalize()
	assert.True(t, usable)
	assert.Equal(t, "Nausea", rec.Name)

	require.NoError(t, lc.Remove())
	_, ok, err = lc.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLegacyCacheCorrupt(t *testing.T) {
	kv := setupBadger(t)
	require.NoError(t, kv.Set([]byte(LegacyKey), []byte(`["not","an","object"]`)))

	_, ok, err := NewLegacyCache(kv, zerolog.Nop()).Load()
	assert.Error(t, err)
	assert.False(t, ok)
}

// cloudKV is a legacy store with a cloud copy, like the Charm KV.
type cloudKV struct {
	memKV
	readOnly bool
	syncErr  error
	syncs    int
}

func (c *cloudKV) Sync() error {
	c.syncs++
	return c.syncErr
}

func (c *cloudKV) IsReadOnly() bool { return c.readOnly }

func TestLegacyCacheSyncsBeforeLoad(t *testing.T) {
	kv := &cloudKV{memKV: memKV{data: map[string][]byte{LegacyKey: legacyDoc(t)}}, syncErr: errors.New("offline")}
	lc := NewLegacyCache(kv, zerolog.Nop())

	doc, ok, err := lc.Load()
	require.NoError(t, err, "a failed sync falls back to the local copy")
	require.True(t, ok)
	assert.Equal(t, "from legacy", doc.Notes)
	assert.Equal(t, 1, kv.syncs)
	assert.False(t, lc.ReadOnly())
}

func TestLegacyCacheReadOnly(t *testing.T) {
	kv := &cloudKV{memKV: memKV{data: map[string][]byte{LegacyKey: legacyDoc(t)}}, readOnly: true}
	lc := NewLegacyCache(kv, zerolog.Nop())

	_, ok, err := lc.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, kv.syncs, "read-only stores are not synced")

	assert.True(t, lc.ReadOnly())
	assert.ErrorIs(t, lc.Remove(), ErrLegacyReadOnly)
	assert.Equal(t, 0, kv.deletes)
}

func TestBadgerKVIsNotReadOnly(t *testing.T) {
	assert.False(t, NewLegacyCache(setupBadger(t), zerolog.Nop()).ReadOnly())
}
