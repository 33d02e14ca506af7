// ABOUTME: Legacy local cache that older clients kept the whole document in.
// ABOUTME: Read once during load, then deleted after the document reaches the server.
package syncclient

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/models"
)

// LegacyKey is the key the whole document was stored under.
const LegacyKey = "healthTrackerData"

// KV is the subset of a key-value store the legacy cache needs. Missing keys
// are reported with badger.ErrKeyNotFound, which both the Charm KV and the
// local Badger store return.
type KV interface {
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
}

// ErrLegacyReadOnly is returned when the legacy store is locked by another
// process and the document cannot be removed.
var ErrLegacyReadOnly = errors.New("legacy store is read-only (locked by another process)")

// Stores that sync with a cloud copy, or that can open read-only, implement
// these; the Charm KV client does both.
type syncer interface {
	Sync() error
}

type readOnlyReporter interface {
	IsReadOnly() bool
}

// LegacyCache reads and removes the legacy document.
type LegacyCache struct {
	kv     KV
	logger zerolog.Logger
}

// NewLegacyCache wraps kv.
func NewLegacyCache(kv KV, logger zerolog.Logger) *LegacyCache {
	return &LegacyCache{kv: kv, logger: logger}
}

// ReadOnly reports whether the underlying store cannot be written.
func (l *LegacyCache) ReadOnly() bool {
	ro, ok := l.kv.(readOnlyReporter)
	return ok && ro.IsReadOnly()
}

// Load returns the legacy document. ok is false when nothing is stored.
// Stores with a cloud copy are synced first; a failed sync reads the local copy.
func (l *LegacyCache) Load() (doc models.PatientState, ok bool, err error) {
	if s, canSync := l.kv.(syncer); canSync && !l.ReadOnly() {
		if err := s.Sync(); err != nil {
			l.logger.Warn().Err(err).Msg("legacy sync failed, reading local copy")
		}
	}

	data, err := l.kv.Get([]byte(LegacyKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.PatientState{}, false, nil
	}
	if err != nil {
		return models.PatientState{}, false, fmt.Errorf("read legacy cache: %w", err)
	}
	if len(data) == 0 {
		return models.PatientState{}, false, nil
	}

	doc, err = models.ParseState(data)
	if err != nil {
		return models.PatientState{}, false, fmt.Errorf("parse legacy cache: %w", err)
	}
	return doc, true, nil
}

// Remove deletes the legacy document.
func (l *LegacyCache) Remove() error {
	if l.ReadOnly() {
		return ErrLegacyReadOnly
	}
	if err := l.kv.Delete([]byte(LegacyKey)); err != nil {
		return fmt.Errorf("delete legacy cache: %w", err)
	}
	l.logger.Info().Str("key", LegacyKey).Msg("legacy cache removed")
	return nil
}

// BadgerKV is a local Badger directory used as a legacy cache.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadgerKV opens (or creates) a Badger store in dir.
func OpenBadgerKV(dir string) (*BadgerKV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

func (b *BadgerKV) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (b *BadgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *BadgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *BadgerKV) Close() error {
	return b.db.Close()
}
