// ABOUTME: SQLite-backed lookup cache.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores term lists in a single table with an expiry timestamp.
type SQLite struct {
	db     *sql.DB
	dbPath string
	ttl    time.Duration
	now    func() time.Time
}

// OpenSQLite opens or creates the cache database at dbPath.
func OpenSQLite(dbPath string, ttl time.Duration) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	s := &SQLite{db: db, dbPath: dbPath, ttl: ttl, now: time.Now}

	if err := s.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookup_cache (
		medication TEXT PRIMARY KEY,
		terms TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_lookup_cache_expires ON lookup_cache(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns cached terms that have not expired.
func (s *SQLite) Get(ctx context.Context, key string) ([]string, bool, error) {
	var raw string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT terms, expires_at FROM lookup_cache WHERE medication = ?`, key,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached terms: %w", err)
	}
	if s.now().Unix() >= expiresAt {
		return nil, false, nil
	}

	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil, false, fmt.Errorf("decode cached terms: %w", err)
	}
	return terms, true, nil
}

// Set upserts terms for key.
func (s *SQLite) Set(ctx context.Context, key string, terms []string) error {
	raw, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("encode terms: %w", err)
	}
	expiresAt := s.now().Add(s.ttl).Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lookup_cache (medication, terms, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(medication) DO UPDATE SET
			terms = excluded.terms,
			expires_at = excluded.expires_at`,
		key, string(raw), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set cached terms: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookup_cache WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
