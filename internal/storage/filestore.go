// ABOUTME: JSON file store for the patient document with a one-level backup.
// ABOUTME: Reads fall back primary -> backup -> default; writes back up then atomically replace.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/models"
)

// Source reports where a Read found the document.
type Source int

const (
	SourceDefault Source = iota
	SourcePrimary
	SourceBackup
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceBackup:
		return "backup"
	default:
		return "default"
	}
}

// DefaultFileName is the document file name inside the data directory.
const DefaultFileName = "patient-data.json"

// FileStore persists a single PatientState as pretty-printed JSON.
type FileStore struct {
	path       string
	backupPath string
	logger     zerolog.Logger

	mu sync.Mutex
}

// Compile-time check that FileStore implements Repository.
var _ Repository = (*FileStore)(nil)

// NewFileStore creates a store for path; the backup lives next to it with a
// ".backup" suffix. The parent directory is created if needed.
func NewFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		path:       path,
		backupPath: path + ".backup",
		logger:     logger,
	}, nil
}

// Path returns the primary file path.
func (f *FileStore) Path() string {
	return f.path
}

// BackupPath returns the backup file path.
func (f *FileStore) BackupPath() string {
	return f.backupPath
}

// Read returns the stored document. Missing or corrupt files are never an
// error; the default document is returned when neither file is usable.
func (f *FileStore) Read(_ context.Context) (models.PatientState, Source) {
	if doc, err := readDocument(f.path); err == nil {
		return doc, SourcePrimary
	} else if !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("primary document unreadable, trying backup")
	}

	if doc, err := readDocument(f.backupPath); err == nil {
		return doc, SourceBackup
	} else if !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn().Err(err).Str("path", f.backupPath).Msg("backup document unreadable")
	}

	return models.DefaultState(), SourceDefault
}

func readDocument(path string) (models.PatientState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PatientState{}, err
	}
	return models.ParseState(data)
}

// Write replaces the stored document. The previous primary bytes are copied
// to the backup first; a failed backup is logged and does not stop the write.
func (f *FileStore) Write(_ context.Context, doc models.PatientState) error {
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.backup(); err != nil {
		f.logger.Warn().Err(err).Str("path", f.backupPath).Msg("backup failed")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".patient-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}

	f.logger.Debug().Str("path", f.path).Int("bytes", len(data)).Msg("document written")
	return nil
}

func (f *FileStore) backup() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read primary: %w", err)
	}
	return os.WriteFile(f.backupPath, data, 0o600)
}

// Exists reports whether a primary document has been written.
func (f *FileStore) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}
