// ABOUTME: Tests for the JSON file store.
// ABOUTME: Covers round trips, the backup level, and corrupt-file fallbacks.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/medtrack/internal/models"
)

func setupFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data", DefaultFileName), zerolog.Nop())
	require.NoError(t, err)
	return fs
}

func docWithNotes(notes string) models.PatientState {
	doc := models.DefaultState()
	doc.Notes = notes
	return doc
}

func TestFileStoreReadMissingReturnsDefault(t *testing.T) {
	fs := setupFileStore(t)

	doc, src := fs.Read(context.Background())
	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, models.DefaultState(), doc)
	assert.False(t, fs.Exists())
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := setupFileStore(t)
	ctx := context.Background()

	doc := models.DefaultState()
	med := models.NewMedication("Sertraline", "2025-03-01").WithDosage("50mg")
	med.SideEffects = []models.SideEffectEntry{
		models.LegacyEntry("nausea"),
		models.StructuredEntry(models.SideEffectRecord{Name: "Headache", Description: "Pain in the head."}),
	}
	doc.Medications = append(doc.Medications, *med)
	doc.SideEffectSeverities["2025-03-02"] = map[string]int{"Nausea": 3}
	doc.Theme = models.ThemeDark

	require.NoError(t, fs.Write(ctx, doc))
	assert.True(t, fs.Exists())

	got, src := fs.Read(ctx)
	assert.Equal(t, SourcePrimary, src)
	assert.Equal(t, doc, got)

	raw, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"dailyAssessments\"", "document is pretty-printed")
	assert.Contains(t, string(raw), `"nausea"`, "legacy entries stay strings")
}

func TestFileStoreBackupHoldsPreviousDocument(t *testing.T) {
	fs := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, docWithNotes("first")))
	_, err := os.Stat(fs.BackupPath())
	assert.True(t, os.IsNotExist(err), "no backup before a second write")

	require.NoError(t, fs.Write(ctx, docWithNotes("second")))

	primary, err := readDocument(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, "second", primary.Notes)

	backup, err := readDocument(fs.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, "first", backup.Notes)
}

func TestFileStoreCorruptPrimaryReadsBackup(t *testing.T) {
	fs := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, docWithNotes("first")))
	require.NoError(t, fs.Write(ctx, docWithNotes("second")))
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{not json"), 0o600))

	doc, src := fs.Read(ctx)
	assert.Equal(t, SourceBackup, src)
	assert.Equal(t, "first", doc.Notes)
}

func TestFileStoreKeepsDocumentWithMistypedSideEffect(t *testing.T) {
	fs := setupFileStore(t)
	raw := `{"notes":"keep me","medications":[{"id":"m1","name":"Sertraline","startDate":"2025-01-01",
		"sideEffects":["nausea",{"name":5,"description":"x"}]}]}`
	require.NoError(t, os.WriteFile(fs.Path(), []byte(raw), 0o600))

	doc, src := fs.Read(context.Background())
	assert.Equal(t, SourcePrimary, src)
	assert.Equal(t, "keep me", doc.Notes)
	require.Len(t, doc.Medications, 1)
	assert.Len(t, doc.Medications[0].SideEffects, 2)
}

func TestFileStoreCorruptBothReadsDefault(t *testing.T) {
	fs := setupFileStore(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("[1,2,3]"), 0o600))
	require.NoError(t, os.WriteFile(fs.BackupPath(), []byte("garbage"), 0o600))

	doc, src := fs.Read(context.Background())
	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, models.DefaultState(), doc)
}

func TestFileStoreBackupFailureDoesNotBlockWrite(t *testing.T) {
	fs := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, fs.Write(ctx, docWithNotes("first")))

	// A directory at the backup path makes the backup phase fail.
	require.NoError(t, os.Mkdir(fs.BackupPath(), 0o750))

	require.NoError(t, fs.Write(ctx, docWithNotes("second")))
	doc, src := fs.Read(ctx)
	assert.Equal(t, SourcePrimary, src)
	assert.Equal(t, "second", doc.Notes)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	fs := setupFileStore(t)
	ctx := context.Background()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, fs.Write(ctx, docWithNotes(n)))
	}

	entries, err := os.ReadDir(filepath.Dir(fs.Path()))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{DefaultFileName, DefaultFileName + ".backup"}, names)
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "primary", SourcePrimary.String())
	assert.Equal(t, "backup", SourceBackup.String())
	assert.Equal(t, "default", SourceDefault.String())
}
