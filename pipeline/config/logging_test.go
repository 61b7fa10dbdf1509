package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countBackups(t *testing.T, dir, base string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups []string
	for _, entry := range entries {
		if isBackupFile(entry.Name(), base) {
			backups = append(backups, entry.Name())
		}
	}
	return backups
}

func TestLogManager_RotatesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medallion.log")
	oversized := bytes.Repeat([]byte("x"), 1024*1024+1)
	require.NoError(t, os.WriteFile(path, oversized, 0644))

	lm := NewLogManager(&LogConfig{FilePath: path, MaxSize: 1})
	writer, err := lm.GetWriter()
	require.NoError(t, err)
	defer lm.Close()

	_, err = writer.Write([]byte("fresh entry\n"))
	require.NoError(t, err)

	// The old content moved to a timestamped backup and the live file
	// holds only what was written after rotation.
	assert.Len(t, countBackups(t, dir, "medallion.log"), 1)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("fresh entry\n")), info.Size())
}

func TestLogManager_NoRotationBelowLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medallion.log")
	require.NoError(t, os.WriteFile(path, []byte("small\n"), 0644))

	lm := NewLogManager(&LogConfig{FilePath: path, MaxSize: 1})
	_, err := lm.GetWriter()
	require.NoError(t, err)
	defer lm.Close()

	assert.Empty(t, countBackups(t, dir, "medallion.log"))
}

func TestLogManager_CleanupKeepsNewestBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medallion.log")

	names := []string{
		"medallion.log.2024-01-01-00-00-00",
		"medallion.log.2024-01-02-00-00-00",
		"medallion.log.2024-01-03-00-00-00",
	}
	for i, name := range names {
		backup := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(backup, []byte("old"), 0644))
		modTime := time.Now().Add(-time.Duration(len(names)-i) * time.Hour)
		require.NoError(t, os.Chtimes(backup, modTime, modTime))
	}

	lm := NewLogManager(&LogConfig{FilePath: path, MaxBackups: 1})
	require.NoError(t, lm.cleanupOldBackups())

	remaining := countBackups(t, dir, "medallion.log")
	require.Len(t, remaining, 1)
	assert.Equal(t, names[2], remaining[0])
}

func TestLogManager_CleanupRemovesExpiredBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medallion.log")

	expired := filepath.Join(dir, "medallion.log.2024-01-01-00-00-00")
	require.NoError(t, os.WriteFile(expired, []byte("old"), 0644))
	stale := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(expired, stale, stale))

	recent := filepath.Join(dir, "medallion.log.2024-06-01-00-00-00")
	require.NoError(t, os.WriteFile(recent, []byte("new"), 0644))

	lm := NewLogManager(&LogConfig{FilePath: path, MaxAge: 7})
	require.NoError(t, lm.cleanupOldBackups())

	remaining := countBackups(t, dir, "medallion.log")
	require.Len(t, remaining, 1)
	assert.Equal(t, "medallion.log.2024-06-01-00-00-00", remaining[0])
}

func TestCleanupLogFile_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medallion.log")
	require.NoError(t, os.WriteFile(path, []byte("leftover from last run\n"), 0644))

	require.NoError(t, CleanupLogFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCleanupLogFile_MissingFileIsFine(t *testing.T) {
	require.NoError(t, CleanupLogFile(filepath.Join(t.TempDir(), "absent.log")))
	require.NoError(t, CleanupLogFile(""))
}
