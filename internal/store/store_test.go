package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/knitli/codeweaver/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadManifest_RoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := types.NewIndexFileManifest("/proj")
	m.Files["a.go"] = types.FileEntry{ContentHash: "abc"}
	require.NoError(t, SaveManifest(dir, m))

	loaded, err := LoadManifest(dir, "/proj")
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.Files["a.go"].ContentHash)
}

func TestLoadManifest_MissingReturnsFresh(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := LoadManifest(dir, "/proj")
	require.NoError(t, err)
	assert.Equal(t, "/proj", m.ProjectPath)
	assert.Empty(t, m.Files)
}

func TestLoadCheckpoint_RejectsHashMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	require.NoError(t, SaveCheckpoint(dir, &types.IndexingCheckpoint{
		SettingsHash: "hash-a",
		Timestamp:    now,
	}))

	c, err := LoadCheckpoint(dir, "hash-b", now)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestLoadCheckpoint_RejectsStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saved := time.Now().Add(-25 * time.Hour)
	require.NoError(t, SaveCheckpoint(dir, &types.IndexingCheckpoint{
		SettingsHash: "hash-a",
		Timestamp:    saved,
	}))

	c, err := LoadCheckpoint(dir, "hash-a", time.Now())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestLoadCheckpoint_AcceptsFreshMatchingHash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	require.NoError(t, SaveCheckpoint(dir, &types.IndexingCheckpoint{
		SettingsHash: "hash-a",
		Timestamp:    now,
	}))

	c, err := LoadCheckpoint(dir, "hash-a", now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "hash-a", c.SettingsHash)
}

func TestAtomicWriteJSON_CreatesParentDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, SaveManifest(nested, types.NewIndexFileManifest("/proj")))

	_, err := LoadManifest(nested, "/proj")
	require.NoError(t, err)
}
