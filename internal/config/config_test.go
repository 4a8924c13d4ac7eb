package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, Default().Chunking.CodeChunkSize, s.Chunking.CodeChunkSize)
	assert.Equal(t, "chromem", s.Providers.VectorStore)
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".codeweaver"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codeweaver", "config.yaml"),
		[]byte("chunking:\n  code_chunk_size: 4000\nproviders:\n  vector_store: qdrant\n"), 0644))

	s, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 4000, s.Chunking.CodeChunkSize)
	assert.Equal(t, "qdrant", s.Providers.VectorStore)
}

func TestLoad_EnvVarOverridesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".codeweaver"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codeweaver", "config.yaml"),
		[]byte("providers:\n  vector_store: qdrant\n"), 0644))

	t.Setenv("CODEWEAVER_PROVIDERS__VECTOR_STORE", "chromem")

	s, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "chromem", s.Providers.VectorStore)
}

func TestLoad_OverridesWinOverEverything(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Load(dir, &Settings{Providers: ProviderSettings{VectorStore: "qdrant"}})
	require.NoError(t, err)
	assert.Equal(t, "qdrant", s.Providers.VectorStore)
}

func TestValidate_RejectsOverlapAtLeastChunkSize(t *testing.T) {
	t.Parallel()

	s := Default()
	s.Chunking.Overlap = s.Chunking.CodeChunkSize

	err := Validate(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOverlap)
}

func TestSettingsHash_StableUnderGlobOrdering(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	b.Discovery.IncludeGlobs = []string{a.Discovery.IncludeGlobs[1], a.Discovery.IncludeGlobs[0]}
	b.Discovery.IncludeGlobs = append(b.Discovery.IncludeGlobs, a.Discovery.IncludeGlobs[2:]...)

	hashA, err := SettingsHash(a)
	require.NoError(t, err)
	hashB, err := SettingsHash(b)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
}

func TestSettingsHash_ChangesWithProviderModel(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	b.Providers.DenseModel = "some-other-model"

	hashA, err := SettingsHash(a)
	require.NoError(t, err)
	hashB, err := SettingsHash(b)
	require.NoError(t, err)

	assert.NotEqual(t, hashA, hashB)
}
