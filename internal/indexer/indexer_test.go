package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knitli/codeweaver/internal/chunker"
	"github.com/knitli/codeweaver/internal/grammar"
	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

// fakeIndexerStore is a minimal VectorStoreProvider recording every
// DeleteByFile call so tests can assert a modified file's old chunks
// are dropped before its new chunks are upserted.
type fakeIndexerStore struct {
	deletedFiles []string
	upsertedIDs  map[string][]string // file path -> chunk IDs from the most recent Upsert
}

func newFakeIndexerStore() *fakeIndexerStore {
	return &fakeIndexerStore{upsertedIDs: make(map[string][]string)}
}

func (f *fakeIndexerStore) Upsert(ctx context.Context, chunks []types.CodeChunk) error {
	for _, c := range chunks {
		f.upsertedIDs[c.FilePath] = append(f.upsertedIDs[c.FilePath], c.ChunkID.String())
	}
	return nil
}
func (f *fakeIndexerStore) Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error) {
	return nil, nil
}
func (f *fakeIndexerStore) DeleteByFile(ctx context.Context, filePath string) error {
	f.deletedFiles = append(f.deletedFiles, filePath)
	return nil
}
func (f *fakeIndexerStore) Retrieve(ctx context.Context, chunkIDs []string) ([]types.CodeChunk, error) {
	return nil, nil
}
func (f *fakeIndexerStore) UpdateVectors(ctx context.Context, updates []providers.VectorUpdate) error {
	return nil
}
func (f *fakeIndexerStore) Close() error { return nil }

func TestPrimeIndex_ModifiedFileDeletesOldChunksBeforeReupsert(t *testing.T) {
	t.Parallel()

	projectDir := t.TempDir()
	cacheDir := t.TempDir()
	filePath := filepath.Join(projectDir, "a.go")
	require.NoError(t, os.WriteFile(filePath, []byte("package a\n\nfunc A() {}\n"), 0o644))

	reg := grammar.NewRegistry()
	chain := chunker.NewChain(reg)
	store := newFakeIndexerStore()
	pipeline := NewPipeline(chain, nil, nil, store, nil)
	idx := NewIndexer(pipeline, nil, nil, store)

	opts := Options{
		ProjectPath: projectDir,
		CacheDir:    cacheDir,
		Discovery:   DiscoveryConfig{RootDir: projectDir},
	}

	_, err := PrimeIndex(context.Background(), idx, opts, os.ReadFile)
	require.NoError(t, err)
	assert.Empty(t, store.deletedFiles, "first-time indexing has nothing to delete")
	firstIDs := append([]string{}, store.upsertedIDs["a.go"]...)
	require.NotEmpty(t, firstIDs)

	require.NoError(t, os.WriteFile(filePath, []byte("package a\n\nfunc A() {}\n\nfunc B() {}\n"), 0o644))

	_, err = PrimeIndex(context.Background(), idx, opts, os.ReadFile)
	require.NoError(t, err)

	assert.Contains(t, store.deletedFiles, "a.go", "modified file's old chunks must be deleted before re-upsert")
}
