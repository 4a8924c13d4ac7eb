package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

type fakeReconcileStore struct {
	chunks        []types.CodeChunk
	updates       []providers.VectorUpdate
	updateErr     error
	retrieveFails map[string]bool
}

func (f *fakeReconcileStore) Upsert(ctx context.Context, chunks []types.CodeChunk) error { return nil }
func (f *fakeReconcileStore) Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error) {
	return nil, nil
}
func (f *fakeReconcileStore) DeleteByFile(ctx context.Context, filePath string) error { return nil }
func (f *fakeReconcileStore) Retrieve(ctx context.Context, chunkIDs []string) ([]types.CodeChunk, error) {
	if len(chunkIDs) > 0 && f.retrieveFails[chunkIDs[0]] {
		return nil, assert.AnError
	}
	return f.chunks, nil
}
func (f *fakeReconcileStore) UpdateVectors(ctx context.Context, updates []providers.VectorUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updates...)
	return nil
}
func (f *fakeReconcileStore) Close() error { return nil }

type fakeReconcileDense struct{ vec []float32 }

func (f *fakeReconcileDense) Embed(ctx context.Context, texts []string, query bool) ([][]float32, error) {
	return [][]float32{f.vec}, nil
}
func (f *fakeReconcileDense) Dimensions() int { return len(f.vec) }
func (f *fakeReconcileDense) Close() error    { return nil }

type fakeReconcileSparse struct{ vec types.SparseVec }

func (f *fakeReconcileSparse) EmbedSparse(ctx context.Context, texts []string) ([]types.SparseVec, error) {
	return []types.SparseVec{f.vec}, nil
}
func (f *fakeReconcileSparse) Close() error { return nil }

func TestReconcileMissingEmbeddings_BackfillsDenseOnly(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	manifest.Files["a.go"] = types.FileEntry{
		ChunkIDs:          []string{"chunk-1"},
		HasDenseEmbedding: false,
	}

	store := &fakeReconcileStore{chunks: []types.CodeChunk{{Content: "func A() {}"}}}
	dense := &fakeReconcileDense{vec: []float32{0.1, 0.2}}

	updated, count := ReconcileMissingEmbeddings(context.Background(), manifest, store, dense, nil, true, false)

	require.Len(t, store.updates, 1)
	assert.Equal(t, "chunk-1", store.updates[0].ChunkID)
	assert.Equal(t, []float32{0.1, 0.2}, store.updates[0].Dense)
	assert.Nil(t, store.updates[0].Sparse)

	assert.Equal(t, 1, count)
	entry, ok := updated["a.go"]
	require.True(t, ok)
	assert.True(t, entry.HasDenseEmbedding)
	assert.False(t, entry.HasSparseEmbedding)
}

func TestReconcileMissingEmbeddings_SkipsFilesAlreadyComplete(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	manifest.Files["a.go"] = types.FileEntry{
		ChunkIDs:          []string{"chunk-1"},
		HasDenseEmbedding: true,
	}

	store := &fakeReconcileStore{}
	dense := &fakeReconcileDense{vec: []float32{0.1}}

	updated, count := ReconcileMissingEmbeddings(context.Background(), manifest, store, dense, nil, true, false)

	assert.Empty(t, updated)
	assert.Equal(t, 0, count)
}

func TestReconcileMissingEmbeddings_NoOpWhenNeitherKindRequested(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	manifest.Files["a.go"] = types.FileEntry{ChunkIDs: []string{"chunk-1"}}

	updated, count := ReconcileMissingEmbeddings(context.Background(), manifest, &fakeReconcileStore{}, nil, nil, false, false)

	assert.Empty(t, updated)
	assert.Equal(t, 0, count)
}

func TestReconcileMissingEmbeddings_BackfillsBothKinds(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	manifest.Files["a.go"] = types.FileEntry{ChunkIDs: []string{"chunk-1"}}

	store := &fakeReconcileStore{chunks: []types.CodeChunk{{Content: "func A() {}"}}}
	dense := &fakeReconcileDense{vec: []float32{0.1}}
	sparse := &fakeReconcileSparse{vec: types.SparseVec{Indices: []uint32{1}, Values: []float32{0.5}}}

	updated, count := ReconcileMissingEmbeddings(context.Background(), manifest, store, dense, sparse, true, true)

	assert.Equal(t, 1, count)
	entry := updated["a.go"]
	assert.True(t, entry.HasDenseEmbedding)
	assert.True(t, entry.HasSparseEmbedding)
}

func TestReconcileMissingEmbeddings_ContinuesPastRetrieveError(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	manifest.Files["broken.go"] = types.FileEntry{ChunkIDs: []string{"chunk-1"}}
	manifest.Files["ok.go"] = types.FileEntry{ChunkIDs: []string{"chunk-2"}}

	store := &fakeReconcileStore{
		chunks:        []types.CodeChunk{{Content: "func B() {}"}},
		retrieveFails: map[string]bool{"chunk-1": true},
	}
	dense := &fakeReconcileDense{vec: []float32{0.3}}

	updated, count := ReconcileMissingEmbeddings(context.Background(), manifest, store, dense, nil, true, false)

	assert.Equal(t, 1, count)
	assert.Len(t, updated, 1)
	_, ok := updated["ok.go"]
	assert.True(t, ok)
	_, ok = updated["broken.go"]
	assert.False(t, ok)
}
