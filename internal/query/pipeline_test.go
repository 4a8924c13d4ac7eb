package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

type fakeDenseProvider struct {
	vec []float32
	err error
}

func (f *fakeDenseProvider) Embed(ctx context.Context, texts []string, query bool) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{f.vec}, nil
}
func (f *fakeDenseProvider) Dimensions() int { return len(f.vec) }
func (f *fakeDenseProvider) Close() error    { return nil }

type fakeSparseProvider struct {
	vec types.SparseVec
	err error
}

func (f *fakeSparseProvider) EmbedSparse(ctx context.Context, texts []string) ([]types.SparseVec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []types.SparseVec{f.vec}, nil
}
func (f *fakeSparseProvider) Close() error { return nil }

type fakeStore struct {
	results []types.SearchResult
	err     error
}

func (f *fakeStore) Upsert(ctx context.Context, chunks []types.CodeChunk) error { return nil }
func (f *fakeStore) Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
func (f *fakeStore) DeleteByFile(ctx context.Context, filePath string) error { return nil }
func (f *fakeStore) Retrieve(ctx context.Context, chunkIDs []string) ([]types.CodeChunk, error) {
	return nil, nil
}
func (f *fakeStore) UpdateVectors(ctx context.Context, updates []providers.VectorUpdate) error {
	return nil
}
func (f *fakeStore) Close() error { return nil }

func newTestResult(path, content string, score float32) types.SearchResult {
	s := score
	return types.SearchResult{
		FilePath: path,
		Score:    score,
		Content: types.CodeChunk{
			Content:  content,
			Language: "go",
			FilePath: path,
		},
		DenseScore: &s,
	}
}

func TestFindCode_DenseOnly(t *testing.T) {
	t.Parallel()

	store := &fakeStore{results: []types.SearchResult{
		newTestResult("internal/chunker/chain.go", "func Chunk() {}", 0.9),
		newTestResult("internal/query/pipeline_test.go", "func TestX() {}", 0.5),
	}}
	p := NewPipeline(&fakeDenseProvider{vec: []float32{0.1, 0.2}}, nil, store, nil, nil)

	resp, err := p.FindCode(context.Background(), types.DefaultFindCodeRequest("how does chunking work"))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Contains(t, resp.SearchStrategy, types.SearchStrategyDenseOnly)
	assert.Equal(t, uint32(1), resp.TotalResults) // the _test.go path is excluded by default
	assert.Equal(t, uint32(1), resp.TotalMatches) // post-filter count

}

func TestFindCode_HybridCombinesScores(t *testing.T) {
	t.Parallel()

	dense := float32(1.0)
	sparse := float32(0.0)
	result := types.SearchResult{
		FilePath:    "internal/indexer/pipeline.go",
		Content:     types.CodeChunk{Content: "func embedBatched() {}", Language: "go"},
		DenseScore:  &dense,
		SparseScore: &sparse,
	}
	store := &fakeStore{results: []types.SearchResult{result}}
	sv, err := types.NewSparseVec([]uint32{1}, []float32{0.3})
	require.NoError(t, err)

	p := NewPipeline(&fakeDenseProvider{vec: []float32{0.1}}, &fakeSparseProvider{vec: sv}, store, nil, nil)

	resp, err := p.FindCode(context.Background(), types.DefaultFindCodeRequest("implement retry backoff"))
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.InDelta(t, hybridDenseWeight, resp.Matches[0].RelevanceScore, 0.01)
}

func TestFindCode_BothEmbeddingsFailDegrades(t *testing.T) {
	t.Parallel()

	p := NewPipeline(nil, nil, &fakeStore{}, nil, nil)

	intent := types.IntentUnderstand
	req := types.DefaultFindCodeRequest("anything")
	req.Intent = &intent

	resp, err := p.FindCode(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, types.IntentUnderstand, resp.QueryIntent)
	assert.Empty(t, resp.Matches)
	assert.Equal(t, []types.SearchStrategy{types.SearchStrategyKeywordFallback}, resp.SearchStrategy)
	assert.Contains(t, resp.Summary, "Search failed:")
}

func TestFindCode_SearchFailureDegradesResponse(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: assertErr{"boom"}}
	p := NewPipeline(&fakeDenseProvider{vec: []float32{0.1}}, nil, store, nil, nil)

	resp, err := p.FindCode(context.Background(), types.DefaultFindCodeRequest("why did it crash"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, []types.SearchStrategy{types.SearchStrategyKeywordFallback}, resp.SearchStrategy)
	assert.Equal(t, uint32(0), resp.TotalResults)
	assert.Contains(t, resp.Summary, "Search failed")
	assert.Equal(t, types.IntentDebug, resp.QueryIntent)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
