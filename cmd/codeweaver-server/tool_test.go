package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/query"
	"github.com/knitli/codeweaver/internal/types"
)

type fakeDenseProvider struct{ vec []float32 }

func (f *fakeDenseProvider) Embed(ctx context.Context, texts []string, isQuery bool) ([][]float32, error) {
	return [][]float32{f.vec}, nil
}
func (f *fakeDenseProvider) Dimensions() int { return len(f.vec) }
func (f *fakeDenseProvider) Close() error    { return nil }

type fakeStore struct{ results []types.SearchResult }

func (f *fakeStore) Upsert(ctx context.Context, chunks []types.CodeChunk) error { return nil }
func (f *fakeStore) Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error) {
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

func TestFindCodeHandler_ReturnsJSONMatches(t *testing.T) {
	t.Parallel()

	score := float32(0.8)
	store := &fakeStore{results: []types.SearchResult{{
		FilePath:   "internal/query/pipeline.go",
		Score:      0.8,
		DenseScore: &score,
		Content: types.CodeChunk{
			Content:  "func FindCode() {}",
			Language: "go",
			FilePath: "internal/query/pipeline.go",
		},
	}}}
	pipeline := query.NewPipeline(&fakeDenseProvider{vec: []float32{0.1}}, nil, store, nil, nil)

	handler := findCodeHandler(pipeline)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"query": "how does find_code work",
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var decoded types.FindCodeResponseSummary
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, uint32(1), decoded.TotalResults)
	assert.Len(t, decoded.Matches, 1)
}

func TestFindCodeHandler_RejectsMissingQuery(t *testing.T) {
	t.Parallel()

	pipeline := query.NewPipeline(&fakeDenseProvider{vec: []float32{0.1}}, nil, &fakeStore{}, nil, nil)
	handler := findCodeHandler(pipeline)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
