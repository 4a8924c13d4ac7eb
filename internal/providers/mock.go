package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/knitli/codeweaver/internal/types"
)

// mockEmbeddingProvider generates deterministic embeddings by hashing
// input text, exactly mirroring the teacher's internal/embed.MockProvider
// so existing test fixtures behave identically under the new registry.
type mockEmbeddingProvider struct {
	dimensions int
}

func newMockEmbeddingProvider(ProviderConfig) (AnyProvider, error) {
	return &mockEmbeddingProvider{dimensions: 384}, nil
}

func (p *mockEmbeddingProvider) Embed(ctx context.Context, texts []string, query bool) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(text))
		vec := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		out[i] = vec
	}
	return out, nil
}

func (p *mockEmbeddingProvider) Dimensions() int { return p.dimensions }
func (p *mockEmbeddingProvider) Close() error    { return nil }

// mockSparseEmbeddingProvider generates a deterministic sparse vector
// from a text's lowercased word set, standing in for a trained sparse
// model in tests without reaching into the bm25 analyzer pipeline.
type mockSparseEmbeddingProvider struct{}

func newMockSparseEmbeddingProvider(ProviderConfig) (AnyProvider, error) {
	return &mockSparseEmbeddingProvider{}, nil
}

func (p *mockSparseEmbeddingProvider) EmbedSparse(ctx context.Context, texts []string) ([]types.SparseVec, error) {
	out := make([]types.SparseVec, len(texts))
	for i, text := range texts {
		out[i] = hashSparseVector(text)
	}
	return out, nil
}

func (p *mockSparseEmbeddingProvider) Close() error { return nil }

// hashSparseVector hashes each distinct lowercased token of text into a
// bounded index space, producing a small strictly-increasing-index
// SparseVec as types.NewSparseVec requires.
func hashSparseVector(text string) types.SparseVec {
	const vocabSize = 1 << 16
	seen := make(map[uint32]float32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := sha256.Sum256([]byte(word))
		idx := binary.BigEndian.Uint32(h[:4]) % vocabSize
		seen[idx] += 1.0
	}
	indices := make([]uint32, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = seen[idx]
	}
	vec, err := types.NewSparseVec(indices, values)
	if err != nil {
		return types.SparseVec{}
	}
	return vec
}

// mockRerankingProvider scores documents by lexical word overlap with
// the query, standing in for a trained cross-encoder.
type mockRerankingProvider struct{}

func newMockRerankingProvider(ProviderConfig) (AnyProvider, error) {
	return &mockRerankingProvider{}, nil
}

func (p *mockRerankingProvider) Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error) {
	queryWords := wordSet(query)
	results := make([]RerankResult, len(documents))
	for i, doc := range documents {
		results[i] = RerankResult{OriginalIndex: i, Score: overlapScore(queryWords, doc)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

func (p *mockRerankingProvider) Close() error { return nil }

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlapScore(queryWords map[string]struct{}, doc string) float32 {
	docWords := strings.Fields(strings.ToLower(doc))
	if len(docWords) == 0 {
		return 0
	}
	var matches int
	for _, w := range docWords {
		if _, ok := queryWords[w]; ok {
			matches++
		}
	}
	return float32(matches) / float32(len(docWords))
}
