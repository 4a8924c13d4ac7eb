package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/knitli/codeweaver/internal/types"
)

// bm25SparseEmbeddingProvider produces term-frequency sparse vectors
// using bleve's standard analyzer pipeline (tokenize, lowercase, stop
// words) rather than a full bleve index — the teacher already depends
// on bleve for the exact/FTS searcher (internal/mcp/exact_searcher.go);
// this reuses only its analysis sub-package, grounded on that usage but
// scoped down to match the spec's sparse-embedding contract instead of
// a whole-document search index.
type bm25SparseEmbeddingProvider struct {
	analyzer *analysis.Analyzer
}

func newBM25SparseEmbeddingProvider(ProviderConfig) (AnyProvider, error) {
	cache := registry.NewCache()
	analyzer, err := cache.AnalyzerNamed(standard.Name)
	if err != nil {
		return nil, err
	}
	return &bm25SparseEmbeddingProvider{analyzer: analyzer}, nil
}

func (p *bm25SparseEmbeddingProvider) EmbedSparse(ctx context.Context, texts []string) ([]types.SparseVec, error) {
	out := make([]types.SparseVec, len(texts))
	for i, text := range texts {
		out[i] = p.termFrequencyVector(text)
	}
	return out, nil
}

func (p *bm25SparseEmbeddingProvider) Close() error { return nil }

// termFrequencyVector tokenizes text with the standard analyzer and
// hashes each surviving term into a bounded index space, accumulating
// raw term frequency as the value — a BM25-style term-frequency
// component without the corpus-wide IDF term, which the registry
// contract has no hook for (it scores one text at a time).
func (p *bm25SparseEmbeddingProvider) termFrequencyVector(text string) types.SparseVec {
	const vocabSize = 1 << 16
	tokens := p.analyzer.Analyze([]byte(text))

	counts := make(map[uint32]float32)
	for _, tok := range tokens {
		h := sha256.Sum256(tok.Term)
		idx := binary.BigEndian.Uint32(h[:4]) % vocabSize
		counts[idx]++
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx]
	}

	vec, err := types.NewSparseVec(indices, values)
	if err != nil {
		return types.SparseVec{}
	}
	return vec
}
