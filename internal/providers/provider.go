// Package providers implements the Provider Registry: a dynamic binding
// from abstract ProviderKind to concrete backend implementations, with
// lazy initialization and singleton instance caching.
//
// Grounded on the teacher's internal/embed.Provider/NewProvider
// (interface + factory-by-config-string shape) and internal/pattern's
// AstGrepProvider lazy-init-with-mutex pattern, generalized from a
// single embedding-only factory into a registry keyed by ProviderKind.
// The generic backbone borrows hector's pkg/registry.BaseRegistry[T]
// and pkg/embedders/registry.go idea of per-kind sub-registries, though
// CodeWeaver's Registry stays a single struct (see registry.go) since
// each ProviderKind needs a differently-shaped factory signature.
package providers

import (
	"context"

	"github.com/knitli/codeweaver/internal/types"
)

// EmbeddingProvider produces dense vector embeddings for text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string, query bool) ([][]float32, error)
	Dimensions() int
	Close() error
}

// SparseEmbeddingProvider produces sparse (token-weighted) embeddings.
type SparseEmbeddingProvider interface {
	EmbedSparse(ctx context.Context, texts []string) ([]types.SparseVec, error)
	Close() error
}

// RerankingProvider reorders candidates against a query using a
// cross-encoder or equivalent relevance model.
type RerankingProvider interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error)
	Close() error
}

// RerankResult pairs a reranked document's original index with its new
// relevance score, so callers can map back to the originating candidate.
type RerankResult struct {
	OriginalIndex int
	Score         float32
}

// VectorStoreProvider persists and searches chunk embeddings. Vector
// placement differs by backend: chromem keeps the dense vector as the
// document embedding and a reconciled sparse vector in a "sparse"
// metadata entry; qdrant stores both as named vectors, "dense" and
// "sparse", with no unnamed default slot.
type VectorStoreProvider interface {
	Upsert(ctx context.Context, chunks []types.CodeChunk) error
	Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error)
	DeleteByFile(ctx context.Context, filePath string) error
	Retrieve(ctx context.Context, chunkIDs []string) ([]types.CodeChunk, error)
	// UpdateVectors attaches newly generated embeddings to already-stored
	// points, used by the indexer's reconciliation pass (spec §4.4.5) to
	// backfill a missing dense or sparse vector without re-upserting the
	// whole chunk.
	UpdateVectors(ctx context.Context, updates []VectorUpdate) error
	Close() error
}

// VectorUpdate is one reconciliation update: the chunk to patch and
// whichever of Dense/Sparse the caller determined was missing.
type VectorUpdate struct {
	ChunkID string
	Dense   []float32
	Sparse  *types.SparseVec
}

// AnyProvider is the union every concrete backend satisfies at minimum;
// the Registry stores instances behind this interface and type-asserts
// to the kind-specific interface on retrieval.
type AnyProvider interface {
	Close() error
}
