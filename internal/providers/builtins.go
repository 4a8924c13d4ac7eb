package providers

import "github.com/knitli/codeweaver/internal/types"

// RegisterBuiltins binds every backend in SPEC_FULL.md §4.2's table into
// r. Call once per process before any Create/Get call. Registering the
// same ID twice (e.g. a test overriding "local" with a mock) is safe —
// see Registry.Register.
func RegisterBuiltins(r *Registry) {
	r.Register(types.ProviderKindEmbedding, "local", lazyFactory{fn: func(cfg ProviderConfig) (AnyProvider, error) {
		return newHTTPEmbeddingProvider(cfg, 384)
	}})
	r.Register(types.ProviderKindEmbedding, "openai-compatible", lazyFactory{fn: func(cfg ProviderConfig) (AnyProvider, error) {
		return newHTTPEmbeddingProvider(cfg, 1536)
	}})
	r.Register(types.ProviderKindEmbedding, "azure", azureFactory{fn: func(cfg ProviderConfig) (AnyProvider, error) {
		return newAzureEmbeddingProvider(cfg)
	}})
	r.Register(types.ProviderKindEmbedding, "mock", lazyFactory{fn: newMockEmbeddingProvider})

	r.Register(types.ProviderKindSparseEmbedding, "bm25", lazyFactory{fn: newBM25SparseEmbeddingProvider})
	r.Register(types.ProviderKindSparseEmbedding, "mock", lazyFactory{fn: newMockSparseEmbeddingProvider})

	r.Register(types.ProviderKindReranking, "mock", lazyFactory{fn: newMockRerankingProvider})

	r.Register(types.ProviderKindVectorStore, "chromem", lazyFactory{fn: newChromemVectorStoreProvider})
	r.Register(types.ProviderKindVectorStore, "qdrant", lazyFactory{fn: newQdrantVectorStoreProvider})
}
