package types

// ProviderKind tags which abstract role a backend plays in the Provider
// Registry.
type ProviderKind string

const (
	ProviderKindEmbedding       ProviderKind = "EMBEDDING"
	ProviderKindSparseEmbedding ProviderKind = "SPARSE_EMBEDDING"
	ProviderKindReranking       ProviderKind = "RERANKING"
	ProviderKindVectorStore     ProviderKind = "VECTOR_STORE"
	ProviderKindAgent           ProviderKind = "AGENT"
	ProviderKindData            ProviderKind = "DATA"
)
