// Package bootstrap resolves the Provider Registry instances both
// cmd/codeweaver-index and cmd/codeweaver-server need from a loaded
// config.Settings, so the two binaries share one implementation instead
// of each growing its own copy.
package bootstrap

import (
	"fmt"

	"github.com/knitli/codeweaver/internal/config"
	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

// Providers bundles the four backend instances a process needs, plus a
// Close that shuts each one down in reverse acquisition order.
type Providers struct {
	Dense    providers.EmbeddingProvider
	Sparse   providers.SparseEmbeddingProvider
	Store    providers.VectorStoreProvider
	Reranker providers.RerankingProvider

	closers []func() error
}

// Close releases every resolved provider instance, most recently
// acquired first.
func (p *Providers) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
}

// BuildProviders resolves dense, sparse, and vector-store instances
// (required) and a reranker instance (optional, only if settings names
// one) from registry, as singletons scoped to the process.
func BuildProviders(registry *providers.Registry, settings *config.Settings) (*Providers, error) {
	p := &Providers{}

	dense, err := registry.GetEmbeddingProviderInstance(providers.ProviderConfig{
		ProviderID: settings.Providers.DenseProvider,
		Model:      settings.Providers.DenseModel,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("%w: dense provider: %v", types.ErrConfiguration, err)
	}
	p.Dense = dense
	p.closers = append(p.closers, dense.Close)

	sparse, err := registry.GetSparseEmbeddingProviderInstance(providers.ProviderConfig{
		ProviderID: settings.Providers.SparseProvider,
		Model:      settings.Providers.SparseModel,
	}, true)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: sparse provider: %v", types.ErrConfiguration, err)
	}
	p.Sparse = sparse
	p.closers = append(p.closers, sparse.Close)

	vstore, err := registry.GetVectorStoreProviderInstance(providers.ProviderConfig{
		ProviderID: settings.Providers.VectorStore,
	}, true)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: vector store: %v", types.ErrConfiguration, err)
	}
	p.Store = vstore
	p.closers = append(p.closers, vstore.Close)

	if settings.Providers.Reranker != "" {
		reranker, err := registry.GetRerankingProviderInstance(providers.ProviderConfig{
			ProviderID: settings.Providers.Reranker,
		}, true)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("%w: reranker: %v", types.ErrConfiguration, err)
		}
		p.Reranker = reranker
		p.closers = append(p.closers, reranker.Close)
	}

	return p, nil
}
