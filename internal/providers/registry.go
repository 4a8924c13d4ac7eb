package providers

import (
	"fmt"
	"sync"

	"github.com/maypok86/otter"

	"github.com/knitli/codeweaver/internal/types"
)

// maxInstanceCacheWeight bounds the singleton instance cache. Provider
// instances are few and long-lived (one per distinct backend config),
// so the weight limit exists to cap runaway growth from misbehaving
// callers that mint many distinct ProviderConfig values rather than to
// evict healthy instances under normal use.
const maxInstanceCacheWeight = 256

// ProviderConfig is the settings view passed to a factory when
// constructing a backend. It mirrors a read-only projection over
// internal/config.Config (§6.4) rather than the full config struct, so
// a factory cannot reach into unrelated settings.
type ProviderConfig struct {
	ProviderID string
	Endpoint   string
	APIKey     string
	Model      string
	Extra      map[string]string
}

// providerFactory is the closed interface every registry entry
// implements. It replaces the original Python registry's literal
// "EXCEPTION" string sentinel (used there to special-case Azure) with a
// real type: azureFactory is simply a second implementation, not a
// string checked at call sites (Open Question 3, SPEC_FULL.md §4.2.1).
type providerFactory interface {
	build(cfg ProviderConfig) (AnyProvider, error)
}

// lazyFactory is the common case: a plain constructor function,
// invoked the first time a given (kind, providerID) instance is
// requested and cached from then on.
type lazyFactory struct {
	fn func(cfg ProviderConfig) (AnyProvider, error)
}

func (f lazyFactory) build(cfg ProviderConfig) (AnyProvider, error) { return f.fn(cfg) }

// azureFactory wraps Azure OpenAI's two-stage construction (resource
// name -> endpoint URL, then API-version-qualified client), which the
// generic openai-compatible factory cannot express since it assumes a
// single already-resolved endpoint.
type azureFactory struct {
	fn func(cfg ProviderConfig) (AnyProvider, error)
}

func (f azureFactory) build(cfg ProviderConfig) (AnyProvider, error) { return f.fn(cfg) }

// registryKey identifies one backend entry.
type registryKey struct {
	kind types.ProviderKind
	id   string
}

// instanceKey identifies one cached singleton instance, which is scoped
// to kind+id+endpoint+model so two distinct configurations of the same
// provider ID (e.g. two different local-embedding endpoints) never
// collide in the cache.
type instanceKey struct {
	registryKey
	endpoint string
	model    string
}

// Registry is the process-wide Provider Registry: a dynamic binding
// from (ProviderKind, provider ID) to a lazily-constructed, optionally
// singleton-cached backend instance. One Registry is constructed per
// server process (see cmd/codeweaver-server) and threaded through the
// indexer and query pipeline explicitly, never as a package global.
type Registry struct {
	mu          sync.RWMutex
	factories   map[registryKey]providerFactory
	instances   otter.Cache[instanceKey, AnyProvider]
	singletonMu sync.Mutex
	live        []AnyProvider // mirrors instances' values, for closing on clear
}

// NewRegistry returns an empty Registry. Call RegisterBuiltins (see
// builtins.go) to populate it with the backends in SPEC_FULL.md §4.2's
// table before use.
func NewRegistry() *Registry {
	cache, err := otter.MustBuilder[instanceKey, AnyProvider](maxInstanceCacheWeight).
		Cost(func(instanceKey, AnyProvider) uint32 { return 1 }).
		Build()
	if err != nil {
		// MustBuilder only fails on invalid construction parameters
		// (fixed constants here), never at runtime.
		panic(fmt.Sprintf("providers: building instance cache: %v", err))
	}
	return &Registry{
		factories: make(map[registryKey]providerFactory),
		instances: cache,
	}
}

// Register binds a provider ID's factory under the given kind. Re-
// registering an (kind, id) pair that already has cached singleton
// instances is rare enough (tests swapping in a mock) that it simply
// evicts the whole instance cache rather than tracking per-entry
// dependants.
func (r *Registry) Register(kind types.ProviderKind, id string, f providerFactory) {
	r.mu.Lock()
	r.factories[registryKey{kind, id}] = f
	r.mu.Unlock()
	r.ClearInstances()
}

// GetProviderEnumFor returns the ProviderKind a given provider ID is
// registered under, searching across all kinds. Ambiguous IDs shared
// across kinds are not supported by the registry's wire format (each ID
// is unique within a kind, and in practice across kinds too).
func (r *Registry) GetProviderEnumFor(id string) (types.ProviderKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k := range r.factories {
		if k.id == id {
			return k.kind, true
		}
	}
	return "", false
}

// ListProviders returns the provider IDs registered under kind.
func (r *Registry) ListProviders(kind types.ProviderKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for k := range r.factories {
		if k.kind == kind {
			ids = append(ids, k.id)
		}
	}
	return ids
}

// IsProviderAvailable reports whether (kind, id) has a registered
// factory. An unavailable optional backend is reported here rather than
// raised as an error — only a configured-but-missing backend is a
// ConfigurationError (see createProvider).
func (r *Registry) IsProviderAvailable(kind types.ProviderKind, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[registryKey{kind, id}]
	return ok
}

// ClearInstances evicts all cached singleton instances, closing each
// one first. Used between indexing runs that change provider config and
// in test teardown.
func (r *Registry) ClearInstances() {
	r.singletonMu.Lock()
	defer r.singletonMu.Unlock()
	for _, inst := range r.live {
		_ = inst.Close()
	}
	r.live = nil
	r.instances.Clear()
}

// createProvider builds a fresh, uncached instance. A missing
// registration is always a types.ErrConfiguration error: unlike
// IsProviderAvailable, this path is only reached once a caller has
// already committed to using this (kind, id).
func (r *Registry) createProvider(kind types.ProviderKind, cfg ProviderConfig) (AnyProvider, error) {
	r.mu.RLock()
	f, ok := r.factories[registryKey{kind, cfg.ProviderID}]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no %s provider registered for id %q", types.ErrConfiguration, kind, cfg.ProviderID)
	}
	return f.build(cfg)
}

// getOrCreateInstance returns the cached singleton for (kind, cfg) if
// singleton is true and one exists, otherwise builds a new instance.
// Non-singleton callers get a fresh instance every time and are
// responsible for closing it themselves.
func (r *Registry) getOrCreateInstance(kind types.ProviderKind, cfg ProviderConfig, singleton bool) (AnyProvider, error) {
	key := instanceKey{registryKey{kind, cfg.ProviderID}, cfg.Endpoint, cfg.Model}
	if !singleton {
		return r.createProvider(kind, cfg)
	}

	r.singletonMu.Lock()
	defer r.singletonMu.Unlock()

	if inst, ok := r.instances.Get(key); ok {
		return inst, nil
	}
	inst, err := r.createProvider(kind, cfg)
	if err != nil {
		return nil, err
	}
	r.instances.Set(key, inst)
	r.live = append(r.live, inst)
	return inst, nil
}

// CreateEmbeddingProvider builds a fresh EmbeddingProvider, bypassing
// the singleton cache.
func (r *Registry) CreateEmbeddingProvider(cfg ProviderConfig) (EmbeddingProvider, error) {
	p, err := r.createProvider(types.ProviderKindEmbedding, cfg)
	if err != nil {
		return nil, err
	}
	return p.(EmbeddingProvider), nil
}

// GetEmbeddingProviderInstance returns a (optionally cached) EmbeddingProvider.
func (r *Registry) GetEmbeddingProviderInstance(cfg ProviderConfig, singleton bool) (EmbeddingProvider, error) {
	p, err := r.getOrCreateInstance(types.ProviderKindEmbedding, cfg, singleton)
	if err != nil {
		return nil, err
	}
	return p.(EmbeddingProvider), nil
}

// CreateSparseEmbeddingProvider builds a fresh SparseEmbeddingProvider.
func (r *Registry) CreateSparseEmbeddingProvider(cfg ProviderConfig) (SparseEmbeddingProvider, error) {
	p, err := r.createProvider(types.ProviderKindSparseEmbedding, cfg)
	if err != nil {
		return nil, err
	}
	return p.(SparseEmbeddingProvider), nil
}

// GetSparseEmbeddingProviderInstance returns a (optionally cached) SparseEmbeddingProvider.
func (r *Registry) GetSparseEmbeddingProviderInstance(cfg ProviderConfig, singleton bool) (SparseEmbeddingProvider, error) {
	p, err := r.getOrCreateInstance(types.ProviderKindSparseEmbedding, cfg, singleton)
	if err != nil {
		return nil, err
	}
	return p.(SparseEmbeddingProvider), nil
}

// CreateRerankingProvider builds a fresh RerankingProvider.
func (r *Registry) CreateRerankingProvider(cfg ProviderConfig) (RerankingProvider, error) {
	p, err := r.createProvider(types.ProviderKindReranking, cfg)
	if err != nil {
		return nil, err
	}
	return p.(RerankingProvider), nil
}

// GetRerankingProviderInstance returns a (optionally cached) RerankingProvider.
func (r *Registry) GetRerankingProviderInstance(cfg ProviderConfig, singleton bool) (RerankingProvider, error) {
	p, err := r.getOrCreateInstance(types.ProviderKindReranking, cfg, singleton)
	if err != nil {
		return nil, err
	}
	return p.(RerankingProvider), nil
}

// CreateVectorStoreProvider builds a fresh VectorStoreProvider.
func (r *Registry) CreateVectorStoreProvider(cfg ProviderConfig) (VectorStoreProvider, error) {
	p, err := r.createProvider(types.ProviderKindVectorStore, cfg)
	if err != nil {
		return nil, err
	}
	return p.(VectorStoreProvider), nil
}

// GetVectorStoreProviderInstance returns a (optionally cached) VectorStoreProvider.
func (r *Registry) GetVectorStoreProviderInstance(cfg ProviderConfig, singleton bool) (VectorStoreProvider, error) {
	p, err := r.getOrCreateInstance(types.ProviderKindVectorStore, cfg, singleton)
	if err != nil {
		return nil, err
	}
	return p.(VectorStoreProvider), nil
}
