package grammar

import (
	"fmt"
	"sync"
)

// thingKey indexes a Thing by (language, name) — a Thing name is only
// unique within a language, unlike hector's flat string-keyed
// registry.BaseRegistry[T], so CodeWeaver's Registry is a small
// purpose-built struct rather than a generic instantiation.
type thingKey struct {
	language string
	name     string
}

// Registry is the process-wide index of Things, Categories, and
// Connections, partitioned by language. A single Registry is
// constructed once (see internal/providers for the analogous
// explicit-context pattern) and threaded through chunkers and
// classifiers rather than accessed through package-level globals.
type Registry struct {
	mu          sync.RWMutex
	things      map[thingKey]Thing
	categories  map[thingKey]Category
	directConns map[thingKey][]Connection
	posConns    map[thingKey][]Connection
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		things:      make(map[thingKey]Thing),
		categories:  make(map[thingKey]Category),
		directConns: make(map[thingKey][]Connection),
		posConns:    make(map[thingKey][]Connection),
	}
}

// RegisterThing adds or idempotently replaces a Thing. Loading is
// single-pass and deterministic: registering the same (language, name)
// twice with identical data is a no-op in effect.
func (r *Registry) RegisterThing(t Thing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.things[thingKey{t.Language, t.Name}] = t
}

// RegisterCategory adds or replaces a Category.
func (r *Registry) RegisterCategory(c Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[thingKey{c.Language, c.Name}] = c
}

// RegisterConnection adds a Connection, indexed by its source Thing and
// class. DirectConnections must carry a non-empty Role (spec §8
// invariant 6).
func (r *Registry) RegisterConnection(c Connection) error {
	if c.Class == ConnectionClassDirect && c.Role == "" {
		return fmt.Errorf("direct connection from %q has empty role", c.SourceThing)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := thingKey{c.Language, c.SourceThing}
	if c.Class == ConnectionClassDirect {
		r.directConns[key] = append(r.directConns[key], c)
	} else {
		r.posConns[key] = append(r.posConns[key], c)
	}
	return nil
}

// GetThingByName looks up a Thing. If language is empty, a Thing with
// that name from any language is returned; which one, when several
// languages define the name, is not defined.
func (r *Registry) GetThingByName(name, language string) (Thing, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if language != "" {
		t, ok := r.things[thingKey{language, name}]
		return t, ok
	}
	for k, t := range r.things {
		if k.name == name {
			return t, true
		}
	}
	return Thing{}, false
}

// GetCategoryByName looks up a Category by (name, language).
func (r *Registry) GetCategoryByName(name, language string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[thingKey{language, name}]
	return c, ok
}

// GetDirectConnectionsBySource returns all DirectConnections whose
// source is (name, language), in registration order.
func (r *Registry) GetDirectConnectionsBySource(name, language string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Connection(nil), r.directConns[thingKey{language, name}]...)
}

// GetPositionalConnectionsBySource returns all PositionalConnections
// whose source is (name, language), in registration order.
func (r *Registry) GetPositionalConnectionsBySource(name, language string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Connection(nil), r.posConns[thingKey{language, name}]...)
}

// CategoriesFor resolves a Thing's category names into Category values,
// used to check spec §8 invariant 6 (t.categories ⊆ Registry.categories[t.language]).
func (r *Registry) CategoriesFor(t Thing) []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(t.CategoryNames))
	for _, name := range t.CategoryNames {
		if c, ok := r.categories[thingKey{t.Language, name}]; ok {
			out = append(out, c)
		}
	}
	return out
}
