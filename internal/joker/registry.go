package joker

import (
	"fmt"
	"sort"
)

// Factory builds one joker instance from its resolved metadata. The
// registry fills Meta.ID before calling; slot positions are assigned by the
// owning Collection.
type Factory func(meta Meta) Joker

// Registry maps joker kinds to factories and static metadata. Build it once
// at process start, register everything, then treat it as read-only; a
// frozen registry may be shared across game instances without
// synchronization.
type Registry struct {
	factories map[string]Factory
	metas     map[string]Meta
	frozen    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		metas:     make(map[string]Meta),
	}
}

// Register adds a kind. Registering after Freeze or registering a duplicate
// kind is a programming error and panics during startup wiring.
func (r *Registry) Register(meta Meta, factory Factory) {
	if r.frozen {
		panic(fmt.Sprintf("joker registry frozen, cannot register %q", meta.Kind))
	}
	if meta.Kind == "" {
		panic("joker registry: empty kind")
	}
	if _, dup := r.factories[meta.Kind]; dup {
		panic(fmt.Sprintf("joker registry: duplicate kind %q", meta.Kind))
	}
	r.factories[meta.Kind] = factory
	r.metas[meta.Kind] = meta
}

// Freeze marks the registry read-only.
func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

// New builds an instance of kind with the given instance id, using the
// registry's current metadata for the kind.
func (r *Registry) New(kind, id string) (Joker, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown joker kind %q", kind)
	}
	meta := r.metas[kind]
	meta.ID = id
	return factory(meta), nil
}

// SetMeta replaces the static metadata for an already registered kind.
// Catalog overrides use it during startup wiring, before Freeze.
func (r *Registry) SetMeta(kind string, meta Meta) error {
	if r.frozen {
		return fmt.Errorf("joker registry frozen, cannot override %q", kind)
	}
	if _, ok := r.metas[kind]; !ok {
		return fmt.Errorf("unknown joker kind %q", kind)
	}
	meta.Kind = kind
	meta.ID = ""
	r.metas[kind] = meta
	return nil
}

// Meta returns the static metadata for kind.
func (r *Registry) Meta(kind string) (Meta, bool) {
	m, ok := r.metas[kind]
	return m, ok
}

// Kinds returns every registered kind, sorted for determinism.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
