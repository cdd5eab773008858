package modular

import (
	"errors"
	"fmt"
	"sort"
)

// Factory builds one Module instance for a voice.
type Factory func(ctx Context) (Module, error)

type registryEntry struct {
	desc    Descriptor
	factory Factory
}

// Registry maps module kind names to their descriptors and factories.
// It is populated at process start and read-only afterwards, so it is shared
// across all voices without locking.
type Registry struct {
	kinds map[string]registryEntry
}

var errDuplicateKind = errors.New("duplicate module kind")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]registryEntry)}
}

// Register adds a module kind with its descriptor and factory.
func (r *Registry) Register(desc Descriptor, factory Factory) error {
	if desc.Kind == "" {
		return errors.New("empty module kind")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.kinds[desc.Kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKind, desc.Kind)
	}

	r.kinds[desc.Kind] = registryEntry{desc: desc, factory: factory}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(desc Descriptor, factory Factory) {
	err := r.Register(desc, factory)
	if err != nil {
		panic("modular registry: " + err.Error())
	}
}

// Lookup returns the descriptor and factory for the given kind.
func (r *Registry) Lookup(kind string) (Descriptor, Factory, error) {
	entry, ok := r.kinds[kind]
	if !ok {
		return Descriptor{}, nil, fmt.Errorf("%w: %s", ErrUnknownModuleKind, kind)
	}

	return entry.desc, entry.factory, nil
}

// Catalog returns all registered descriptors sorted by kind name.
// It is the read-only listing consumed by patch editors.
func (r *Registry) Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(r.kinds))
	for _, entry := range r.kinds {
		out = append(out, entry.desc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })

	return out
}
