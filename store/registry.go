package store

import (
	"reflect"
	"sync"
)

// Registry holds at most one store per state model type. It exists so an
// application has exactly one authoritative state container per model,
// reachable without threading store references everywhere, while keeping
// lifetime explicit: tests construct their own Registry instead of
// sharing process-global state.
type Registry struct {
	mu     sync.Mutex
	stores map[reflect.Type]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[reflect.Type]any)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry for applications that
// want reach-from-anywhere store access. Tests should use NewRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Obtain returns the registry's store for model type S, creating it on
// first request. Subsequent requests for the same type return the
// identical instance; the supplied options only apply on creation.
func Obtain[S any](r *Registry, opts ...Option[S]) *Store[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reflect.TypeOf((*S)(nil)).Elem()
	if existing, ok := r.stores[key]; ok {
		return existing.(*Store[S])
	}
	s := New(opts...)
	r.stores[key] = s
	return s
}

// Lookup returns the store for model type S if one has been created.
func Lookup[S any](r *Registry) (*Store[S], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.stores[reflect.TypeOf((*S)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return existing.(*Store[S]), true
}

// Reset tears down and forgets all stores. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, s := range r.stores {
		if td, ok := s.(interface{ Teardown() }); ok {
			td.Teardown()
		}
		delete(r.stores, key)
	}
}
