// Package registry manages the configured discovery sources.
package registry

import (
	"fmt"
	"sync"

	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// Registry manages the available sources. Iteration order is registration
// order, so discovery walks sources deterministically.
type Registry struct {
	mu      sync.RWMutex
	order   []domain.SourceID
	sources map[domain.SourceID]ports.Searcher
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[domain.SourceID]ports.Searcher),
	}
}

// Register adds a source to the registry.
// If a source with the same ID exists, it is overwritten in place and keeps
// its original position.
func (r *Registry) Register(id domain.SourceID, searcher ports.Searcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[id]; !exists {
		r.order = append(r.order, id)
	}
	r.sources[id] = searcher
}

// Lookup returns the searcher for a source ID.
// Returns an error if the source is not registered.
func (r *Registry) Lookup(id domain.SourceID) (ports.Searcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	searcher, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("source not registered: %s", id)
	}
	return searcher, nil
}

// Sources returns the registered source IDs in registration order.
func (r *Registry) Sources() []domain.SourceID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceID, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
