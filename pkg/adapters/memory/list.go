package memory

import (
	"context"
	"sync"

	"github.com/tablescout/tablescout/pkg/domain"
)

// List implements ports.ListStore and ports.ListEditor in memory.
// Safe for concurrent use.
type List struct {
	entries []domain.ListEntry
	mu      sync.RWMutex
}

// NewList creates an empty in-memory list store, optionally seeded.
func NewList(seed ...domain.ListEntry) *List {
	l := &List{}
	for _, e := range seed {
		e.Candidate = e.Candidate.Clone()
		l.entries = append(l.entries, e)
	}
	return l
}

// FetchAll returns a snapshot of the current entries in insertion order.
func (l *List) FetchAll(ctx context.Context) ([]domain.ListEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.ListEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e
		out[i].Candidate = e.Candidate.Clone()
	}
	return out, nil
}

// Append adds one entry. Appends are individual; there is no batching or
// transaction across rows.
func (l *List) Append(ctx context.Context, entry domain.ListEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Candidate = entry.Candidate.Clone()
	l.entries = append(l.entries, entry)
	return nil
}

// Remove deletes the first entry whose normalized name matches. Removing an
// absent name is not an error: the list converges to the same state.
func (l *List) Remove(ctx context.Context, name string) error {
	key := domain.NormalizeName(name)

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if domain.NormalizeName(e.Name) == key {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return nil
}
