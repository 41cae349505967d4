package ports

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
)

// RunStore defines the interface for persisting run state. This is what
// makes the suspend point durable: a run parked at AwaitingApproval must be
// loadable after a process restart.
type RunStore interface {
	// Save persists the run state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.RunState) error

	// Load retrieves the run state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.RunState, error)

	// Delete removes the run state for a given session ID. Deleting an
	// unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the known session IDs.
	List(ctx context.Context) ([]string, error)
}
