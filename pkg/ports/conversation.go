package ports

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Conversation is the inbound surface of the concierge. HTTP, MCP, and CLI
// adapters all drive the workflow through this interface.
type Conversation interface {
	// SubmitUtterance starts a run for the session, or, when the session is
	// suspended on a decision, treats the text as that decision.
	SubmitUtterance(ctx context.Context, sessionID, text string) (*domain.Outcome, error)

	// SubmitDecision resumes a suspended run. It fails with
	// domain.ErrNoPendingApproval when the session is not suspended,
	// including sessions that already reached Done.
	SubmitDecision(ctx context.Context, sessionID, raw string) (*domain.Outcome, error)

	// Inspect returns a snapshot of the session's run state.
	// Returns domain.ErrSessionNotFound for unknown sessions.
	Inspect(ctx context.Context, sessionID string) (*domain.RunState, error)

	// Sessions lists the known session IDs.
	Sessions(ctx context.Context) ([]string, error)

	// Forget deletes a session's run state.
	Forget(ctx context.Context, sessionID string) error

	// Entries returns the current curated list.
	Entries(ctx context.Context) ([]domain.ListEntry, error)
}
