// Package workflow implements the approval-gated phase machine that turns a
// user utterance into discovery, evaluation, a proposal, and, after an
// explicit decision, a persisted list change.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
	"github.com/tablescout/tablescout/pkg/registry"
	"github.com/tablescout/tablescout/pkg/session"
)

const (
	// DefaultLocation scopes searches when no location is configured.
	DefaultLocation = "Washington DC"

	// DefaultQualityFloor drops scored candidates below this overall score.
	// Candidates with no score at all are kept: absence is silence, not zero.
	DefaultQualityFloor = 2.0
)

// Engine is the core phase machine runner. One engine serves many sessions;
// the session manager serializes access per session.
type Engine struct {
	sessions  *session.Manager
	sources   *registry.Registry
	evaluator ports.Evaluator
	lists     ports.ListStore

	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	clock        func() time.Time
	location     string
	qualityFloor float64
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle hooks for observability.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLocation sets the city/region passed to every source search.
func WithLocation(location string) EngineOption {
	return func(e *Engine) {
		e.location = location
	}
}

// WithQualityFloor sets the minimum overall score a scored candidate needs
// to survive evaluation. Unscored candidates always survive.
func WithQualityFloor(floor float64) EngineOption {
	return func(e *Engine) {
		e.qualityFloor = floor
	}
}

// NewEngine creates an engine with the given collaborators.
func NewEngine(sessions *session.Manager, sources *registry.Registry, evaluator ports.Evaluator, lists ports.ListStore, opts ...EngineOption) *Engine {
	e := &Engine{
		sessions:     sessions,
		sources:      sources,
		evaluator:    evaluator,
		lists:        lists,
		logger:       logging.NewNop(),
		clock:        time.Now,
		location:     DefaultLocation,
		qualityFloor: DefaultQualityFloor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitUtterance starts a run for the session. When the session is
// suspended on a decision, the text is handed to the decision parser
// instead, so a single conversational input channel keeps working.
func (e *Engine) SubmitUtterance(ctx context.Context, sessionID, text string) (*domain.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("utterance must not be empty")
	}
	if sessionID == "" {
		sessionID = domain.NewSessionID(e.clock())
	}

	var outcome *domain.Outcome
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := e.sessions.Store().Load(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			state = domain.NewRunState(sessionID, text, e.clock())
		case err != nil:
			return err
		case state.Phase.Suspended():
			outcome, err = e.resume(ctx, state, text)
			return err
		default:
			// Terminal or idle: a fresh utterance starts a fresh run
			// under the same session identifier.
			state = domain.NewRunState(sessionID, text, e.clock())
		}

		outcome, err = e.begin(ctx, state)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// SubmitDecision resumes a suspended run. Sessions that are unknown, still
// mid-flight, or already terminal yield ErrNoPendingApproval: a decision
// never silently creates or mutates a run.
func (e *Engine) SubmitDecision(ctx context.Context, sessionID, raw string) (*domain.Outcome, error) {
	var outcome *domain.Outcome
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := e.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("%w: unknown session %q", domain.ErrNoPendingApproval, sessionID)
			}
			return err
		}
		if !state.Phase.Suspended() {
			return fmt.Errorf("%w: session %q is %s", domain.ErrNoPendingApproval, sessionID, state.Phase)
		}

		outcome, err = e.resume(ctx, state, raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Inspect returns a snapshot of the session's run state.
func (e *Engine) Inspect(ctx context.Context, sessionID string) (*domain.RunState, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Sessions lists the known session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Forget deletes a session's run state.
func (e *Engine) Forget(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// Entries returns the current curated list.
func (e *Engine) Entries(ctx context.Context) ([]domain.ListEntry, error) {
	return e.lists.FetchAll(ctx)
}

// save persists the run. It must only be called while holding the session
// lock; it writes through the store directly because the manager's locking
// entry points would self-deadlock here.
func (e *Engine) save(ctx context.Context, state *domain.RunState) error {
	if err := e.sessions.Store().Save(ctx, state.SessionID, state); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", state.SessionID, err)
	}
	return nil
}

var _ ports.Conversation = (*Engine)(nil)
