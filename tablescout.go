package tablescout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"log/slog"

	"github.com/tablescout/tablescout/internal/adapters/csvlist"
	"github.com/tablescout/tablescout/internal/adapters/file"
	"github.com/tablescout/tablescout/internal/workflow"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
	"github.com/tablescout/tablescout/pkg/registry"
	"github.com/tablescout/tablescout/pkg/session"
)

// Concierge is the high-level entry point for the TableScout library.
// It wraps the internal workflow engine and provides a simplified API for
// consumers: submit an utterance, receive a proposal, submit a decision.
type Concierge struct {
	engine    *workflow.Engine
	sessions  *session.Manager
	sources   *registry.Registry
	store     ports.RunStore
	lists     ports.ListStore
	evaluator ports.Evaluator
	locker    ports.DistributedLocker

	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	engineOpts []workflow.EngineOption

	// Name labels the concierge in logs, derived from the data directory.
	Name string
}

// Option defines a functional option for configuring the Concierge.
type Option func(*Concierge)

// WithRunStore injects a custom run store, bypassing the default file store.
func WithRunStore(store ports.RunStore) Option {
	return func(c *Concierge) {
		c.store = store
	}
}

// WithListStore injects a custom list store, bypassing the default local CSV.
func WithListStore(lists ports.ListStore) Option {
	return func(c *Concierge) {
		c.lists = lists
	}
}

// WithEvaluator sets the extraction/ranking collaborator. Required: there is
// no zero-configuration evaluator.
func WithEvaluator(evaluator ports.Evaluator) Option {
	return func(c *Concierge) {
		c.evaluator = evaluator
	}
}

// WithSource registers a discovery source. Sources are walked in
// registration order.
func WithSource(id domain.SourceID, searcher ports.Searcher) Option {
	return func(c *Concierge) {
		c.sources.Register(id, searcher)
	}
}

// WithLocker enables distributed session locking, for multi-process
// deployments sharing a Redis-backed run store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Concierge) {
		c.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Concierge) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Concierge) {
		c.logger = logger
	}
}

// WithLocation sets the city/region passed to every source search
// (default: Washington DC).
func WithLocation(location string) Option {
	return func(c *Concierge) {
		c.engineOpts = append(c.engineOpts, workflow.WithLocation(location))
	}
}

// WithQualityFloor sets the minimum overall score a scored candidate needs
// to be proposed. Unscored candidates are always proposed.
func WithQualityFloor(floor float64) Option {
	return func(c *Concierge) {
		c.engineOpts = append(c.engineOpts, workflow.WithQualityFloor(floor))
	}
}

// New initializes a Concierge rooted at dataDir.
//
// By default runs are checkpointed as JSON files under dataDir/sessions and
// the curated list lives at dataDir/list.csv. Both defaults can be replaced
// with WithRunStore/WithListStore, in which case dataDir may be empty. An
// evaluator is always required; sources may be registered later through the
// returned Concierge only by rebuilding it, so pass them here.
func New(dataDir string, opts ...Option) (*Concierge, error) {
	c := &Concierge{
		sources: registry.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.evaluator == nil {
		return nil, errors.New("an evaluator is required (use WithEvaluator)")
	}

	needsDir := c.store == nil || c.lists == nil
	if needsDir && dataDir == "" {
		return nil, errors.New("dataDir is required when no custom run store or list store is provided")
	}

	if dataDir != "" {
		absPath, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("invalid data directory: %w", err)
		}
		c.Name = filepath.Base(absPath)

		if c.store == nil {
			c.store = file.New(filepath.Join(absPath, "sessions"))
		}
		if c.lists == nil {
			lists, err := csvlist.New(filepath.Join(absPath, "list.csv"))
			if err != nil {
				return nil, fmt.Errorf("failed to initialize list store: %w", err)
			}
			c.lists = lists
		}
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.Name != "" {
		c.logger = c.logger.With("concierge", c.Name)
	}

	sessionOpts := []session.Option{session.WithLogger(c.logger)}
	if c.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(c.locker))
	}
	c.sessions = session.NewManager(c.store, sessionOpts...)

	engineOpts := []workflow.EngineOption{
		workflow.WithLogger(c.logger),
		workflow.WithHooks(c.hooks),
	}
	engineOpts = append(engineOpts, c.engineOpts...)

	c.engine = workflow.NewEngine(c.sessions, c.sources, c.evaluator, c.lists, engineOpts...)
	return c, nil
}

// SubmitUtterance starts a run for the session, or, when the session is
// suspended on a decision, treats the text as that decision. A blank
// sessionID mints a fresh session.
func (c *Concierge) SubmitUtterance(ctx context.Context, sessionID, text string) (*domain.Outcome, error) {
	return c.engine.SubmitUtterance(ctx, sessionID, text)
}

// SubmitDecision resumes a suspended run with the user's decision. It fails
// with domain.ErrNoPendingApproval when the session is unknown, mid-flight,
// or already terminal; a decision never creates or re-applies a run.
func (c *Concierge) SubmitDecision(ctx context.Context, sessionID, raw string) (*domain.Outcome, error) {
	return c.engine.SubmitDecision(ctx, sessionID, raw)
}

// Inspect returns a snapshot of the session's run state.
func (c *Concierge) Inspect(ctx context.Context, sessionID string) (*domain.RunState, error) {
	return c.engine.Inspect(ctx, sessionID)
}

// Sessions lists the known session IDs.
func (c *Concierge) Sessions(ctx context.Context) ([]string, error) {
	return c.engine.Sessions(ctx)
}

// Forget deletes a session's run state.
func (c *Concierge) Forget(ctx context.Context, sessionID string) error {
	return c.engine.Forget(ctx, sessionID)
}

// Entries returns the curated list as currently persisted.
func (c *Concierge) Entries(ctx context.Context) ([]domain.ListEntry, error) {
	return c.engine.Entries(ctx)
}

// Store returns the underlying run store, for administration surfaces.
func (c *Concierge) Store() ports.RunStore {
	return c.store
}

// Lists returns the underlying list store.
func (c *Concierge) Lists() ports.ListStore {
	return c.lists
}

var _ ports.Conversation = (*Concierge)(nil)
