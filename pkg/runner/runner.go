package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// Runner drives the conversation loop between a user and a concierge. It
// owns no workflow logic: every line is submitted through the conversation
// port, which routes suspended sessions to the decision path itself.
type Runner struct {
	handler     IOHandler
	interceptor DecisionInterceptor
	logger      *slog.Logger
	sessionID   string
}

// New creates a Runner. Without options it reads stdin, writes stdout, and
// lets the engine mint a session ID on the first utterance.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the session the runner is bound to. Empty until the
// first outcome arrives when no ID was configured.
func (r *Runner) SessionID() string {
	return r.sessionID
}

// Run executes the loop until the user exits, input is exhausted, or an
// interrupt arrives. Sessions persist between turns through the
// conversation's store, so quitting mid-approval is safe: an interrupt
// rejects the pending proposal first, then exits.
func (r *Runner) Run(ctx context.Context, conv ports.Conversation) error {
	handler := r.resolveHandler()

	signals := NewSignalManager()
	defer signals.Stop()

	// pending holds the last suspended outcome so an interrupt knows
	// whether there is a proposal to reject before exiting.
	var pending *domain.Outcome

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		turnCtx := signals.Context()

		text, err := handler.Input(turnCtx)
		if err != nil {
			signals.CheckRace()
			if turnCtx.Err() != nil {
				return r.handleInterrupt(conv, handler, pending)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			return nil
		}

		outcome, err := conv.SubmitUtterance(turnCtx, r.sessionID, text)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				signals.CheckRace()
				return r.handleInterrupt(conv, handler, pending)
			}
			return fmt.Errorf("submit utterance: %w", err)
		}

		pending, err = r.present(turnCtx, conv, handler, outcome)
		if err != nil {
			return err
		}
	}
}

// present outputs the outcome, adopts its session ID, and lets the
// interceptor chain answer pending decisions. It returns the outcome still
// awaiting a decision from the user, or nil when the turn settled.
func (r *Runner) present(ctx context.Context, conv ports.Conversation, handler IOHandler, outcome *domain.Outcome) (*domain.Outcome, error) {
	for outcome != nil {
		if r.sessionID == "" {
			r.sessionID = outcome.SessionID
			r.logger.Debug("session adopted", "session_id", r.sessionID)
		}
		if err := handler.Output(ctx, outcome); err != nil {
			return nil, fmt.Errorf("output error: %w", err)
		}
		if !outcome.AwaitingDecision {
			return nil, nil
		}
		if r.interceptor == nil {
			return outcome, nil
		}

		response, answered, err := r.interceptor(ctx, outcome)
		if err != nil {
			return nil, fmt.Errorf("decision interceptor: %w", err)
		}
		if !answered {
			return outcome, nil
		}
		r.logger.Debug("decision intercepted", "session_id", outcome.SessionID, "response", response)
		outcome, err = conv.SubmitDecision(ctx, outcome.SessionID, response)
		if err != nil {
			return nil, fmt.Errorf("submit decision: %w", err)
		}
	}
	return nil, nil
}

// handleInterrupt implements reject-and-save: a Ctrl+C while a proposal is
// pending declines it so the session lands in a settled phase before exit.
// The rejection runs on a fresh context because the signal context is
// already cancelled.
func (r *Runner) handleInterrupt(conv ports.Conversation, handler IOHandler, pending *domain.Outcome) error {
	ctx := context.Background()
	if pending == nil {
		_ = handler.SystemOutput(ctx, "Interrupted. Session saved.")
		return nil
	}
	outcome, err := conv.SubmitDecision(ctx, pending.SessionID, "cancel")
	if err != nil {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Interrupted. Could not settle the pending proposal: %v", err))
		return nil
	}
	if outcome != nil && outcome.Message != "" {
		_ = handler.SystemOutput(ctx, outcome.Message)
	}
	_ = handler.SystemOutput(ctx, "Interrupted. Session saved.")
	return nil
}

// resolveHandler memoizes the default handler so repeated Run calls share
// one input pump.
func (r *Runner) resolveHandler() IOHandler {
	if r.handler == nil {
		r.handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.handler
}
