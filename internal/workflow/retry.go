package workflow

import (
	"context"
	"errors"

	"github.com/tablescout/tablescout/pkg/domain"
)

// stepFailure signals that a step spent its retry budget. The flow driver
// converts it into the ErrorReported phase; it never escapes to the caller
// as a bare error.
type stepFailure struct {
	summary string
}

func (f *stepFailure) Error() string {
	return f.summary
}

// callRetry runs one collaborator call under the bounded-retry policy: one
// initial attempt plus exactly one retry. The final failure is recorded on
// the run's error list; intermediate failures are not. A SourceSilent result
// passes through untouched, it is an answer rather than a failure.
func callRetry[T any](e *Engine, ctx context.Context, state *domain.RunState, step string, source domain.SourceID, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for {
		attempt := state.Attempt(step)

		e.emitCollaborator(ctx, e.hooks.OnCollaboratorCall, state, domain.EventCollaboratorCall, step, source, attempt, nil)
		out, err := fn(ctx)
		e.emitCollaborator(ctx, e.hooks.OnCollaboratorReturn, state, domain.EventCollaboratorReturn, step, source, attempt, err)

		if err == nil {
			return out, nil
		}
		if errors.Is(err, domain.ErrSourceSilent) {
			return zero, err
		}
		if ctx.Err() != nil {
			// Cancellation aborts between attempts; it is not a
			// collaborator failure and is never retried.
			return zero, ctx.Err()
		}
		if attempt >= domain.MaxAttempts {
			state.RecordError(domain.NewErrorReport(e.clock(), state.Phase, source, step, err))
			e.logger.Warn("step failed after final attempt",
				"session_id", state.SessionID,
				"step", step,
				"attempt", attempt,
				"err", err,
			)
			return zero, err
		}

		e.emitCollaborator(ctx, e.hooks.OnRetry, state, domain.EventRetry, step, source, attempt, err)
		e.logger.Debug("retrying step", "session_id", state.SessionID, "step", step, "attempt", attempt, "err", err)
	}
}
