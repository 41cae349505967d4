package workflow

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
)

// transition moves the run to the next phase and fires the phase hooks.
func (e *Engine) transition(ctx context.Context, state *domain.RunState, next domain.Phase) {
	if state.Phase == next {
		return
	}
	prev := state.Phase

	if e.hooks.OnPhaseLeave != nil && prev != "" {
		e.hooks.OnPhaseLeave(ctx, &domain.PhaseEvent{
			EventBase: e.eventBase(state, domain.EventPhaseLeave),
			Phase:     prev,
			Intent:    state.Intent,
		})
	}

	state.Phase = next
	state.UpdatedAt = e.clock()

	if e.hooks.OnPhaseEnter != nil {
		e.hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{
			EventBase: e.eventBase(state, domain.EventPhaseEnter),
			Phase:     next,
			Intent:    state.Intent,
		})
	}

	e.logger.Debug("phase transition", "session_id", state.SessionID, "from", string(prev), "to", string(next))
}

// finish completes the run at Done with a terminal message and persists it.
func (e *Engine) finish(ctx context.Context, state *domain.RunState, message string) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseDone)
	state.Result = message
	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	return e.outcome(state, message, false), nil
}

// suspend checkpoints the run at AwaitingApproval and hands the proposal to
// the caller. The saved state is what survives a process restart.
func (e *Engine) suspend(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseAwaitingApproval)
	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	return e.outcome(state, state.Proposal, true), nil
}

// report converts a spent retry budget into the ErrorReported phase. The
// run stays resumable: the caller chooses between retry and terminate.
func (e *Engine) report(ctx context.Context, state *domain.RunState, summary string) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseErrorReported)
	if err := e.save(ctx, state); err != nil {
		return nil, err
	}
	return e.outcome(state, renderErrorReport(summary, state.Errors), true), nil
}

// stay answers within the current suspended phase without changing anything
// durable: detail requests, clarifications, and range re-prompts.
func (e *Engine) stay(state *domain.RunState, message string) *domain.Outcome {
	return e.outcome(state, message, true)
}

func (e *Engine) outcome(state *domain.RunState, message string, awaiting bool) *domain.Outcome {
	out := &domain.Outcome{
		SessionID:        state.SessionID,
		Phase:            state.Phase,
		Message:          message,
		AwaitingDecision: awaiting,
	}
	if len(state.Errors) > 0 {
		out.Errors = append([]domain.ErrorReport(nil), state.Errors...)
	}
	return out
}

func (e *Engine) eventBase(state *domain.RunState, typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.clock(),
		Type:      typ,
		SessionID: state.SessionID,
	}
}

func (e *Engine) emitCollaborator(ctx context.Context, hook func(context.Context, *domain.CollaboratorEvent), state *domain.RunState, typ domain.EventType, step string, source domain.SourceID, attempt int, err error) {
	if hook == nil {
		return
	}
	event := &domain.CollaboratorEvent{
		EventBase: e.eventBase(state, typ),
		Step:      step,
		Source:    source,
		Attempt:   attempt,
	}
	if err != nil {
		event.Err = err.Error()
		event.Class = domain.Classify(err)
	}
	hook(ctx, event)
}
