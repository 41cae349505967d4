package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tablescout/tablescout/pkg/approval"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// maxClarifications bounds unparseable responses at a suspend point. The
// response that reaches the bound resolves as a rejection: the engine fails
// closed rather than applying anything the user did not clearly approve.
const maxClarifications = 2

// resume routes a raw response into the handler for the suspended phase.
// Callers guarantee the run is suspended before calling.
func (e *Engine) resume(ctx context.Context, state *domain.RunState, raw string) (*domain.Outcome, error) {
	switch state.Phase {
	case domain.PhaseAwaitingApproval:
		return e.resumeApproval(ctx, state, raw)
	case domain.PhaseErrorReported:
		return e.resumeContinuation(ctx, state, raw)
	default:
		return nil, fmt.Errorf("session %s cannot resume from phase %s", state.SessionID, state.Phase)
	}
}

// resumeApproval parses the response against the pending proposal and acts
// on the decision. Detail requests and re-prompts answer without leaving
// AwaitingApproval, so the proposal and its indices stay frozen.
func (e *Engine) resumeApproval(ctx context.Context, state *domain.RunState, raw string) (*domain.Outcome, error) {
	size := len(state.Additions)
	if state.Intent == domain.IntentEdit {
		size = len(state.Removals)
	}

	decision, err := approval.Parse(raw, size)
	switch {
	case errors.Is(err, domain.ErrIndexOutOfRange):
		// A range miss re-prompts without spending the clarification
		// budget: the user understood the grammar, just not the bounds.
		return e.stay(state, renderOutOfRange(size)), nil
	case errors.Is(err, domain.ErrApprovalParse):
		state.Clarifications++
		state.UpdatedAt = e.clock()
		if state.Clarifications >= maxClarifications {
			e.logger.Info("approval failed closed", "session_id", state.SessionID, "clarifications", state.Clarifications)
			state.Decision = domain.Decision{Kind: domain.DecisionReject}
			return e.finish(ctx, state, msgCancelled)
		}
		if err := e.save(ctx, state); err != nil {
			return nil, err
		}
		return e.stay(state, msgClarifyDecision), nil
	case err != nil:
		return nil, err
	}

	switch decision.Kind {
	case domain.DecisionDetail:
		return e.stay(state, renderDetail(e.proposalItem(state, decision.Index))), nil
	case domain.DecisionReject:
		state.Decision = decision
		return e.finish(ctx, state, msgCancelled)
	default:
		state.Decision = decision
		state.Clarifications = 0
		return e.apply(ctx, state)
	}
}

// proposalItem resolves a 1-based proposal index against whichever set the
// run proposed. The parser has already bounds-checked the index.
func (e *Engine) proposalItem(state *domain.RunState, index int) *domain.Candidate {
	if state.Intent == domain.IntentEdit {
		return &state.Removals[index-1].Candidate
	}
	return &state.Additions[index-1]
}

// apply persists the approved subset. Entries are written in proposal
// order, one append per entry; a spent retry budget mid-way reports how far
// the write got, and the already-persisted entries stay persisted.
func (e *Engine) apply(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	if state.Intent == domain.IntentEdit {
		return e.applyRemovals(ctx, state)
	}

	e.transition(ctx, state, domain.PhaseApplying)

	selected := selectCandidates(state.Additions, state.Decision)
	added := 0
	for _, cand := range selected {
		entry := domain.NewListEntry(cand, e.clock())
		step := "append:" + domain.NormalizeName(cand.Name)

		_, err := callRetry(e, ctx, state, step, "", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, e.lists.Append(ctx, entry)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return e.report(ctx, state, fmt.Sprintf("I added %d of %d restaurants before the list update failed.", added, len(selected)))
		}
		added++
	}

	e.logger.Info("list updated", "session_id", state.SessionID, "added", added)
	return e.finish(ctx, state, renderApplied(added))
}

// applyRemovals executes a confirmed removal. The list store is re-asserted
// here because the run may have suspended under a differently wired process.
func (e *Engine) applyRemovals(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseApplying)

	editor, ok := e.lists.(ports.ListEditor)
	if !ok {
		return e.finish(ctx, state, msgRemoveUnsupported)
	}

	removed := 0
	for _, entry := range selectRemovals(state.Removals, state.Decision) {
		name := entry.Name
		step := "remove:" + domain.NormalizeName(name)

		_, err := callRetry(e, ctx, state, step, "", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, editor.Remove(ctx, name)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return e.report(ctx, state, fmt.Sprintf("I couldn't remove %s from your list.", name))
		}
		removed++
	}

	e.logger.Info("list updated", "session_id", state.SessionID, "removed", removed)
	if removed == 1 {
		return e.finish(ctx, state, renderRemoved(state.Removals[0].Name))
	}
	return e.finish(ctx, state, fmt.Sprintf("Removed %d restaurants from your list.", removed))
}

// resumeContinuation handles the retry/terminate choice at ErrorReported.
// Retry restarts the whole flow with a fresh budget; terminate completes
// the run with its error list intact.
func (e *Engine) resumeContinuation(ctx context.Context, state *domain.RunState, raw string) (*domain.Outcome, error) {
	retry, err := approval.ParseContinuation(raw)
	if err != nil {
		state.Clarifications++
		state.UpdatedAt = e.clock()
		if state.Clarifications >= maxClarifications {
			return e.finish(ctx, state, msgTerminated)
		}
		if err := e.save(ctx, state); err != nil {
			return nil, err
		}
		return e.stay(state, msgClarifyContinuation), nil
	}

	if !retry {
		return e.finish(ctx, state, msgTerminated)
	}

	e.logger.Info("retrying run", "session_id", state.SessionID, "intent", string(state.Intent))
	state.ResetForRetry(e.clock())
	return e.dispatch(ctx, state)
}

// selectCandidates resolves the decision to the candidates to persist, in
// proposal order regardless of the order the user named them.
func selectCandidates(additions []domain.Candidate, d domain.Decision) []domain.Candidate {
	if d.Kind == domain.DecisionFull {
		return additions
	}
	indices := append([]int(nil), d.Indices...)
	sort.Ints(indices)

	out := make([]domain.Candidate, 0, len(indices))
	for _, idx := range indices {
		out = append(out, additions[idx-1])
	}
	return out
}

func selectRemovals(removals []domain.ListEntry, d domain.Decision) []domain.ListEntry {
	if d.Kind == domain.DecisionFull {
		return removals
	}
	indices := append([]int(nil), d.Indices...)
	sort.Ints(indices)

	out := make([]domain.ListEntry, 0, len(indices))
	for _, idx := range indices {
		out = append(out, removals[idx-1])
	}
	return out
}
