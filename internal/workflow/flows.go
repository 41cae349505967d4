package workflow

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// runView renders the curated list. The run walks Comparing and Proposing
// so inspection surfaces see the usual shape, then completes: there is
// nothing to approve.
func (e *Engine) runView(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	err := e.compare(ctx, state)
	if out, handled, herr := e.halt(ctx, state, err); handled {
		return out, herr
	}

	e.transition(ctx, state, domain.PhaseProposing)
	return e.finish(ctx, state, renderList(state.Existing))
}

// runEdit resolves a conversational edit against the current list. Only
// removal reaches the suspend point; everything else completes with an
// explanatory message. Removal is destructive, so it is approval-gated the
// same way additions are.
func (e *Engine) runEdit(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseDiscovering)

	cmd, err := callRetry(e, ctx, state, "parse_edit", "", func(ctx context.Context) (domain.EditCommand, error) {
		return e.evaluator.ParseEdit(ctx, state.Utterance)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return e.report(ctx, state, "I couldn't understand the edit request.")
	}

	switch cmd.Action {
	case domain.EditRemove:
	case domain.EditUpdate:
		return e.finish(ctx, state, msgEditUpdateUnsupported)
	case domain.EditAdd:
		return e.finish(ctx, state, msgEditAddUnsupported)
	default:
		return e.finish(ctx, state, msgEditUnparsed)
	}

	err = e.compare(ctx, state)
	if out, handled, herr := e.halt(ctx, state, err); handled {
		return out, herr
	}

	entry, found := findEntry(state.Existing, cmd.Name)
	if !found {
		return e.finish(ctx, state, renderEditNotFound(cmd.Name))
	}
	if _, ok := e.lists.(ports.ListEditor); !ok {
		return e.finish(ctx, state, msgRemoveUnsupported)
	}

	state.Removals = []domain.ListEntry{entry}
	e.transition(ctx, state, domain.PhaseProposing)
	state.Proposal = renderRemovePrompt(entry.Name)
	return e.suspend(ctx, state)
}

// findEntry matches by normalized name, the same comparison the addition
// set uses.
func findEntry(entries []domain.ListEntry, name string) (domain.ListEntry, bool) {
	want := domain.NormalizeName(name)
	for _, entry := range entries {
		if domain.NormalizeName(entry.Name) == want {
			return entry, true
		}
	}
	return domain.ListEntry{}, false
}
