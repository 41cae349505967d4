package graph

import "github.com/tablescout/tablescout/pkg/domain"

// OverlayForRun derives the progress overlay for a run. The trail follows
// the intent's path through the machine: exact for suspended runs, and for
// completed runs trimmed by what the state proves was entered (no proposal
// means no suspension, no approval means no apply step).
func OverlayForRun(state *domain.RunState) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{Visited: visitedPhases(state), Current: state.Phase}
}

func visitedPhases(state *domain.RunState) []domain.Phase {
	path := intentPath(state.Intent)

	if state.Phase == domain.PhaseErrorReported {
		return prefixThrough(path, failurePhase(state))
	}

	visited := prefixBefore(path, state.Phase)
	if state.Phase == domain.PhaseDone {
		visited = trimDoneTrail(visited, state)
	}
	return visited
}

// intentPath is the phase sequence a run of the given intent walks when it
// goes the distance. Unknown intents bounce off classification.
func intentPath(intent domain.Intent) []domain.Phase {
	switch intent {
	case domain.IntentDiscover:
		return []domain.Phase{
			domain.PhaseIdle,
			domain.PhaseClassifying,
			domain.PhaseDiscovering,
			domain.PhaseEvaluating,
			domain.PhaseComparing,
			domain.PhaseProposing,
			domain.PhaseAwaitingApproval,
			domain.PhaseApplying,
			domain.PhaseDone,
		}
	case domain.IntentEdit:
		return []domain.Phase{
			domain.PhaseIdle,
			domain.PhaseClassifying,
			domain.PhaseDiscovering,
			domain.PhaseComparing,
			domain.PhaseProposing,
			domain.PhaseAwaitingApproval,
			domain.PhaseApplying,
			domain.PhaseDone,
		}
	case domain.IntentView:
		return []domain.Phase{
			domain.PhaseIdle,
			domain.PhaseClassifying,
			domain.PhaseComparing,
			domain.PhaseProposing,
			domain.PhaseDone,
		}
	default:
		return []domain.Phase{domain.PhaseIdle, domain.PhaseClassifying}
	}
}

// failurePhase is the phase the run was in when its retry budget ran out.
// Reports carry it; the one report-less failure (no sources configured)
// happens in Discovering.
func failurePhase(state *domain.RunState) domain.Phase {
	if n := len(state.Errors); n > 0 {
		return state.Errors[n-1].Phase
	}
	return domain.PhaseDiscovering
}

// trimDoneTrail drops phases a completed run provably skipped.
func trimDoneTrail(visited []domain.Phase, state *domain.RunState) []domain.Phase {
	skip := make(map[domain.Phase]bool)
	if state.Proposal == "" {
		skip[domain.PhaseAwaitingApproval] = true
		skip[domain.PhaseApplying] = true
	} else if !state.Decision.Approved() {
		skip[domain.PhaseApplying] = true
	}
	if len(skip) == 0 {
		return visited
	}
	out := visited[:0]
	for _, p := range visited {
		if !skip[p] {
			out = append(out, p)
		}
	}
	return out
}

func prefixBefore(path []domain.Phase, phase domain.Phase) []domain.Phase {
	for i, p := range path {
		if p == phase {
			return path[:i]
		}
	}
	return nil
}

func prefixThrough(path []domain.Phase, phase domain.Phase) []domain.Phase {
	for i, p := range path {
		if p == phase {
			return path[:i+1]
		}
	}
	return nil
}
