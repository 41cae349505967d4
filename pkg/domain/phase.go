package domain

// Phase identifies where a run sits in the workflow graph.
type Phase string

const (
	PhaseIdle             Phase = "idle"              // No run in flight
	PhaseClassifying      Phase = "classifying"       // Resolving the utterance intent
	PhaseDiscovering      Phase = "discovering"       // Querying sources
	PhaseEvaluating       Phase = "evaluating"        // Scoring and aggregating candidates
	PhaseComparing        Phase = "comparing"         // Dedup + set difference against the list
	PhaseProposing        Phase = "proposing"         // Rendering the proposal text
	PhaseAwaitingApproval Phase = "awaiting_approval" // Suspended on a human decision
	PhaseApplying         Phase = "applying"          // Persisting approved entries
	PhaseDone             Phase = "done"              // Sink state
	PhaseErrorReported    Phase = "error_reported"    // Suspended on a retry/terminate decision
)

// Terminal reports whether the run has reached its sink state.
// ErrorReported is terminal for the workflow steps but still accepts
// exactly one decision (retry or terminate), so it is not a sink.
func (p Phase) Terminal() bool {
	return p == PhaseDone
}

// Suspended reports whether the run is parked waiting for a human decision.
// These are the only phases that survive a process restart.
func (p Phase) Suspended() bool {
	return p == PhaseAwaitingApproval || p == PhaseErrorReported
}

func (p Phase) String() string {
	return string(p)
}

// Phases lists the workflow phases in graph order. Used by introspection
// surfaces (mermaid rendering, validation); the engine itself transitions
// explicitly.
func Phases() []Phase {
	return []Phase{
		PhaseIdle,
		PhaseClassifying,
		PhaseDiscovering,
		PhaseEvaluating,
		PhaseComparing,
		PhaseProposing,
		PhaseAwaitingApproval,
		PhaseApplying,
		PhaseDone,
		PhaseErrorReported,
	}
}
