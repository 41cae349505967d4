package domain

// Outcome is what the caller receives back from a turn: the rendered
// message, where the run ended up, and whether a decision is now expected.
// A run never ends ambiguously: terminal outcomes carry either a persisted
// result or an explicit error report, never neither.
type Outcome struct {
	SessionID string `json:"session_id"`
	Phase     Phase  `json:"phase"`
	Message   string `json:"message"`

	// AwaitingDecision is true when the run suspended and the next input
	// must be a decision (approval grammar or retry/terminate).
	AwaitingDecision bool `json:"awaiting_decision"`

	// Errors carries the structured error list alongside the natural
	// language message for terminal error outcomes.
	Errors []ErrorReport `json:"errors,omitempty"`
}
