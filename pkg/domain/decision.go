package domain

// DecisionKind is the outcome of parsing an approval response.
type DecisionKind string

const (
	// DecisionNone means no decision has been recorded yet.
	DecisionNone DecisionKind = ""

	// DecisionFull applies the entire addition set.
	DecisionFull DecisionKind = "full"

	// DecisionPartial applies only the referenced proposal indices.
	DecisionPartial DecisionKind = "partial"

	// DecisionReject cancels the run; nothing is persisted.
	DecisionReject DecisionKind = "reject"

	// DecisionDetail asks for detail on one proposal item. It does not
	// advance the state machine.
	DecisionDetail DecisionKind = "detail"
)

// Decision is a parsed approval response. Indices are 1-based positions into
// the proposal, in the order the user gave them, deduplicated.
type Decision struct {
	Kind    DecisionKind `json:"kind"`
	Indices []int        `json:"indices,omitempty"` // partial approval
	Index   int          `json:"index,omitempty"`   // detail request
}

// Approved reports whether the decision authorizes persistence.
func (d Decision) Approved() bool {
	return d.Kind == DecisionFull || d.Kind == DecisionPartial
}
