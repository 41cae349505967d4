package domain

// RunDiff represents the changes between two snapshots of a run. It is
// designed to be serialized to JSON for partial updates pushed to stream
// subscribers.
type RunDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Phase  *Phase  `json:"phase,omitempty"`
	Intent *Intent `json:"intent,omitempty"`

	// Proposal is sent only when it changed (set or cleared).
	Proposal *string `json:"proposal,omitempty"`

	// ErrorsAppended contains only new reports, in order. The error list is
	// append-only within a run, so subscribers can merge by concatenation.
	ErrorsAppended []ErrorReport `json:"errors_appended,omitempty"`

	Result *string `json:"result,omitempty"`
}

// Diff calculates the difference between two run snapshots. If old is nil,
// the diff represents the entire new state (initial load). A nil return
// means nothing changed.
func Diff(old, new *RunState) *RunDiff {
	if new == nil {
		return nil
	}

	diff := &RunDiff{SessionID: new.SessionID}
	changed := false

	if old == nil || old.Phase != new.Phase {
		p := new.Phase
		diff.Phase = &p
		changed = true
	}
	if (old == nil || old.Intent != new.Intent) && new.Intent != IntentUnknown {
		i := new.Intent
		diff.Intent = &i
		changed = true
	}
	if old == nil || old.Proposal != new.Proposal {
		p := new.Proposal
		diff.Proposal = &p
		changed = true
	}
	if (old == nil || old.Result != new.Result) && new.Result != "" {
		r := new.Result
		diff.Result = &r
		changed = true
	}

	prior := 0
	if old != nil {
		prior = len(old.Errors)
	}
	if len(new.Errors) > prior {
		diff.ErrorsAppended = append([]ErrorReport(nil), new.Errors[prior:]...)
		changed = true
	}

	if !changed {
		return nil
	}
	return diff
}
