package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoPendingApproval is returned when a decision is submitted for a run
// that is not suspended. This is a caller contract violation: it is reported
// immediately and never retried.
var ErrNoPendingApproval = errors.New("no pending approval")

// ErrCollaboratorUnavailable wraps network, auth, and timeout failures from
// any external call.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ErrMalformedResponse wraps collaborator output the engine cannot parse
// into its data model.
var ErrMalformedResponse = errors.New("malformed collaborator response")

// ErrApprovalParse is returned when an approval response stays unparseable
// after the single clarification round.
var ErrApprovalParse = errors.New("approval response unparseable")

// ErrIndexOutOfRange is returned when a partial approval or detail request
// references a proposal item that does not exist. The engine re-prompts; it
// never treats this as a silent no-op.
var ErrIndexOutOfRange = errors.New("proposal index out of range")

// ErrSourceSilent signals that a ranking call produced no score for a
// source. Absence of a score is not an error condition and never becomes a
// zero: the source stays out of the score map.
var ErrSourceSilent = errors.New("source silent")

// ErrorClass buckets an error for reports and metrics.
type ErrorClass string

const (
	ClassCollaboratorUnavailable ErrorClass = "collaborator_unavailable"
	ClassMalformedResponse       ErrorClass = "malformed_response"
	ClassApprovalParse           ErrorClass = "approval_parse"
	ClassNoPendingApproval       ErrorClass = "no_pending_approval"
	ClassIndexOutOfRange         ErrorClass = "index_out_of_range"
	ClassInternal                ErrorClass = "internal"
)

// Classify maps an error chain onto the taxonomy. Anything unrecognized is
// internal: collaborator adapters are expected to wrap their failures in one
// of the sentinel values above.
func Classify(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrCollaboratorUnavailable):
		return ClassCollaboratorUnavailable
	case errors.Is(err, ErrMalformedResponse):
		return ClassMalformedResponse
	case errors.Is(err, ErrApprovalParse):
		return ClassApprovalParse
	case errors.Is(err, ErrNoPendingApproval):
		return ClassNoPendingApproval
	case errors.Is(err, ErrIndexOutOfRange):
		return ClassIndexOutOfRange
	default:
		return ClassInternal
	}
}
