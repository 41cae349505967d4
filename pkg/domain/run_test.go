package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunStateStartsIdle(t *testing.T) {
	now := time.Now()
	st := NewRunState("run-1", "find new restaurants", now)

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "run-1", st.SessionID)
	assert.Equal(t, "find new restaurants", st.Utterance)
	assert.False(t, st.Phase.Terminal())
	assert.False(t, st.Phase.Suspended())
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	now := time.Now()
	a := NewSessionID(now)
	b := NewSessionID(now)
	assert.NotEqual(t, a, b)
}

func TestAttemptCountsPerStep(t *testing.T) {
	st := NewRunState("run-1", "find", time.Now())

	assert.Equal(t, 1, st.Attempt("search:eater-dc"))
	assert.Equal(t, 2, st.Attempt("search:eater-dc"))
	assert.Equal(t, 1, st.Attempt("search:michelin-guide"))
}

func TestRecordErrorKeepsOrder(t *testing.T) {
	st := NewRunState("run-1", "find", time.Now())
	now := time.Now()

	st.RecordError(NewErrorReport(now, PhaseDiscovering, "eater-dc", "search", ErrCollaboratorUnavailable))
	st.RecordError(NewErrorReport(now, PhaseEvaluating, "", "rank", ErrMalformedResponse))

	require.Len(t, st.Errors, 2)
	assert.Equal(t, ClassCollaboratorUnavailable, st.Errors[0].Class)
	assert.Equal(t, ClassMalformedResponse, st.Errors[1].Class)
}

func TestResetForRetryPreservesIdentity(t *testing.T) {
	st := NewRunState("run-1", "find new spots", time.Now())
	st.Intent = IntentDiscover
	st.Discovered = []Candidate{{Name: "Maydan"}}
	st.Proposal = "proposal text"
	st.Clarifications = 1
	st.Attempt("search:eater-dc")
	st.RecordError(NewErrorReport(time.Now(), PhaseDiscovering, "eater-dc", "search", ErrCollaboratorUnavailable))

	st.ResetForRetry(time.Now())

	assert.Equal(t, "run-1", st.SessionID)
	assert.Equal(t, "find new spots", st.Utterance)
	assert.Equal(t, IntentDiscover, st.Intent)
	assert.Empty(t, st.Discovered)
	assert.Empty(t, st.Proposal)
	assert.Empty(t, st.Errors)
	assert.Empty(t, st.Attempts)
	assert.Zero(t, st.Clarifications)
}

func TestCloneIsolation(t *testing.T) {
	st := NewRunState("run-1", "find", time.Now())
	c := Candidate{Name: "Maydan"}
	c.SetScore("eater-dc", 4.0)
	st.Additions = []Candidate{c}
	st.Decision = Decision{Kind: DecisionPartial, Indices: []int{1, 3}}

	clone := st.Clone()
	clone.Additions[0].SetScore("eater-dc", 1.0)
	clone.Decision.Indices[0] = 9

	assert.Equal(t, 4.0, st.Additions[0].Scores["eater-dc"])
	assert.Equal(t, 1, st.Decision.Indices[0])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassCollaboratorUnavailable, Classify(ErrCollaboratorUnavailable))
	assert.Equal(t, ClassMalformedResponse, Classify(ErrMalformedResponse))
	assert.Equal(t, ClassApprovalParse, Classify(ErrApprovalParse))
	assert.Equal(t, ClassNoPendingApproval, Classify(ErrNoPendingApproval))
	assert.Equal(t, ClassIndexOutOfRange, Classify(ErrIndexOutOfRange))
	assert.Equal(t, ClassInternal, Classify(assert.AnError))
}
