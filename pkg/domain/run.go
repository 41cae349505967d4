package domain

import (
	"fmt"
	"sync/atomic"
	"time"
)

// MaxAttempts bounds collaborator calls per step: one initial attempt plus
// exactly one retry. Exceeding the bound is terminal for the run, never for
// the process.
const MaxAttempts = 2

// RunState is the unit of work for one workflow invocation. It is created at
// the start of a user turn, mutated by every step, checkpointed whenever the
// run suspends, and retained at terminal states until deleted. All fields
// serialize: the suspend point must survive a process restart.
type RunState struct {
	// SessionID is the monotonic run/session identifier the caller resumes by.
	SessionID string `json:"session_id"`

	// Utterance is the text that triggered the run.
	Utterance string `json:"utterance"`

	Intent Intent `json:"intent,omitempty"`
	Phase  Phase  `json:"phase"`

	// Discovered holds the evaluated candidate set, merged across sources.
	Discovered []Candidate `json:"discovered,omitempty"`

	// Existing is the list snapshot fetched once per run, before suspension.
	Existing []ListEntry `json:"existing,omitempty"`

	// Additions is Discovered minus Existing by normalized name, computed
	// exactly once before the suspend point and never recomputed after
	// resume.
	Additions []Candidate `json:"additions,omitempty"`

	// Removals is empty unless an explicit edit command populated it.
	Removals []ListEntry `json:"removals,omitempty"`

	// Proposal is the rendered text handed to the caller at the suspend
	// point. It is immutable for the lifetime of the suspension, so partial
	// approval indices stay stable across detail round-trips.
	Proposal string `json:"proposal,omitempty"`

	// Decision is the pending decision recorded at resume time.
	Decision Decision `json:"decision"`

	// Clarifications counts unparseable responses at the current suspend
	// point. The second one resolves to rejection (fail-closed).
	Clarifications int `json:"clarifications,omitempty"`

	// Errors is the ordered structured error list.
	Errors []ErrorReport `json:"errors,omitempty"`

	// Attempts tracks collaborator calls per step key, bounded by MaxAttempts.
	Attempts map[string]int `json:"attempts,omitempty"`

	// Result is the terminal outcome message, set when the run completes.
	Result string `json:"result,omitempty"`

	// Sealed carries the encrypted snapshot written by the sealing
	// persistence middleware. When set, every content field above is
	// cleared: only identity, phase, and timestamps remain in clear.
	Sealed []byte `json:"sealed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var runCounter atomic.Uint64

// NewSessionID mints a monotonic session identifier. Timestamp-prefixed so
// identifiers sort by creation time across restarts; the counter suffix
// keeps them unique within a process.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("run-%s-%06d", now.UTC().Format("20060102-150405"), runCounter.Add(1))
}

// NewRunState creates a clean run for a session and utterance.
func NewRunState(sessionID, utterance string, now time.Time) *RunState {
	return &RunState{
		SessionID: sessionID,
		Utterance: utterance,
		Phase:     PhaseIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Attempt increments and returns the attempt count for a step key.
func (s *RunState) Attempt(step string) int {
	if s.Attempts == nil {
		s.Attempts = make(map[string]int)
	}
	s.Attempts[step]++
	return s.Attempts[step]
}

// RecordError appends a structured report to the ordered error list.
func (s *RunState) RecordError(report ErrorReport) {
	s.Errors = append(s.Errors, report)
}

// ResetForRetry clears per-run accumulations so an ErrorReported run can be
// retried from the top of its flow. The session identifier, utterance, and
// intent survive; the retry budget is fresh.
func (s *RunState) ResetForRetry(now time.Time) {
	s.Discovered = nil
	s.Existing = nil
	s.Additions = nil
	s.Removals = nil
	s.Proposal = ""
	s.Decision = Decision{}
	s.Clarifications = 0
	s.Errors = nil
	s.Attempts = nil
	s.Result = ""
	s.UpdatedAt = now
}

// Clone returns a deep copy of the run state. Stores use this to keep saved
// snapshots isolated from later mutations.
func (s *RunState) Clone() *RunState {
	out := *s
	if s.Discovered != nil {
		out.Discovered = make([]Candidate, len(s.Discovered))
		for i := range s.Discovered {
			out.Discovered[i] = s.Discovered[i].Clone()
		}
	}
	if s.Existing != nil {
		out.Existing = make([]ListEntry, len(s.Existing))
		for i := range s.Existing {
			out.Existing[i] = s.Existing[i]
			out.Existing[i].Candidate = s.Existing[i].Candidate.Clone()
		}
	}
	if s.Additions != nil {
		out.Additions = make([]Candidate, len(s.Additions))
		for i := range s.Additions {
			out.Additions[i] = s.Additions[i].Clone()
		}
	}
	if s.Removals != nil {
		out.Removals = make([]ListEntry, len(s.Removals))
		for i := range s.Removals {
			out.Removals[i] = s.Removals[i]
			out.Removals[i].Candidate = s.Removals[i].Candidate.Clone()
		}
	}
	if s.Decision.Indices != nil {
		out.Decision.Indices = append([]int(nil), s.Decision.Indices...)
	}
	if s.Errors != nil {
		out.Errors = append([]ErrorReport(nil), s.Errors...)
	}
	if s.Sealed != nil {
		out.Sealed = append([]byte(nil), s.Sealed...)
	}
	if s.Attempts != nil {
		out.Attempts = make(map[string]int, len(s.Attempts))
		for k, v := range s.Attempts {
			out.Attempts[k] = v
		}
	}
	return &out
}
