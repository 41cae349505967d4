package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

var base = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func phaseEvent(session string, phase domain.Phase, intent domain.Intent, at time.Time) *domain.PhaseEvent {
	return &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventPhaseEnter, SessionID: session},
		Phase:     phase,
		Intent:    intent,
	}
}

func collabEvent(step string, err string, class domain.ErrorClass) *domain.CollaboratorEvent {
	return &domain.CollaboratorEvent{
		EventBase: domain.EventBase{Timestamp: base, SessionID: "s1"},
		Step:      step,
		Attempt:   1,
		Err:       err,
		Class:     class,
	}
}

func TestPhaseTransitionsCounted(t *testing.T) {
	m := New(nil)
	h := m.Hooks()
	ctx := context.Background()

	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseDiscovering, domain.IntentDiscover, base))
	h.OnPhaseEnter(ctx, phaseEvent("s2", domain.PhaseDiscovering, domain.IntentDiscover, base))
	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseEvaluating, domain.IntentDiscover, base))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.phaseTransitions.WithLabelValues("discovering")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phaseTransitions.WithLabelValues("evaluating")))
}

func TestPhaseDurationUsesEventTimestamps(t *testing.T) {
	m := New(nil)
	h := m.Hooks()
	ctx := context.Background()

	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseDiscovering, domain.IntentDiscover, base))
	h.OnPhaseLeave(ctx, phaseEvent("s1", domain.PhaseDiscovering, domain.IntentDiscover, base.Add(3*time.Second)))

	require.Equal(t, 1, testutil.CollectAndCount(m.phaseDuration))
	assert.Empty(t, m.phaseStart, "enter bookkeeping must drain on leave")
}

func TestLeaveWithoutEnterIsIgnored(t *testing.T) {
	m := New(nil)
	m.Hooks().OnPhaseLeave(context.Background(), phaseEvent("ghost", domain.PhaseProposing, domain.IntentDiscover, base))
	assert.Equal(t, 0, testutil.CollectAndCount(m.phaseDuration))
}

func TestRunSegmentsAroundSuspension(t *testing.T) {
	m := New(nil)
	h := m.Hooks()
	ctx := context.Background()

	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseClassifying, domain.IntentUnknown, base))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))

	// Later phases of the same segment do not double-count.
	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseDiscovering, domain.IntentDiscover, base.Add(time.Second)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))

	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseAwaitingApproval, domain.IntentDiscover, base.Add(5*time.Second)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))

	// Resuming after the decision opens a fresh segment.
	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseApplying, domain.IntentDiscover, base.Add(time.Hour)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))

	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseDone, domain.IntentDiscover, base.Add(time.Hour+2*time.Second)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
	assert.Equal(t, 2, testutil.CollectAndCount(m.runDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsFinished.WithLabelValues("discover", "done")))
}

func TestErrorReportedCountsAsFinished(t *testing.T) {
	m := New(nil)
	h := m.Hooks()
	ctx := context.Background()

	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseDiscovering, domain.IntentDiscover, base))
	h.OnPhaseEnter(ctx, phaseEvent("s1", domain.PhaseErrorReported, domain.IntentDiscover, base.Add(time.Second)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsFinished.WithLabelValues("discover", "error_reported")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
}

func TestUnknownIntentLabel(t *testing.T) {
	m := New(nil)
	m.Hooks().OnPhaseEnter(context.Background(), phaseEvent("s1", domain.PhaseDone, domain.IntentUnknown, base))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsFinished.WithLabelValues("unknown", "done")))
}

func TestCollaboratorCallsAndFailures(t *testing.T) {
	m := New(nil)
	h := m.Hooks()
	ctx := context.Background()

	h.OnCollaboratorCall(ctx, collabEvent("search", "", ""))
	h.OnCollaboratorReturn(ctx, collabEvent("search", "", ""))
	h.OnCollaboratorCall(ctx, collabEvent("search", "", ""))
	h.OnCollaboratorReturn(ctx, collabEvent("search", "collaborator unavailable: dial tcp", domain.ClassCollaboratorUnavailable))
	h.OnRetry(ctx, collabEvent("search", "collaborator unavailable: dial tcp", domain.ClassCollaboratorUnavailable))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.collabCalls.WithLabelValues("search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collabFailures.WithLabelValues("search", "collaborator_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collabRetries.WithLabelValues("search")))
}

func TestEntriesAppendedCountsSuccessfulAppends(t *testing.T) {
	m := New(nil)
	h := m.Hooks()
	ctx := context.Background()

	h.OnCollaboratorReturn(ctx, collabEvent("append:maydan", "", ""))
	h.OnCollaboratorReturn(ctx, collabEvent("append:rooster & owl", "", ""))
	// Failed appends and non-append steps do not count.
	h.OnCollaboratorReturn(ctx, collabEvent("append:imperfecto", "sheet write failed", domain.ClassCollaboratorUnavailable))
	h.OnCollaboratorReturn(ctx, collabEvent("remove:maydan", "", ""))
	h.OnCollaboratorReturn(ctx, collabEvent("search", "", ""))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.entriesAppended))
}

func TestFailureWithoutClassFallsBackToInternal(t *testing.T) {
	m := New(nil)
	m.Hooks().OnCollaboratorReturn(context.Background(), collabEvent("rank", "boom", ""))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collabFailures.WithLabelValues("rank", "internal")))
}

func TestHandlerServesRegisteredCollectors(t *testing.T) {
	m := New(nil)
	m.Hooks().OnPhaseEnter(context.Background(), phaseEvent("s1", domain.PhaseDiscovering, domain.IntentDiscover, base))

	count, err := testutil.GatherAndCount(m.Registry(), "tablescout_phase_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotNil(t, m.Handler())
}
