// Package metrics turns engine lifecycle events into Prometheus
// collectors. Wire Hooks() into the concierge and mount Handler() on the
// HTTP server; nothing here knows about transports or adapters.
package metrics

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Metrics owns the collectors and the per-session bookkeeping needed to
// turn enter/leave event pairs into durations.
type Metrics struct {
	registry *prometheus.Registry

	phaseTransitions *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	runsFinished     *prometheus.CounterVec
	runDuration      prometheus.Histogram
	sessionsActive   prometheus.Gauge
	collabCalls      *prometheus.CounterVec
	collabFailures   *prometheus.CounterVec
	collabRetries    *prometheus.CounterVec
	entriesAppended  prometheus.Counter

	mu         sync.Mutex
	phaseStart map[string]time.Time // sessionID|phase -> enter time
	runStart   map[string]time.Time // sessionID -> segment start
}

// New registers the collectors on reg; a nil reg gets a fresh registry so
// parallel instances never collide on metric names.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablescout_phase_transitions_total",
			Help: "Workflow phase entries.",
		}, []string{"phase"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tablescout_phase_duration_seconds",
			Help:    "Time spent inside each workflow phase.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablescout_runs_finished_total",
			Help: "Runs that reached Done or ErrorReported, by intent.",
		}, []string{"intent", "outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tablescout_run_duration_seconds",
			Help:    "Active execution time between suspension points.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 11),
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tablescout_sessions_active",
			Help: "Runs currently executing (suspended runs do not count).",
		}),
		collabCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablescout_collaborator_calls_total",
			Help: "Outbound collaborator calls by workflow step.",
		}, []string{"step"}),
		collabFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablescout_collaborator_failures_total",
			Help: "Collaborator calls that returned an error, by step and class.",
		}, []string{"step", "class"}),
		collabRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablescout_collaborator_retries_total",
			Help: "Second attempts after a retryable collaborator failure.",
		}, []string{"step"}),
		entriesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tablescout_entries_appended_total",
			Help: "Restaurants appended to the curated list by approved applies.",
		}),
		phaseStart: make(map[string]time.Time),
		runStart:   make(map[string]time.Time),
	}
	reg.MustRegister(
		m.phaseTransitions,
		m.phaseDuration,
		m.runsFinished,
		m.runDuration,
		m.sessionsActive,
		m.collabCalls,
		m.collabFailures,
		m.collabRetries,
		m.entriesAppended,
	)
	return m
}

// Registry exposes the underlying registry for composing with other
// collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registered collectors in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors. Durations come
// from the event timestamps, so runs driven by a fake clock measure
// deterministically.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter:         m.onPhaseEnter,
		OnPhaseLeave:         m.onPhaseLeave,
		OnCollaboratorCall:   m.onCall,
		OnCollaboratorReturn: m.onReturn,
		OnRetry:              m.onRetry,
	}
}

func (m *Metrics) onPhaseEnter(_ context.Context, e *domain.PhaseEvent) {
	m.phaseTransitions.WithLabelValues(string(e.Phase)).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseStart[e.SessionID+"|"+string(e.Phase)] = e.Timestamp

	switch e.Phase {
	case domain.PhaseDone, domain.PhaseErrorReported:
		m.runsFinished.WithLabelValues(intentLabel(e.Intent), outcomeLabel(e.Phase)).Inc()
		m.endSegment(e.SessionID, e.Timestamp)
	case domain.PhaseAwaitingApproval:
		m.endSegment(e.SessionID, e.Timestamp)
	case domain.PhaseIdle:
	default:
		if _, running := m.runStart[e.SessionID]; !running {
			m.runStart[e.SessionID] = e.Timestamp
			m.sessionsActive.Inc()
		}
	}
}

func (m *Metrics) onPhaseLeave(_ context.Context, e *domain.PhaseEvent) {
	key := e.SessionID + "|" + string(e.Phase)

	m.mu.Lock()
	start, ok := m.phaseStart[key]
	if ok {
		delete(m.phaseStart, key)
	}
	m.mu.Unlock()

	if ok {
		m.phaseDuration.WithLabelValues(string(e.Phase)).Observe(e.Timestamp.Sub(start).Seconds())
	}
}

// endSegment closes the active-execution window for a session. Callers hold
// m.mu.
func (m *Metrics) endSegment(sessionID string, at time.Time) {
	start, ok := m.runStart[sessionID]
	if !ok {
		return
	}
	delete(m.runStart, sessionID)
	m.sessionsActive.Dec()
	m.runDuration.Observe(at.Sub(start).Seconds())
}

func (m *Metrics) onCall(_ context.Context, e *domain.CollaboratorEvent) {
	m.collabCalls.WithLabelValues(e.Step).Inc()
}

func (m *Metrics) onReturn(_ context.Context, e *domain.CollaboratorEvent) {
	if e.Err == "" {
		if strings.HasPrefix(e.Step, "append:") {
			m.entriesAppended.Inc()
		}
		return
	}
	m.collabFailures.WithLabelValues(e.Step, classLabel(e.Class)).Inc()
}

func (m *Metrics) onRetry(_ context.Context, e *domain.CollaboratorEvent) {
	m.collabRetries.WithLabelValues(e.Step).Inc()
}

func intentLabel(intent domain.Intent) string {
	if intent == "" {
		return "unknown"
	}
	return string(intent)
}

func outcomeLabel(phase domain.Phase) string {
	if phase == domain.PhaseErrorReported {
		return "error_reported"
	}
	return "done"
}

func classLabel(class domain.ErrorClass) string {
	if class == "" {
		return string(domain.ClassInternal)
	}
	return string(class)
}
