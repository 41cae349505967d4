// Package http serves the concierge over a REST-ish API: utterances and
// decisions drive runs, sessions are inspectable and deletable, and phase
// transitions stream to subscribers as server-sent events. The OpenAPI
// document is embedded and validated at construction, so a drifting
// handler table fails fast instead of shipping a stale contract.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/runner"
)

//go:embed openapi.yaml
var openapiDoc []byte

// Concierge is the engine surface the server drives. The root tablescout
// package satisfies it.
type Concierge interface {
	SubmitUtterance(ctx context.Context, sessionID, text string) (*domain.Outcome, error)
	SubmitDecision(ctx context.Context, sessionID, response string) (*domain.Outcome, error)
	Inspect(ctx context.Context, sessionID string) (*domain.RunState, error)
	Sessions(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, sessionID string) error
	Entries(ctx context.Context) ([]domain.ListEntry, error)
}

// Server exposes a Concierge over HTTP.
type Server struct {
	concierge Concierge
	streams   *streamManager
	metrics   http.Handler
	logger    *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithMetricsHandler mounts a custom /metrics handler, typically the one
// from a dedicated Prometheus registry.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer validates the embedded OpenAPI document and builds the server.
func NewServer(c Concierge, opts ...Option) (*Server, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiDoc)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	s := &Server{
		concierge: c,
		streams:   newStreamManager(),
		metrics:   promhttp.Handler(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Hooks returns lifecycle hooks that feed the SSE event streams. Wire them
// into the concierge the server fronts.
func (s *Server) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseEvent) {
			payload, err := json.Marshal(e)
			if err != nil {
				return
			}
			s.streams.broadcast(e.SessionID, sseEvent{Name: "phase", Data: string(payload)})
		},
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Get("/openapi.yaml", s.openapi)
	r.Get("/list", s.getList)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.inspectSession)
			r.Delete("/", s.forgetSession)
			r.Post("/utterances", s.submitUtterance)
			r.Post("/decision", s.submitDecision)
			r.Get("/events", s.streamEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type utteranceRequest struct {
	Text string `json:"text"`
}

type decisionRequest struct {
	Response string `json:"response"`
}

type sessionList struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (s *Server) submitUtterance(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body utteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeBadRequest(w, "invalid request body", err)
		return
	}
	text, err := runner.SanitizeInput(body.Text)
	if err != nil {
		s.writeBadRequest(w, "utterance rejected", err)
		return
	}

	before := s.snapshot(r.Context(), sessionID)
	outcome, err := s.concierge.SubmitUtterance(r.Context(), sessionID, text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastDiff(r.Context(), before, sessionID)
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) submitDecision(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeBadRequest(w, "invalid request body", err)
		return
	}
	response, err := runner.SanitizeInput(body.Response)
	if err != nil {
		s.writeBadRequest(w, "decision rejected", err)
		return
	}

	before := s.snapshot(r.Context(), sessionID)
	outcome, err := s.concierge.SubmitDecision(r.Context(), sessionID, response)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastDiff(r.Context(), before, sessionID)
	s.writeJSON(w, http.StatusOK, outcome)
}

// snapshot reads the session's run state for diffing. A session that does
// not exist yet diffs from nil, which renders the full initial state.
func (s *Server) snapshot(ctx context.Context, sessionID string) *domain.RunState {
	state, err := s.concierge.Inspect(ctx, sessionID)
	if err != nil {
		return nil
	}
	return state
}

// broadcastDiff pushes this turn's state delta to the session's stream
// subscribers, alongside the phase events the lifecycle hooks emit. A turn
// that left no persisted state (an unrecognized utterance, say) broadcasts
// nothing.
func (s *Server) broadcastDiff(ctx context.Context, before *domain.RunState, sessionID string) {
	after, err := s.concierge.Inspect(ctx, sessionID)
	if err != nil {
		return
	}
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		return
	}
	s.streams.broadcast(sessionID, sseEvent{Name: "diff", Data: string(payload)})
}

func (s *Server) inspectSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.concierge.Inspect(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) forgetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.concierge.Forget(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		s.writeBadRequest(w, "invalid limit parameter", err)
		return
	}

	ids, err := s.concierge.Sessions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if limit != nil && *limit >= 0 && *limit < len(ids) {
		ids = ids[:*limit]
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, sessionList{Sessions: ids, Count: len(ids)})
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.concierge.Entries(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.ListEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) openapi(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiDoc)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string, err error) {
	s.logger.Warn(msg, "error", err)
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Detail: fmt.Sprintf("%s: %v", msg, err)})
}

// writeError maps engine errors onto statuses: a missing session is 404, a
// decision without a pending approval is 409, everything else is 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, label := http.StatusInternalServerError, string(domain.Classify(err))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status, label = http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrNoPendingApproval):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: label, Detail: err.Error()})
}
