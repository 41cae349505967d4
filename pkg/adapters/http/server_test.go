package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

// stubConcierge lets each test pin down only the calls it cares about.
type stubConcierge struct {
	utterance func(ctx context.Context, sessionID, text string) (*domain.Outcome, error)
	decision  func(ctx context.Context, sessionID, response string) (*domain.Outcome, error)
	inspect   func(ctx context.Context, sessionID string) (*domain.RunState, error)
	sessions  func(ctx context.Context) ([]string, error)
	forget    func(ctx context.Context, sessionID string) error
	entries   func(ctx context.Context) ([]domain.ListEntry, error)
}

func (s *stubConcierge) SubmitUtterance(ctx context.Context, sessionID, text string) (*domain.Outcome, error) {
	if s.utterance == nil {
		return &domain.Outcome{SessionID: sessionID, Phase: domain.PhaseDone, Message: "ok"}, nil
	}
	return s.utterance(ctx, sessionID, text)
}

func (s *stubConcierge) SubmitDecision(ctx context.Context, sessionID, response string) (*domain.Outcome, error) {
	if s.decision == nil {
		return &domain.Outcome{SessionID: sessionID, Phase: domain.PhaseDone, Message: "ok"}, nil
	}
	return s.decision(ctx, sessionID, response)
}

func (s *stubConcierge) Inspect(ctx context.Context, sessionID string) (*domain.RunState, error) {
	if s.inspect == nil {
		return &domain.RunState{SessionID: sessionID, Phase: domain.PhaseDone}, nil
	}
	return s.inspect(ctx, sessionID)
}

func (s *stubConcierge) Sessions(ctx context.Context) ([]string, error) {
	if s.sessions == nil {
		return nil, nil
	}
	return s.sessions(ctx)
}

func (s *stubConcierge) Forget(ctx context.Context, sessionID string) error {
	if s.forget == nil {
		return nil
	}
	return s.forget(ctx, sessionID)
}

func (s *stubConcierge) Entries(ctx context.Context) ([]domain.ListEntry, error) {
	if s.entries == nil {
		return nil, nil
	}
	return s.entries(ctx)
}

func newTestServer(t *testing.T, stub *stubConcierge, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	srv, err := NewServer(stub, opts...)
	require.NoError(t, err)
	return srv, srv.Handler()
}

func do(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewServerValidatesEmbeddedDocument(t *testing.T) {
	_, err := NewServer(&stubConcierge{})
	require.NoError(t, err)
}

func TestSubmitUtteranceReturnsOutcome(t *testing.T) {
	var gotSession, gotText string
	stub := &stubConcierge{
		utterance: func(_ context.Context, sessionID, text string) (*domain.Outcome, error) {
			gotSession, gotText = sessionID, text
			return &domain.Outcome{
				SessionID:        sessionID,
				Phase:            domain.PhaseAwaitingApproval,
				Message:          "I found 2 new restaurants.",
				AwaitingDecision: true,
			}, nil
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodPost, "/sessions/date-night/utterances", `{"text":"find new restaurants"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "date-night", gotSession)
	assert.Equal(t, "find new restaurants", gotText)

	var outcome domain.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.AwaitingDecision)
	assert.Equal(t, domain.PhaseAwaitingApproval, outcome.Phase)
}

func TestSubmitUtteranceRejectsBadJSON(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	w := do(handler, http.MethodPost, "/sessions/s1/utterances", `{"text": `)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decodeError(t, w).Error)
}

func TestSubmitUtteranceRejectsOversizedInput(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	big := strings.Repeat("a", 5000)
	w := do(handler, http.MethodPost, "/sessions/s1/utterances", `{"text":"`+big+`"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Detail, "maximum allowed size")
}

func TestSubmitDecisionConflictWithoutPendingApproval(t *testing.T) {
	stub := &stubConcierge{
		decision: func(context.Context, string, string) (*domain.Outcome, error) {
			return nil, domain.ErrNoPendingApproval
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodPost, "/sessions/s1/decision", `{"response":"yes"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "no_pending_approval", decodeError(t, w).Error)
}

func TestInspectUnknownSessionIs404(t *testing.T) {
	stub := &stubConcierge{
		inspect: func(context.Context, string) (*domain.RunState, error) {
			return nil, domain.ErrSessionNotFound
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodGet, "/sessions/ghost", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", decodeError(t, w).Error)
}

func TestInspectReturnsRunState(t *testing.T) {
	stub := &stubConcierge{
		inspect: func(_ context.Context, sessionID string) (*domain.RunState, error) {
			return &domain.RunState{
				SessionID: sessionID,
				Phase:     domain.PhaseAwaitingApproval,
				Proposal:  "1. Maydan",
			}, nil
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodGet, "/sessions/date-night", "")

	require.Equal(t, http.StatusOK, w.Code)
	var state domain.RunState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "date-night", state.SessionID)
	assert.Equal(t, "1. Maydan", state.Proposal)
}

func TestForgetSession(t *testing.T) {
	forgotten := ""
	stub := &stubConcierge{
		forget: func(_ context.Context, sessionID string) error {
			forgotten = sessionID
			return nil
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodDelete, "/sessions/old-run", "")

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "old-run", forgotten)
}

func TestListSessionsHonorsLimit(t *testing.T) {
	stub := &stubConcierge{
		sessions: func(context.Context) ([]string, error) {
			return []string{"a", "b", "c"}, nil
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodGet, "/sessions?limit=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got sessionList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"a", "b"}, got.Sessions)
	assert.Equal(t, 2, got.Count)
}

func TestListSessionsRejectsBadLimit(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	w := do(handler, http.MethodGet, "/sessions?limit=soon", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Detail, "limit")
}

func TestListSessionsEmptyIsArrayNotNull(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	w := do(handler, http.MethodGet, "/sessions", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":[]`)
}

func TestGetListReturnsEntries(t *testing.T) {
	stub := &stubConcierge{
		entries: func(context.Context) ([]domain.ListEntry, error) {
			return []domain.ListEntry{
				{
					Candidate: domain.Candidate{Name: "Maydan", Cuisine: "Middle Eastern"},
					AddedAt:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}
	_, handler := newTestServer(t, stub)

	w := do(handler, http.MethodGet, "/list", "")

	require.Equal(t, http.StatusOK, w.Code)
	var entries []domain.ListEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Maydan", entries[0].Name)
}

func TestHealthz(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	w := do(handler, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestOpenAPIDocumentServed(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	w := do(handler, http.MethodGet, "/openapi.yaml", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "TableScout API")
}

func TestMetricsHandlerIsMountable(t *testing.T) {
	custom := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("tablescout_up 1"))
	})
	_, handler := newTestServer(t, &stubConcierge{}, WithMetricsHandler(custom))

	w := do(handler, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tablescout_up 1")
}

func TestCORSPreflight(t *testing.T) {
	_, handler := newTestServer(t, &stubConcierge{})

	w := do(handler, http.MethodOptions, "/sessions/s1/utterances", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
