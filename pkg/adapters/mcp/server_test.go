package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

type stubConcierge struct {
	utterance func(ctx context.Context, sessionID, text string) (*domain.Outcome, error)
	decision  func(ctx context.Context, sessionID, response string) (*domain.Outcome, error)
	inspect   func(ctx context.Context, sessionID string) (*domain.RunState, error)
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
		return &domain.RunState{SessionID: sessionID}, nil
	}
	return s.inspect(ctx, sessionID)
}

func (s *stubConcierge) Entries(ctx context.Context) ([]domain.ListEntry, error) {
	if s.entries == nil {
		return nil, nil
	}
	return s.entries(ctx)
}

func TestHandleUtteranceReturnsOutcome(t *testing.T) {
	var gotSession, gotText string
	srv := NewServer(&stubConcierge{
		utterance: func(_ context.Context, sessionID, text string) (*domain.Outcome, error) {
			gotSession, gotText = sessionID, text
			return &domain.Outcome{
				SessionID:        sessionID,
				Phase:            domain.PhaseAwaitingApproval,
				Message:          "I found 3 new restaurants.",
				AwaitingDecision: true,
			}, nil
		},
	})

	out, err := srv.handleUtterance(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "date-night",
		"text":       "find new restaurants",
	})

	require.NoError(t, err)
	assert.Equal(t, "date-night", gotSession)
	assert.Equal(t, "find new restaurants", gotText)
	assert.True(t, out.AwaitingDecision)
}

func TestHandleUtteranceRequiresSessionID(t *testing.T) {
	srv := NewServer(&stubConcierge{})

	_, err := srv.handleUtterance(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"text": "find new restaurants",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_id")
}

func TestHandleUtteranceRejectsOversizedInput(t *testing.T) {
	srv := NewServer(&stubConcierge{})

	_, err := srv.handleUtterance(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "s1",
		"text":       strings.Repeat("a", 5000),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "input rejected")
}

func TestHandleDecisionPropagatesEngineError(t *testing.T) {
	srv := NewServer(&stubConcierge{
		decision: func(context.Context, string, string) (*domain.Outcome, error) {
			return nil, domain.ErrNoPendingApproval
		},
	})

	_, err := srv.handleDecision(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "s1",
		"response":   "yes",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoPendingApproval)
}

func TestHandleInspect(t *testing.T) {
	srv := NewServer(&stubConcierge{
		inspect: func(_ context.Context, sessionID string) (*domain.RunState, error) {
			return &domain.RunState{
				SessionID: sessionID,
				Phase:     domain.PhaseAwaitingApproval,
				Proposal:  "1. Maydan",
			}, nil
		},
	})

	state, err := srv.handleInspect(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "date-night",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingApproval, state.Phase)
	assert.Equal(t, "1. Maydan", state.Proposal)
}

func TestHandleViewListWrapsEntries(t *testing.T) {
	srv := NewServer(&stubConcierge{
		entries: func(context.Context) ([]domain.ListEntry, error) {
			return []domain.ListEntry{
				{
					Candidate: domain.Candidate{Name: "Maydan"},
					AddedAt:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	})

	resp, err := srv.handleViewList(context.Background(), mcp.CallToolRequest{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Maydan", resp.Entries[0].Name)
}

func TestHandleViewListEmptyIsNotNil(t *testing.T) {
	srv := NewServer(&stubConcierge{})

	resp, err := srv.handleViewList(context.Background(), mcp.CallToolRequest{}, nil)

	require.NoError(t, err)
	assert.NotNil(t, resp.Entries)
	assert.Zero(t, resp.Count)
}
