package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter         EventType = "phase_enter"
	EventPhaseLeave         EventType = "phase_leave"
	EventCollaboratorCall   EventType = "collaborator_call"
	EventCollaboratorReturn EventType = "collaborator_return"
	EventRetry              EventType = "retry"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// PhaseEvent represents entry into or exit from a workflow phase.
type PhaseEvent struct {
	EventBase
	Phase  Phase  `json:"phase"`
	Intent Intent `json:"intent,omitempty"`
}

// CollaboratorEvent represents one outbound collaborator call.
type CollaboratorEvent struct {
	EventBase
	Step    string     `json:"step"`
	Source  SourceID   `json:"source,omitempty"`
	Attempt int        `json:"attempt"`
	Err     string     `json:"err,omitempty"`
	Class   ErrorClass `json:"class,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// optional; the engine checks each for nil before invoking.
type LifecycleHooks struct {
	OnPhaseEnter         func(context.Context, *PhaseEvent)
	OnPhaseLeave         func(context.Context, *PhaseEvent)
	OnCollaboratorCall   func(context.Context, *CollaboratorEvent)
	OnCollaboratorReturn func(context.Context, *CollaboratorEvent)
	OnRetry              func(context.Context, *CollaboratorEvent)
}

// JoinHooks fans every event out to each hook set in order, so loggers and
// metric collectors can observe the same run side by side.
func JoinHooks(sets ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range sets {
				if h.OnPhaseEnter != nil {
					h.OnPhaseEnter(ctx, e)
				}
			}
		},
		OnPhaseLeave: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range sets {
				if h.OnPhaseLeave != nil {
					h.OnPhaseLeave(ctx, e)
				}
			}
		},
		OnCollaboratorCall: func(ctx context.Context, e *CollaboratorEvent) {
			for _, h := range sets {
				if h.OnCollaboratorCall != nil {
					h.OnCollaboratorCall(ctx, e)
				}
			}
		},
		OnCollaboratorReturn: func(ctx context.Context, e *CollaboratorEvent) {
			for _, h := range sets {
				if h.OnCollaboratorReturn != nil {
					h.OnCollaboratorReturn(ctx, e)
				}
			}
		},
		OnRetry: func(ctx context.Context, e *CollaboratorEvent) {
			for _, h := range sets {
				if h.OnRetry != nil {
					h.OnRetry(ctx, e)
				}
			}
		},
	}
}
