package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinHooksFansOutInOrder(t *testing.T) {
	var order []string
	first := LifecycleHooks{
		OnPhaseEnter: func(context.Context, *PhaseEvent) { order = append(order, "first") },
	}
	second := LifecycleHooks{
		OnPhaseEnter: func(context.Context, *PhaseEvent) { order = append(order, "second") },
		OnRetry:      func(context.Context, *CollaboratorEvent) { order = append(order, "retry") },
	}

	joined := JoinHooks(first, second)
	joined.OnPhaseEnter(context.Background(), &PhaseEvent{Phase: PhaseDiscovering})
	joined.OnRetry(context.Background(), &CollaboratorEvent{Step: "search"})

	assert.Equal(t, []string{"first", "second", "retry"}, order)
}

func TestJoinHooksSkipsNilCallbacks(t *testing.T) {
	called := false
	joined := JoinHooks(LifecycleHooks{}, LifecycleHooks{
		OnCollaboratorReturn: func(context.Context, *CollaboratorEvent) { called = true },
	})

	// Every callback on the joined set is safe to invoke even when some
	// members left it nil.
	joined.OnPhaseLeave(context.Background(), &PhaseEvent{Phase: PhaseDone})
	joined.OnCollaboratorReturn(context.Background(), &CollaboratorEvent{Step: "rank"})
	assert.True(t, called)
}
