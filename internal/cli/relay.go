package cli

import (
	"context"
	"sync"

	"github.com/tablescout/tablescout/pkg/domain"
)

// HookRelay forwards lifecycle events to a hook set bound later. The HTTP
// server's SSE hooks need the concierge to exist first, while the concierge
// takes its hooks at construction; the relay breaks that cycle. Events
// arriving before Bind are dropped.
type HookRelay struct {
	mu    sync.RWMutex
	hooks domain.LifecycleHooks
}

// Bind sets the forwarding target.
func (r *HookRelay) Bind(hooks domain.LifecycleHooks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = hooks
}

func (r *HookRelay) current() domain.LifecycleHooks {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hooks
}

// Hooks returns the relaying hook set to hand the concierge.
func (r *HookRelay) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			if h := r.current().OnPhaseEnter; h != nil {
				h(ctx, e)
			}
		},
		OnPhaseLeave: func(ctx context.Context, e *domain.PhaseEvent) {
			if h := r.current().OnPhaseLeave; h != nil {
				h(ctx, e)
			}
		},
		OnCollaboratorCall: func(ctx context.Context, e *domain.CollaboratorEvent) {
			if h := r.current().OnCollaboratorCall; h != nil {
				h(ctx, e)
			}
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			if h := r.current().OnCollaboratorReturn; h != nil {
				h(ctx, e)
			}
		},
		OnRetry: func(ctx context.Context, e *domain.CollaboratorEvent) {
			if h := r.current().OnRetry; h != nil {
				h(ctx, e)
			}
		},
	}
}
