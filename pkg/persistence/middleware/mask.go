package middleware

import (
	"context"
	"regexp"

	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

const maskReplacement = "***"

type maskingStore struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewMasking replaces every pattern match inside the free-text fields of a
// run (utterance, proposal, result, error detail) with "***" before the
// snapshot reaches the wrapped store. Those are the fields that carry user
// input or upstream error text; structured fields are never touched. Masking
// is one-way: loads pass through, so what was masked at rest stays masked.
// Patterns must compile; the config layer validates them before this runs.
func NewMasking(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &maskingStore{next: next, patterns: patterns}
	}
}

func (m *maskingStore) Save(ctx context.Context, sessionID string, state *domain.RunState) error {
	// Mask a clone; the engine's in-memory state keeps the original text.
	masked := state.Clone()
	masked.Utterance = m.mask(masked.Utterance)
	masked.Proposal = m.mask(masked.Proposal)
	masked.Result = m.mask(masked.Result)
	for i := range masked.Errors {
		masked.Errors[i].Detail = m.mask(masked.Errors[i].Detail)
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *maskingStore) Load(ctx context.Context, sessionID string) (*domain.RunState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *maskingStore) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *maskingStore) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *maskingStore) mask(text string) string {
	if text == "" {
		return text
	}
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, maskReplacement)
	}
	return text
}
