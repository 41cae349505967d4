package ports

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Searcher is the Source Collaborator: given a source and a location it
// returns raw candidate mentions. No contract beyond "may fail, may time
// out, may return zero results". Failures should wrap
// domain.ErrCollaboratorUnavailable so the engine can classify them.
type Searcher interface {
	Search(ctx context.Context, source domain.SourceID, location string) ([]domain.Mention, error)
}

// EvalContext carries the situational inputs a ranking call may use.
type EvalContext struct {
	Location string
	// Mentions is the raw material the candidate was extracted from,
	// scoped to the source being ranked.
	Mentions []domain.Mention
}

// Evaluator is the Extraction/Ranking Collaborator. Implementations are
// model-backed and may fail or return malformed output; malformed payloads
// must wrap domain.ErrMalformedResponse.
type Evaluator interface {
	// Extract turns one source's raw mentions into structured candidates.
	Extract(ctx context.Context, source domain.SourceID, mentions []domain.Mention) ([]domain.Candidate, error)

	// Rank scores one candidate for one source in [1.0, 5.0] and returns a
	// short justification. A source with no opinion returns
	// domain.ErrSourceSilent; the engine records no score for it.
	Rank(ctx context.Context, candidate domain.Candidate, source domain.SourceID, evalCtx EvalContext) (float64, string, error)

	// ParseEdit resolves a conversational edit utterance into a structured
	// command.
	ParseEdit(ctx context.Context, utterance string) (domain.EditCommand, error)
}
