package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// sourceBatch is the intra-turn carrier between discovery and evaluation:
// one source's raw mentions and the candidates extracted from them. It never
// crosses the suspend boundary, so it stays out of RunState.
type sourceBatch struct {
	source   domain.SourceID
	mentions []domain.Mention
	found    []domain.Candidate
}

// begin classifies the utterance and dispatches to the intent's flow.
// An unrecognized utterance degrades to a clarification request: the run
// does not advance and nothing is persisted.
func (e *Engine) begin(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseClassifying)

	intent, ok := domain.ClassifyIntent(state.Utterance)
	if !ok {
		e.transition(ctx, state, domain.PhaseIdle)
		return e.outcome(state, msgClarifyIntent, false), nil
	}
	state.Intent = intent
	e.logger.Info("run started", "session_id", state.SessionID, "intent", string(intent))

	return e.dispatch(ctx, state)
}

// dispatch routes a classified run into its flow. Retried runs re-enter
// here after their accumulations are cleared.
func (e *Engine) dispatch(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	switch state.Intent {
	case domain.IntentDiscover:
		return e.runDiscovery(ctx, state)
	case domain.IntentView:
		return e.runView(ctx, state)
	case domain.IntentEdit:
		return e.runEdit(ctx, state)
	default:
		return nil, fmt.Errorf("unroutable intent %q for session %s", state.Intent, state.SessionID)
	}
}

// runDiscovery drives Discovering → Evaluating → Comparing → Proposing.
// A step that spends its retry budget halts the walk and surfaces the
// ErrorReported phase instead of an error.
func (e *Engine) runDiscovery(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	batches, err := e.discover(ctx, state)
	if out, handled, herr := e.halt(ctx, state, err); handled {
		return out, herr
	}

	err = e.evaluate(ctx, state, batches)
	if out, handled, herr := e.halt(ctx, state, err); handled {
		return out, herr
	}

	err = e.compare(ctx, state)
	if out, handled, herr := e.halt(ctx, state, err); handled {
		return out, herr
	}

	return e.propose(ctx, state)
}

// halt translates a step error: stepFailure becomes the ErrorReported
// outcome, everything else propagates as an infrastructure error.
func (e *Engine) halt(ctx context.Context, state *domain.RunState, err error) (*domain.Outcome, bool, error) {
	if err == nil {
		return nil, false, nil
	}
	var failure *stepFailure
	if errors.As(err, &failure) {
		out, rerr := e.report(ctx, state, failure.summary)
		return out, true, rerr
	}
	return nil, true, err
}

// discover walks every configured source: search, then extract. Per-source
// failures are recorded and skipped so the other sources' results survive;
// only a run where every source failed is reported as an error.
func (e *Engine) discover(ctx context.Context, state *domain.RunState) ([]sourceBatch, error) {
	e.transition(ctx, state, domain.PhaseDiscovering)

	sources := e.sources.Sources()
	if len(sources) == 0 {
		return nil, &stepFailure{summary: "No discovery sources are configured."}
	}

	var batches []sourceBatch
	failed := 0
	for _, src := range sources {
		searcher, err := e.sources.Lookup(src)
		if err != nil {
			return nil, err
		}

		mentions, err := callRetry(e, ctx, state, "search:"+string(src), src, func(ctx context.Context) ([]domain.Mention, error) {
			return searcher.Search(ctx, src, e.location)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			failed++
			continue
		}
		if len(mentions) == 0 {
			// Zero results is a valid answer, not a failure.
			continue
		}

		found, err := callRetry(e, ctx, state, "extract:"+string(src), src, func(ctx context.Context) ([]domain.Candidate, error) {
			return e.evaluator.Extract(ctx, src, mentions)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			failed++
			continue
		}

		batches = append(batches, sourceBatch{source: src, mentions: mentions, found: found})
	}

	if failed == len(sources) {
		return nil, &stepFailure{summary: "The discovery process failed."}
	}
	return batches, nil
}

// evaluate ranks every candidate against its originating source, merges
// duplicates across sources so the survivor carries the union of scores,
// and applies the quality floor. Unscored candidates survive the floor.
func (e *Engine) evaluate(ctx context.Context, state *domain.RunState, batches []sourceBatch) error {
	e.transition(ctx, state, domain.PhaseEvaluating)

	var ranked []domain.Candidate
	total, failed := 0, 0
	for _, batch := range batches {
		evalCtx := ports.EvalContext{Location: e.location, Mentions: batch.mentions}
		for _, cand := range batch.found {
			total++
			step := fmt.Sprintf("rank:%s:%s", batch.source, domain.NormalizeName(cand.Name))

			score, justification, err := callRetryRank(e, ctx, state, step, batch.source, cand, evalCtx)
			switch {
			case errors.Is(err, domain.ErrSourceSilent):
				// The source has no opinion; the candidate keeps no score.
			case err != nil:
				if ctx.Err() != nil {
					return err
				}
				failed++
			default:
				cand.SetScore(batch.source, score)
				if justification != "" {
					cand.Justification = joinJustification(cand.Justification, justification)
				}
			}
			ranked = append(ranked, cand)
		}
	}

	if total > 0 && failed == total {
		return &stepFailure{summary: "The discovery process failed."}
	}

	merged := domain.MergeCandidates(ranked)
	state.Discovered = applyQualityFloor(merged, e.qualityFloor)
	return nil
}

// compare fetches the existing list exactly once per run and computes the
// addition set, already in proposal order so approval indices line up.
func (e *Engine) compare(ctx context.Context, state *domain.RunState) error {
	e.transition(ctx, state, domain.PhaseComparing)

	existing, err := callRetry(e, ctx, state, "fetch_all", "", func(ctx context.Context) ([]domain.ListEntry, error) {
		return e.lists.FetchAll(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return &stepFailure{summary: "I couldn't read your current restaurant list."}
	}

	state.Existing = existing
	state.Additions = domain.AdditionSet(state.Discovered, existing)
	domain.SortForProposal(state.Additions)
	return nil
}

// propose renders the proposal. An empty addition set completes the run
// without suspending; otherwise the run checkpoints at AwaitingApproval.
func (e *Engine) propose(ctx context.Context, state *domain.RunState) (*domain.Outcome, error) {
	e.transition(ctx, state, domain.PhaseProposing)

	if len(state.Additions) == 0 {
		return e.finish(ctx, state, msgNothingNew)
	}

	state.Proposal = renderProposal(state.Additions)
	return e.suspend(ctx, state)
}

// callRetryRank adapts the three-value Rank call to the retry helper.
func callRetryRank(e *Engine, ctx context.Context, state *domain.RunState, step string, source domain.SourceID, cand domain.Candidate, evalCtx ports.EvalContext) (float64, string, error) {
	type rank struct {
		score         float64
		justification string
	}
	out, err := callRetry(e, ctx, state, step, source, func(ctx context.Context) (rank, error) {
		score, justification, err := e.evaluator.Rank(ctx, cand, source, evalCtx)
		return rank{score: score, justification: justification}, err
	})
	return out.score, out.justification, err
}

// applyQualityFloor drops candidates whose overall score is defined and
// below the floor. A candidate no source scored is kept: absence is never
// treated as zero.
func applyQualityFloor(cands []domain.Candidate, floor float64) []domain.Candidate {
	out := cands[:0]
	for _, c := range cands {
		if overall, scored := c.OverallScore(); scored && overall < floor {
			continue
		}
		out = append(out, c)
	}
	return out
}

func joinJustification(existing, next string) string {
	if existing == "" {
		return next
	}
	if next == "" {
		return existing
	}
	return existing + " " + next
}
