package tablescout_test

import (
	"context"
	"fmt"
	"log"

	"github.com/tablescout/tablescout"
	"github.com/tablescout/tablescout/pkg/adapters/memory"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// exampleEvaluator returns a fixed candidate so the example is
// deterministic. Real deployments wire the OpenAI-backed evaluator from
// pkg/adapters/openai.
type exampleEvaluator struct{}

func (exampleEvaluator) Extract(ctx context.Context, source domain.SourceID, mentions []domain.Mention) ([]domain.Candidate, error) {
	return []domain.Candidate{{
		Name:        "Maydan",
		Description: "Live-fire cooking around a central hearth.",
		Cuisine:     "Middle Eastern",
		Price:       domain.PriceUpscale,
	}}, nil
}

func (exampleEvaluator) Rank(ctx context.Context, candidate domain.Candidate, source domain.SourceID, evalCtx ports.EvalContext) (float64, string, error) {
	return 4.8, "signature tasting menu praised across sources", nil
}

func (exampleEvaluator) ParseEdit(ctx context.Context, utterance string) (domain.EditCommand, error) {
	return domain.EditCommand{Action: domain.EditUnknown}, nil
}

type exampleSource struct{}

func (exampleSource) Search(ctx context.Context, source domain.SourceID, location string) ([]domain.Mention, error) {
	return []domain.Mention{{Source: source, Content: "Maydan lights up 9th Street"}}, nil
}

// ExampleNew walks one approval-gated discovery run end to end using
// in-memory stores. A blank data dir is allowed because both stores are
// injected.
func ExampleNew() {
	concierge, err := tablescout.New("",
		tablescout.WithEvaluator(exampleEvaluator{}),
		tablescout.WithRunStore(memory.NewStore()),
		tablescout.WithListStore(memory.NewList()),
		tablescout.WithSource("eater-dc", exampleSource{}),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// The discovery run suspends on a proposal instead of writing rows.
	outcome, err := concierge.SubmitUtterance(ctx, "date-night", "find new restaurants")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("phase: %s awaiting: %v\n", outcome.Phase, outcome.AwaitingDecision)

	// Approving applies the proposal to the list.
	outcome, err = concierge.SubmitDecision(ctx, "date-night", "yes")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("phase: %s\n", outcome.Phase)

	entries, err := concierge.Entries(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Printf("added: %s\n", e.Name)
	}
	// Output:
	// phase: awaiting_approval awaiting: true
	// phase: done
	// added: Maydan
}
