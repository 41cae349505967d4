package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/tablescout/tablescout/pkg/adapters/memory"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/persistence/middleware"
)

func TestMaskingScrubsFreeText(t *testing.T) {
	underlying := memory.NewStore()
	// Phone numbers, then email addresses.
	mw := middleware.NewMasking([]string{
		`\b\d{3}-\d{3}-\d{4}\b`,
		`[\w.+-]+@[\w-]+\.[\w.]+`,
	})
	masked := mw(underlying)

	ctx := context.Background()
	state := domain.NewRunState("mask-session",
		"book under jane@example.com, call 202-555-0188 if the table opens up", time.Now())
	state.Phase = domain.PhaseErrorReported
	state.Result = "reached jane@example.com"
	state.RecordError(domain.ErrorReport{
		Phase:  domain.PhaseDiscovering,
		Source: "eater-dc",
		Detail: "upstream rejected callback for 202-555-0188",
	})

	if err := masked.Save(ctx, state.SessionID, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The engine's in-memory state keeps the original text.
	if state.Utterance != "book under jane@example.com, call 202-555-0188 if the table opens up" {
		t.Error("masking mutated the caller's state")
	}

	stored, err := underlying.Load(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("underlying load failed: %v", err)
	}
	if want := "book under ***, call *** if the table opens up"; stored.Utterance != want {
		t.Errorf("stored utterance = %q, want %q", stored.Utterance, want)
	}
	if want := "reached ***"; stored.Result != want {
		t.Errorf("stored result = %q, want %q", stored.Result, want)
	}
	if want := "upstream rejected callback for ***"; stored.Errors[0].Detail != want {
		t.Errorf("stored error detail = %q, want %q", stored.Errors[0].Detail, want)
	}
	// Structured fields pass through untouched.
	if stored.Errors[0].Source != "eater-dc" {
		t.Errorf("error source = %q, want eater-dc", stored.Errors[0].Source)
	}
	if stored.Phase != domain.PhaseErrorReported {
		t.Errorf("phase = %q, want error_reported", stored.Phase)
	}
}

func TestMaskingLoadPassesThrough(t *testing.T) {
	underlying := memory.NewStore()
	masked := middleware.NewMasking([]string{`secret`})(underlying)
	ctx := context.Background()

	state := domain.NewRunState("plain", "nothing sensitive here", time.Now())
	if err := underlying.Save(ctx, "plain", state); err != nil {
		t.Fatal(err)
	}

	loaded, err := masked.Load(ctx, "plain")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Utterance != "nothing sensitive here" {
		t.Errorf("utterance = %q", loaded.Utterance)
	}
}

func TestChainMasksThenSeals(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewSealing(middleware.SealConfig{ActiveKey: key}),
		middleware.NewMasking([]string{`\b\d{3}-\d{3}-\d{4}\b`}),
	)

	ctx := context.Background()
	state := domain.NewRunState("chained", "call 202-555-0188 about the patio", time.Now())
	if err := store.Save(ctx, "chained", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// At rest: envelope only.
	envelope, err := underlying.Load(ctx, "chained")
	if err != nil {
		t.Fatal(err)
	}
	if len(envelope.Sealed) == 0 || envelope.Utterance != "" {
		t.Fatalf("expected sealed envelope at rest, got %+v", envelope)
	}

	// Through the chain: unsealed, but the masking already happened on Save.
	loaded, err := store.Load(ctx, "chained")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := "call *** about the patio"; loaded.Utterance != want {
		t.Errorf("utterance = %q, want %q", loaded.Utterance, want)
	}
}
