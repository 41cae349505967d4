package runner

import (
	"context"

	"github.com/tablescout/tablescout/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents an outcome to the user.
	Output(ctx context.Context, outcome *domain.Outcome) error

	// Input reads the user's next utterance or decision.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (status, warnings, shutdown
	// notices). This is distinct from conversation content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms conversation content before output. It lets a
// TUI render markdown to ANSI without coupling this package to a renderer.
type ContentRenderer func(string) (string, error)
