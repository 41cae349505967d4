package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/tablescout/tablescout/pkg/domain"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout conversation UI/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOptions(level)))
}

// NewJSON creates a logger emitting structured JSON lines.
// Used by the HTTP server where logs are scraped rather than read.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, handlerOptions(level)))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithRun binds the standard run attributes so every step of a run
// logs under the same session and phase keys.
func WithRun(logger *slog.Logger, sessionID string, phase domain.Phase) *slog.Logger {
	return logger.With("session_id", sessionID, "phase", string(phase))
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
}
