package cli

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tablescout/tablescout"
	"github.com/tablescout/tablescout/internal/presentation/tui"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/runner"
)

// ChatOptions are the chat command's own flags.
type ChatOptions struct {
	// SessionID resumes (or names) a session. Empty lets the engine mint
	// one on the first utterance.
	SessionID string
	// Fresh deletes the named session before starting.
	Fresh bool
	// JSON swaps the text UI for NDJSON on stdin/stdout.
	JSON bool
	// AutoApprove answers pending approvals affirmatively and declines
	// retries, for scripted runs.
	AutoApprove bool
}

// RunChat starts the conversational loop on stdin/stdout and blocks until
// the user exits, input is exhausted, or an interrupt settles the session.
func RunChat(ctx context.Context, opts Options, chat ChatOptions) error {
	logger, err := opts.Logger()
	if err != nil {
		return err
	}
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	if !chat.JSON {
		tui.PrintBanner(tablescout.Version)
	}

	hooks := domain.LifecycleHooks{}
	if opts.Debug() {
		hooks = DebugHooks(logger)
	}

	concierge, cleanup, err := BuildConcierge(ctx, cfg, logger, hooks)
	if err != nil {
		return err
	}
	defer cleanup()

	if chat.Fresh && chat.SessionID != "" {
		if err := concierge.Forget(ctx, chat.SessionID); err != nil {
			return fmt.Errorf("reset session %q: %w", chat.SessionID, err)
		}
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithHandler(chatHandler(chat)),
		runner.WithSessionID(chat.SessionID),
	}
	if chat.AutoApprove {
		runnerOpts = append(runnerOpts, runner.WithInterceptor(runner.AutoApproveMiddleware()))
	}

	return runner.New(runnerOpts...).Run(ctx, concierge)
}

// chatHandler picks the IO strategy: NDJSON for --json, otherwise text with
// markdown rendering when stdout is a real terminal.
func chatHandler(chat ChatOptions) runner.IOHandler {
	if chat.JSON {
		return runner.NewJSONHandler(os.Stdin, os.Stdout)
	}
	handler := runner.NewTextHandler(os.Stdin, os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		handler.WithRenderer(tui.NewRenderer())
	}
	return handler
}
