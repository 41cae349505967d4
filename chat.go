package tablescout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Chat runs a minimal blocking conversation loop over the given reader and
// writer. It is meant for quick embedding and examples; interactive
// terminals want pkg/runner, which adds signal handling, sanitization,
// markdown rendering and decision interceptors.
//
// Every line is submitted as an utterance; when a run is suspended the
// engine treats the next line as the decision, so the loop needs no
// routing of its own. The loop ends on "exit", "quit", or EOF.
func (c *Concierge) Chat(ctx context.Context, in io.Reader, out io.Writer) error {
	if in == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if out == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	reader := bufio.NewReader(in)
	sessionID := ""

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := fmt.Fprint(out, "> "); err != nil {
			return err
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		outcome, err := c.SubmitUtterance(ctx, sessionID, text)
		if err != nil {
			return fmt.Errorf("submit utterance: %w", err)
		}
		if sessionID == "" {
			sessionID = outcome.SessionID
		}
		if outcome.Message != "" {
			fmt.Fprintln(out, strings.TrimSpace(outcome.Message))
		}
	}
}
