package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tablescout/tablescout/pkg/domain"
)

// TextHandler implements IOHandler for plain-text interaction over an
// io.Reader/io.Writer pair, typically stdin/stdout.
type TextHandler struct {
	in       io.Reader
	out      io.Writer
	renderer ContentRenderer

	scanner   *bufio.Scanner
	startOnce sync.Once
	inputChan chan inputResult
}

type inputResult struct {
	text string
	err  error
}

// NewTextHandler creates a text-based IO handler.
func NewTextHandler(in io.Reader, out io.Writer) *TextHandler {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &TextHandler{
		in:        in,
		out:       out,
		scanner:   scanner,
		inputChan: make(chan inputResult),
	}
}

// WithRenderer sets a content renderer applied to conversation output.
// Returns the handler for chaining.
func (h *TextHandler) WithRenderer(r ContentRenderer) *TextHandler {
	h.renderer = r
	return h
}

// Output writes the outcome's message, rendered if a renderer is set.
func (h *TextHandler) Output(ctx context.Context, outcome *domain.Outcome) error {
	if outcome == nil || outcome.Message == "" {
		return nil
	}
	content := outcome.Message
	if h.renderer != nil {
		rendered, err := h.renderer(content)
		if err == nil {
			content = rendered
		}
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	_, err := fmt.Fprint(h.out, content)
	return err
}

// Input reads one line from the user, sanitizes it, and returns it.
// Oversized or malformed input is rejected with feedback and re-prompted
// rather than truncated.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.startInputPump()

	for {
		if _, err := fmt.Fprint(h.out, "> "); err != nil {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case result, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if result.err != nil {
				return "", result.err
			}
			text, err := SanitizeInput(result.text)
			if err != nil {
				if ferr := h.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); ferr != nil {
					return "", ferr
				}
				// Brief pause so a tight error loop doesn't spin.
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return text, nil
		}
	}
}

// SystemOutput writes a meta-message with a prefix distinguishing it from
// conversation content.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.out, "\n[system] %s\n", msg)
	return err
}

// startInputPump launches the goroutine that forwards scanner lines to
// inputChan. Started once; the goroutine lives until the reader is
// exhausted or closed.
func (h *TextHandler) startInputPump() {
	h.startOnce.Do(func() {
		go func() {
			defer close(h.inputChan)
			for h.scanner.Scan() {
				h.inputChan <- inputResult{text: h.scanner.Text()}
			}
			if err := h.scanner.Err(); err != nil {
				h.inputChan <- inputResult{err: err}
			}
		}()
	})
}
