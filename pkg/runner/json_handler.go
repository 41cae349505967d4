package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/tablescout/tablescout/pkg/domain"
)

// JSONHandler implements IOHandler speaking JSON Lines: one JSON object per
// outcome on the way out, one string (raw or JSON-quoted) per line on the
// way in. Suited to driving the loop from another process.
type JSONHandler struct {
	enc     *json.Encoder
	scanner *bufio.Scanner

	startOnce sync.Once
	inputChan chan inputResult
}

// jsonSystemLine is the envelope for meta-messages so consumers can tell
// them apart from conversation outcomes.
type jsonSystemLine struct {
	System string `json:"system"`
}

// NewJSONHandler creates a JSON Lines IO handler.
func NewJSONHandler(in io.Reader, out io.Writer) *JSONHandler {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONHandler{
		enc:       json.NewEncoder(out),
		scanner:   scanner,
		inputChan: make(chan inputResult),
	}
}

// Output encodes the outcome as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, outcome *domain.Outcome) error {
	if outcome == nil {
		return nil
	}
	return h.enc.Encode(outcome)
}

// Input reads one line. A line that parses as a JSON string is unquoted;
// anything else is passed through raw, so plain-text drivers still work.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
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
		var quoted string
		if err := json.Unmarshal([]byte(result.text), &quoted); err == nil {
			return SanitizeInput(quoted)
		}
		return SanitizeInput(result.text)
	}
}

// SystemOutput encodes the message as a {"system": ...} line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.enc.Encode(jsonSystemLine{System: msg})
}
