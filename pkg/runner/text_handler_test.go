package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/tablescout/tablescout/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf).
		WithRenderer(func(s string) (string, error) {
			return "Rendered: " + s, nil
		})

	outcome := &domain.Outcome{
		SessionID: "run-1",
		Phase:     domain.PhaseDone,
		Message:   "Your list is up to date!",
	}

	if err := handler.Output(context.Background(), outcome); err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	output := outBuf.String()
	expected := "Rendered: Your list is up to date!"
	if !strings.Contains(output, expected) {
		t.Errorf("Expected output to contain %q, got %q", expected, output)
	}
}

func TestTextHandler_OutputSkipsEmptyMessage(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	if err := handler.Output(context.Background(), &domain.Outcome{}); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if outBuf.Len() != 0 {
		t.Errorf("Expected no output for empty message, got %q", outBuf.String())
	}
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("add 1 and 3\n"), outBuf)

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "add 1 and 3" {
		t.Errorf("Expected 'add 1 and 3', got %q", val)
	}
	if !strings.Contains(outBuf.String(), "> ") {
		t.Errorf("Expected prompt '> ' in output, got %q", outBuf.String())
	}
}

func TestTextHandler_InputRejectsOversizedThenRecovers(t *testing.T) {
	t.Setenv("TABLESCOUT_MAX_INPUT_SIZE", "8")

	input := strings.Repeat("a", 20) + "\nyes\n"
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(input), outBuf)

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "yes" {
		t.Errorf("Expected recovery to 'yes', got %q", val)
	}
	if !strings.Contains(outBuf.String(), "Please try again") {
		t.Errorf("Expected rejection feedback, got %q", outBuf.String())
	}
}

func TestTextHandler_InputEOF(t *testing.T) {
	handler := NewTextHandler(strings.NewReader(""), &bytes.Buffer{})

	_, err := handler.Input(context.Background())
	if err != io.EOF {
		t.Errorf("Expected io.EOF on exhausted reader, got %v", err)
	}
}

func TestTextHandler_InputRespectsContext(t *testing.T) {
	// A reader that never produces a line keeps the pump blocked.
	blocked, _ := io.Pipe()
	handler := NewTextHandler(blocked, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Input(ctx)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestTextHandler_SystemOutput(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	if err := handler.SystemOutput(context.Background(), "Session saved."); err != nil {
		t.Fatalf("SystemOutput failed: %v", err)
	}
	if !strings.Contains(outBuf.String(), "[system] Session saved.") {
		t.Errorf("Expected system prefix, got %q", outBuf.String())
	}
}
