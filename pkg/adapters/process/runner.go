// Package process implements the source collaborator as an external
// executable, so any scraper, in any language, can feed discovery. The
// runner keeps a strict allow-list: only commands registered up front can
// run, and search arguments reach the child as a JSON request on stdin and
// as environment variables, never as command-line flags.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

const (
	// defaultTimeout bounds one search end to end. Scrapers that need
	// longer get it via WithTimeout.
	defaultTimeout = 60 * time.Second

	// killGrace is how long a child has between SIGTERM and SIGKILL.
	killGrace = 3 * time.Second

	maxStderrBytes = 2048
)

// Command describes one allow-listed executable.
type Command struct {
	// Path is the executable to run.
	Path string
	// Args are fixed arguments. Search parameters never travel here.
	Args []string
	// Dir is the working directory. Empty means the parent's.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env []string
}

// Runner is a ports.Searcher that delegates each source to a registered
// external command.
type Runner struct {
	registry map[domain.SourceID]Command
	timeout  time.Duration
	logger   *slog.Logger
}

var _ ports.Searcher = (*Runner)(nil)

// Option configures the runner.
type Option func(*Runner)

// WithTimeout bounds how long one scraper run may take.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds a runner from an initial allow-list. commands may be nil;
// sources can be registered afterwards.
func New(commands map[domain.SourceID]Command, opts ...Option) *Runner {
	r := &Runner{
		registry: make(map[domain.SourceID]Command, len(commands)),
		timeout:  defaultTimeout,
		logger:   logging.NewNop(),
	}
	for id, cmd := range commands {
		r.registry[id] = cmd
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register allow-lists a command for a source, replacing any previous one.
func (r *Runner) Register(source domain.SourceID, cmd Command) {
	r.registry[source] = cmd
}

// request is what the child reads on stdin.
type request struct {
	Source   string `json:"source"`
	Location string `json:"location"`
}

// envelope is the structured response form. Scrapers may instead emit a
// bare JSON array of mentions.
type envelope struct {
	Mentions []wireMention `json:"mentions"`
	Error    string        `json:"error,omitempty"`
}

type wireMention struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
}

// Search runs the registered command for the source. The child receives
// `{"source": ..., "location": ...}` on stdin (and the same values as
// TABLESCOUT_SOURCE / TABLESCOUT_LOCATION) and must print mentions as JSON
// on stdout: either a bare array or an envelope with a "mentions" key.
func (r *Runner) Search(ctx context.Context, source domain.SourceID, location string) ([]domain.Mention, error) {
	spec, ok := r.registry[source]
	if !ok {
		return nil, fmt.Errorf("process: %w: no command registered for source %q", domain.ErrCollaboratorUnavailable, source)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	input, err := json.Marshal(request{Source: string(source), Location: location})
	if err != nil {
		return nil, fmt.Errorf("process: encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(cmd.Environ(), spec.Env...)
	cmd.Env = append(cmd.Env,
		"TABLESCOUT_SOURCE="+string(source),
		"TABLESCOUT_LOCATION="+location,
	)

	// Ask nicely first; the kill arrives when the grace runs out.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > maxStderrBytes {
			detail = detail[:maxStderrBytes]
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("process: %w: %s timed out after %s", domain.ErrCollaboratorUnavailable, spec.Path, elapsed.Round(time.Millisecond))
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if detail == "" {
			return nil, fmt.Errorf("process: %w: %s: %v", domain.ErrCollaboratorUnavailable, spec.Path, runErr)
		}
		return nil, fmt.Errorf("process: %w: %s: %v: %s", domain.ErrCollaboratorUnavailable, spec.Path, runErr, detail)
	}

	mentions, err := decodeMentions(source, stdout.Bytes())
	if err != nil {
		return nil, err
	}

	r.logger.Debug("scraper run complete",
		"source", source, "command", spec.Path, "mentions", len(mentions), "elapsed", elapsed)
	return mentions, nil
}

// decodeMentions accepts either response shape and drops mentions with no
// content, mirroring the other source adapters.
func decodeMentions(source domain.SourceID, raw []byte) ([]domain.Mention, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("process: %w: empty output", domain.ErrMalformedResponse)
	}

	var wire []wireMention
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
			return nil, fmt.Errorf("process: %w: %v", domain.ErrMalformedResponse, err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return nil, fmt.Errorf("process: %w: %v", domain.ErrMalformedResponse, err)
		}
		if env.Error != "" {
			return nil, fmt.Errorf("process: %w: scraper reported: %s", domain.ErrCollaboratorUnavailable, env.Error)
		}
		wire = env.Mentions
	default:
		return nil, fmt.Errorf("process: %w: output is not JSON", domain.ErrMalformedResponse)
	}

	mentions := make([]domain.Mention, 0, len(wire))
	for _, m := range wire {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		mentions = append(mentions, domain.Mention{
			Source:  source,
			URL:     strings.TrimSpace(m.URL),
			Content: m.Content,
		})
	}
	return mentions, nil
}
