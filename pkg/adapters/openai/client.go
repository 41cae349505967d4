// Package openai implements the extraction/ranking collaborator against
// the OpenAI chat-completions API. Prompts come from the prompt repository;
// JSON responses are schema-validated before decoding, and parsed results
// are cached so repeated discovery runs do not re-bill the same content.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tablescout/tablescout/internal/cache"
	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/adapters/prompts"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

const (
	defaultBaseURL    = "https://api.openai.com"
	defaultModel      = "gpt-4o-mini"
	maxErrorBodyBytes = 2048

	// Large source pages are split before extraction; each chunk is one
	// completion call.
	defaultChunkSize = 50000
)

// Client is a ports.Evaluator backed by OpenAI chat completions.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client

	prompts   *prompts.Repository
	location  string
	chunkSize int

	cache  *cache.Cache
	logger *slog.Logger
}

var _ ports.Evaluator = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.client = h
		}
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the default model for documents that do not pin one.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLocation sets the city/region the extraction prompt filters by.
func WithLocation(location string) Option {
	return func(c *Client) {
		if location != "" {
			c.location = location
		}
	}
}

// WithCache enables caching of parsed completions.
func WithCache(store *cache.Cache) Option {
	return func(c *Client) { c.cache = store }
}

// WithChunkSize overrides how large a source page may be before extraction
// splits it across calls.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds an evaluator reading its prompts from repo.
func New(apiKey string, repo *prompts.Repository, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		prompts:   repo,
		location:  "Washington DC",
		chunkSize: defaultChunkSize,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// complete renders nothing itself: the caller passes the already-rendered
// user prompt and the document whose model parameters apply.
func (c *Client) complete(ctx context.Context, p *prompts.Prompt, userPrompt string, jsonMode bool) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", fmt.Errorf("openai: %w: missing API key", domain.ErrCollaboratorUnavailable)
	}

	model := p.Model
	if model == "" {
		model = c.model
	}
	messages := make([]chatMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	payload := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: p.Temperature,
	}
	if jsonMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("openai: %w: unauthorized", domain.ErrCollaboratorUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("openai: %w: rate limited", domain.ErrCollaboratorUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("openai: %w: %s - %s",
			domain.ErrCollaboratorUnavailable, resp.Status, strings.TrimSpace(string(errorBody)))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w: empty completion", domain.ErrMalformedResponse)
	}
	return completion.Choices[0].Message.Content, nil
}
