// Package tavily implements the source collaborator against the Tavily
// search API. Each configured source carries its own tailored queries and
// an optional publisher domain restriction; responses are cached so
// repeated discovery runs do not burn API quota.
package tavily

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
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

const (
	defaultBaseURL    = "https://api.tavily.com"
	defaultMaxResults = 5
	defaultDepth      = "basic"
	maxErrorBodyBytes = 2048
)

// SourceSpec configures how one source is searched.
type SourceSpec struct {
	// Domain restricts results to one publisher site. Empty means no
	// restriction.
	Domain string
	// Queries are the tailored searches for this source. Empty falls back
	// to a generic "best restaurants <location>" query.
	Queries []string
}

// Client is a ports.Searcher backed by Tavily web search.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	specs   map[domain.SourceID]SourceSpec

	maxResults int
	depth      string

	cache  *cache.Cache
	logger *slog.Logger
}

var _ ports.Searcher = (*Client)(nil)

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

// WithCache enables response caching.
func WithCache(store *cache.Cache) Option {
	return func(c *Client) { c.cache = store }
}

// WithMaxResults bounds how many results one query may return.
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithSearchDepth selects the Tavily search depth ("basic" or "advanced").
func WithSearchDepth(depth string) Option {
	return func(c *Client) {
		if depth != "" {
			c.depth = depth
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

// New builds a Tavily searcher. specs maps source IDs to their search
// configuration; sources without a spec get one generic query.
func New(apiKey string, specs map[domain.SourceID]SourceSpec, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		specs:      specs,
		maxResults: defaultMaxResults,
		depth:      defaultDepth,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	MaxResults        int      `json:"max_results"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
}

// Search runs every configured query for the source and returns the
// aggregated mentions. One result becomes one mention; results with no
// usable content are dropped.
func (c *Client) Search(ctx context.Context, source domain.SourceID, location string) ([]domain.Mention, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("tavily: %w: missing API key", domain.ErrCollaboratorUnavailable)
	}

	spec := c.specs[source]
	queries := spec.Queries
	if len(queries) == 0 {
		queries = []string{fmt.Sprintf("best restaurants %s", location)}
	}

	var mentions []domain.Mention
	for _, query := range queries {
		found, err := c.searchQuery(ctx, source, query, spec.Domain)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, found...)
	}

	c.logger.Debug("tavily search complete",
		"source", source, "queries", len(queries), "mentions", len(mentions))
	return mentions, nil
}

func (c *Client) searchQuery(ctx context.Context, source domain.SourceID, query, site string) ([]domain.Mention, error) {
	cacheKey := query + "|" + orAll(site)
	if c.cache != nil {
		var cached []domain.Mention
		if c.cache.Get(cache.KindSearch, cacheKey, &cached) {
			c.logger.Debug("tavily cache hit", "source", source, "query", query)
			return cached, nil
		}
	}

	payload := searchRequest{
		Query:             query,
		SearchDepth:       c.depth,
		MaxResults:        c.maxResults,
		IncludeRawContent: true,
	}
	if site != "" {
		payload.IncludeDomains = []string{site}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tavily: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("tavily: %w: unauthorized", domain.ErrCollaboratorUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("tavily: %w: rate limited", domain.ErrCollaboratorUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("tavily: %w: %s - %s",
			domain.ErrCollaboratorUnavailable, resp.Status, strings.TrimSpace(string(errorBody)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("tavily: %w: %v", domain.ErrMalformedResponse, err)
	}

	mentions := make([]domain.Mention, 0, len(decoded.Results))
	for _, result := range decoded.Results {
		content := result.RawContent
		if content == "" {
			content = result.Content
		}
		if content == "" {
			continue
		}
		mentions = append(mentions, domain.Mention{
			Source:  source,
			URL:     result.URL,
			Content: content,
		})
	}

	if c.cache != nil {
		if err := c.cache.Put(cache.KindSearch, cacheKey, mentions); err != nil {
			c.logger.Warn("tavily cache write failed", "err", err)
		}
	}
	return mentions, nil
}

func orAll(site string) string {
	if site == "" {
		return "all"
	}
	return site
}
