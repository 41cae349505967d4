// Package rss implements the source collaborator over RSS and Atom feeds.
// Feeds are not queryable like web search, so items are pulled and filtered
// locally by keyword. One feed item becomes one mention.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

const (
	defaultMaxItems = 20
	defaultMaxAge   = 180 * 24 * time.Hour
)

var defaultKeywords = []string{
	"restaurant", "restaurants", "dining", "chef", "menu",
	"opening", "openings", "michelin", "tasting",
}

// Client is a ports.Searcher that reads one source's feeds.
type Client struct {
	client   *http.Client
	feeds    []string
	keywords []string
	maxItems int
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
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

// WithKeywords replaces the default filter terms. Terms shorter than three
// characters are ignored during matching.
func WithKeywords(keywords ...string) Option {
	return func(c *Client) { c.keywords = keywords }
}

// WithMaxItems caps how many mentions one search returns.
func WithMaxItems(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

// WithMaxAge drops items whose publish date is older than the window.
// Undated items are kept.
func WithMaxAge(age time.Duration) Option {
	return func(c *Client) {
		if age > 0 {
			c.maxAge = age
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

// New builds a feed-backed searcher over the given feed URLs.
func New(feedURLs ...string) *Client {
	return &Client{
		client:   &http.Client{Timeout: 15 * time.Second},
		feeds:    feedURLs,
		keywords: defaultKeywords,
		maxItems: defaultMaxItems,
		maxAge:   defaultMaxAge,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
}

// NewWithOptions builds a feed-backed searcher with configuration.
func NewWithOptions(feedURLs []string, opts ...Option) *Client {
	c := New(feedURLs...)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search pulls every feed and returns keyword-matching items as mentions.
// A feed that fails to load is skipped; the search only errors when no feed
// could be read at all.
func (c *Client) Search(ctx context.Context, source domain.SourceID, location string) ([]domain.Mention, error) {
	if len(c.feeds) == 0 {
		return nil, nil
	}

	parser := gofeed.NewParser()
	cutoff := c.now().Add(-c.maxAge)

	var (
		mentions []domain.Mention
		loaded   int
		lastErr  error
	)

	for _, feedURL := range c.feeds {
		if len(mentions) >= c.maxItems {
			break
		}

		feed, err := c.fetch(ctx, parser, feedURL)
		if err != nil {
			c.logger.Warn("feed skipped", "source", source, "feed", feedURL, "err", err)
			lastErr = err
			continue
		}
		loaded++

		for _, item := range feed.Items {
			if len(mentions) >= c.maxItems {
				break
			}
			if stale(item, cutoff) {
				continue
			}

			title := strings.TrimSpace(item.Title)
			body := strings.TrimSpace(item.Content)
			if body == "" {
				body = strings.TrimSpace(item.Description)
			}
			if !matchesAnyKeyword(strings.ToLower(title+" "+body), c.keywords) {
				continue
			}

			content := title
			if body != "" {
				content = title + "\n\n" + body
			}
			mentions = append(mentions, domain.Mention{
				Source:  source,
				URL:     strings.TrimSpace(item.Link),
				Content: content,
			})
		}
	}

	if loaded == 0 && lastErr != nil {
		return nil, fmt.Errorf("rss: %w: no feed could be read: %v",
			domain.ErrCollaboratorUnavailable, lastErr)
	}

	c.logger.Debug("rss search complete",
		"source", source, "feeds", loaded, "mentions", len(mentions))
	return mentions, nil
}

func (c *Client) fetch(ctx context.Context, parser *gofeed.Parser, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	return parser.Parse(resp.Body)
}

func stale(item *gofeed.Item, cutoff time.Time) bool {
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published == nil {
		return false
	}
	return published.Before(cutoff)
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.TrimSpace(strings.ToLower(k))
		if len(k) < 3 {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
