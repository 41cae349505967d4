package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tablescout/tablescout/internal/cache"
	"github.com/tablescout/tablescout/internal/dto"
	"github.com/tablescout/tablescout/pkg/adapters/prompts"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
	"github.com/tablescout/tablescout/pkg/schema"
)

// Extract turns one source's raw mentions into structured candidates.
// Oversized content is split into chunks, one completion call each;
// duplicate names across chunks are merged later by the engine.
func (c *Client) Extract(ctx context.Context, source domain.SourceID, mentions []domain.Mention) ([]domain.Candidate, error) {
	content := joinMentions(mentions)
	if content == "" {
		return nil, nil
	}

	prompt, err := c.prompts.Get(ctx, prompts.Extraction)
	if err != nil {
		return nil, fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}

	var out []domain.Candidate
	for _, chunk := range chunkString(content, c.chunkSize) {
		candidates, err := c.extractChunk(ctx, prompt, source, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, candidates...)
	}

	c.logger.Debug("extraction complete",
		"source", source, "mentions", len(mentions), "candidates", len(out))
	return out, nil
}

func (c *Client) extractChunk(ctx context.Context, prompt *prompts.Prompt, source domain.SourceID, chunk string) ([]domain.Candidate, error) {
	userPrompt, err := prompt.Render(map[string]any{
		"Source":   string(source),
		"Location": c.location,
		"Content":  chunk,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}

	if c.cache != nil {
		var cached []domain.Candidate
		if c.cache.Get(cache.KindExtract, userPrompt, &cached) {
			c.logger.Debug("extraction cache hit", "source", source)
			return cached, nil
		}
	}

	raw, err := c.complete(ctx, prompt, userPrompt, true)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Restaurants []map[string]any `json:"restaurants"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}
	if err := schema.ValidateEach(prompt.Schema, envelope.Restaurants); err != nil {
		return nil, fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}

	candidates := make([]domain.Candidate, 0, len(envelope.Restaurants))
	for _, item := range envelope.Restaurants {
		var decoded dto.ExtractionItem
		if err := dto.Decode(item, &decoded); err != nil {
			return nil, err
		}
		candidate := decoded.ToCandidate()
		if candidate.Name == "" {
			continue
		}
		candidates = append(candidates, candidate)
	}

	if c.cache != nil {
		if err := c.cache.Put(cache.KindExtract, userPrompt, candidates); err != nil {
			c.logger.Warn("extraction cache write failed", "err", err)
		}
	}
	return candidates, nil
}

// Rank scores one candidate for one source. A source whose content never
// mentions the candidate is silent: no completion call is made and the
// engine records no score.
func (c *Client) Rank(ctx context.Context, candidate domain.Candidate, source domain.SourceID, evalCtx ports.EvalContext) (float64, string, error) {
	content := joinMentions(evalCtx.Mentions)
	if !mentionsName(content, candidate.Name) {
		return 0, "", fmt.Errorf("openai: %w: %q", domain.ErrSourceSilent, candidate.Name)
	}

	prompt, err := c.prompts.Get(ctx, prompts.Ranking)
	if err != nil {
		return 0, "", fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}

	userPrompt, err := prompt.Render(map[string]any{
		"Name":        candidate.Name,
		"Description": candidate.Description,
		"Source":      string(source),
		"Content":     truncate(content, c.chunkSize),
	})
	if err != nil {
		return 0, "", fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}

	if c.cache != nil {
		var cached dto.Ranking
		if c.cache.Get(cache.KindRank, userPrompt, &cached) {
			return cached.Score, cached.Justification, nil
		}
	}

	raw, err := c.complete(ctx, prompt, userPrompt, true)
	if err != nil {
		return 0, "", err
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return 0, "", fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}
	if err := schema.Validate(prompt.Schema, payload); err != nil {
		return 0, "", fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}

	var ranking dto.Ranking
	if err := dto.Decode(payload, &ranking); err != nil {
		return 0, "", err
	}
	ranking.Justification = strings.TrimSpace(ranking.Justification)

	if c.cache != nil {
		if err := c.cache.Put(cache.KindRank, userPrompt, ranking); err != nil {
			c.logger.Warn("ranking cache write failed", "err", err)
		}
	}
	return ranking.Score, ranking.Justification, nil
}

// ParseEdit resolves a conversational edit utterance into a structured
// command. Parses are not cached: the same words can mean a different edit
// once the list has changed.
func (c *Client) ParseEdit(ctx context.Context, utterance string) (domain.EditCommand, error) {
	prompt, err := c.prompts.Get(ctx, prompts.EditCommand)
	if err != nil {
		return domain.EditCommand{}, fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}

	userPrompt, err := prompt.Render(map[string]any{"Command": utterance})
	if err != nil {
		return domain.EditCommand{}, fmt.Errorf("openai: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}

	raw, err := c.complete(ctx, prompt, userPrompt, true)
	if err != nil {
		return domain.EditCommand{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.EditCommand{}, fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}
	if err := schema.Validate(prompt.Schema, payload); err != nil {
		return domain.EditCommand{}, fmt.Errorf("openai: %w: %v", domain.ErrMalformedResponse, err)
	}

	var edit dto.Edit
	if err := dto.Decode(payload, &edit); err != nil {
		return domain.EditCommand{}, err
	}
	return edit.ToCommand(), nil
}

func joinMentions(mentions []domain.Mention) string {
	parts := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if s := strings.TrimSpace(m.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func mentionsName(content, name string) bool {
	key := domain.NormalizeName(name)
	if key == "" {
		return false
	}
	return strings.Contains(domain.NormalizeName(content), key)
}

func chunkString(s string, size int) []string {
	if len(s) <= size {
		return []string{s}
	}
	var chunks []string
	for len(s) > size {
		cut := boundary(s, size)
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:boundary(s, max)]
}

// boundary backs a byte offset off to the nearest rune start. Invalid
// UTF-8 falls back to the byte offset itself.
func boundary(s string, offset int) int {
	cut := offset
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return offset
	}
	return cut
}
