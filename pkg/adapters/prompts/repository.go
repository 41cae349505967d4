package prompts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/loam"

	"github.com/tablescout/tablescout/internal/dto"
)

// Repository reads prompt documents from a directory through Loam. The
// repository is opened read-only and strict; parsed prompts are memoized,
// so front matter edits require a reopen.
type Repository struct {
	dir  string
	docs *loam.TypedRepository[dto.PromptMetadata]

	mu    sync.RWMutex
	cache map[string]*Prompt
}

// Open initializes a read-only prompt repository rooted at dir.
func Open(dir string) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt dir: %w", err)
	}

	repo, err := loam.Init(abs, loam.WithStrict(true), loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("open prompt repository: %w", err)
	}

	return &Repository{
		dir:   abs,
		docs:  loam.NewTypedRepository[dto.PromptMetadata](repo),
		cache: make(map[string]*Prompt),
	}, nil
}

// Dir returns the repository's absolute root.
func (r *Repository) Dir() string { return r.dir }

// Get loads and parses one prompt document.
func (r *Repository) Get(ctx context.Context, id string) (*Prompt, error) {
	r.mu.RLock()
	cached, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	doc, err := r.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", id, err)
	}

	prompt, err := build(trimExtension(doc.ID), doc.Data, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", id, err)
	}

	r.mu.Lock()
	r.cache[id] = prompt
	r.mu.Unlock()
	return prompt, nil
}

// List parses every document in the repository, sorted by ID.
func (r *Repository) List(ctx context.Context) ([]*Prompt, error) {
	docs, err := r.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	out := make([]*Prompt, 0, len(docs))
	for _, doc := range docs {
		prompt, err := build(trimExtension(doc.ID), doc.Data, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", doc.ID, err)
		}
		out = append(out, prompt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Validate checks that every required document is present and well formed.
// All problems are reported together, not just the first.
func (r *Repository) Validate(ctx context.Context) error {
	var errs []error
	for _, id := range Required() {
		if _, err := r.Get(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
