// Package prompts loads prompt documents from a Loam repository.
//
// A prompt document is a markdown file with YAML front matter. The body is
// a text/template rendered against call-site variables; the front matter
// carries the document's kind, optional model parameters, and the expected
// response shape as type declarations (see pkg/schema.ParseTypeMap).
// Documents are read-only at runtime: tablescout init scaffolds them,
// tablescout validate checks them.
package prompts

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/tablescout/tablescout/internal/dto"
	"github.com/tablescout/tablescout/pkg/schema"
)

// Document identifiers the evaluator depends on.
const (
	// Extraction turns one source's raw content into structured candidates.
	Extraction = "extraction"
	// Ranking scores one candidate for one source.
	Ranking = "ranking"
	// EditCommand parses a conversational edit into a structured action.
	EditCommand = "edit-command"
)

// Required returns the document IDs every prompt directory must provide.
func Required() []string {
	return []string{Extraction, Ranking, EditCommand}
}

// Prompt is a parsed prompt document.
type Prompt struct {
	// ID is the document identifier (file name without extension).
	ID string
	// Name is a human-readable title; defaults to the ID.
	Name string
	// Kind groups documents by role: extraction, ranking, edit.
	Kind string
	// Description says what the prompt is for.
	Description string

	// Model, System and Temperature are forwarded with the completion
	// request. Zero values fall back to the client's defaults.
	Model       string
	System      string
	Temperature float64

	// Schema validates the collaborator's JSON payload. Nil when the
	// document declares no response shape.
	Schema schema.Schema

	// Template is the raw document body.
	Template string

	tmpl *template.Template
}

// Render executes the document body against vars. Referencing a variable
// the caller did not supply is an error, not an empty substitution.
func (p *Prompt) Render(vars map[string]any) (string, error) {
	var buf strings.Builder
	if err := p.tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", p.ID, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func build(id string, meta dto.PromptMetadata, content string) (*Prompt, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("empty document body")
	}
	if meta.Kind == "" {
		return nil, errors.New("front matter missing kind")
	}

	var respSchema schema.Schema
	if len(meta.Response) > 0 {
		parsed, err := schema.ParseTypeMap(meta.Response)
		if err != nil {
			return nil, fmt.Errorf("response schema: %w", err)
		}
		respSchema = parsed
	}

	tmpl, err := template.New(id).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	name := meta.Name
	if name == "" {
		name = id
	}

	return &Prompt{
		ID:          id,
		Name:        name,
		Kind:        meta.Kind,
		Description: meta.Description,
		Model:       meta.Model,
		System:      meta.System,
		Temperature: meta.Temperature,
		Schema:      respSchema,
		Template:    content,
		tmpl:        tmpl,
	}, nil
}
