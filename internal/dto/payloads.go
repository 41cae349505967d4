// Package dto carries the wire shapes exchanged with model-backed
// collaborators and prompt documents. The structs use mapstructure tags so
// decoded JSON and YAML front matter share one set of field names, which is
// also the set pkg/schema validates.
package dto

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/tablescout/tablescout/pkg/domain"
)

// ExtractionItem is one restaurant as returned by the extraction prompt.
type ExtractionItem struct {
	Name        string `json:"restaurant_name" mapstructure:"restaurant_name"`
	BookingURL  string `json:"booking_website" mapstructure:"booking_website"`
	Description string `json:"brief_description" mapstructure:"brief_description"`
	Cuisine     string `json:"cuisine_type" mapstructure:"cuisine_type"`
	PriceRange  string `json:"price_range" mapstructure:"price_range"`
}

// ToCandidate converts the wire shape into a domain candidate, normalizing
// the free-text price into a tier.
func (d ExtractionItem) ToCandidate() domain.Candidate {
	return domain.Candidate{
		Name:        strings.TrimSpace(d.Name),
		BookingURL:  strings.TrimSpace(d.BookingURL),
		Description: strings.TrimSpace(d.Description),
		Cuisine:     strings.TrimSpace(d.Cuisine),
		Price:       domain.ParsePriceTier(d.PriceRange),
	}
}

// Ranking is the ranking prompt's response for one candidate and source.
type Ranking struct {
	Score         float64 `json:"score" mapstructure:"score"`
	Justification string  `json:"justification" mapstructure:"justification"`
}

// Edit is the edit prompt's parse of a conversational edit command.
type Edit struct {
	Action   string `json:"action" mapstructure:"action"`
	Name     string `json:"restaurant_name" mapstructure:"restaurant_name"`
	Field    string `json:"field" mapstructure:"field"`
	NewValue string `json:"new_value" mapstructure:"new_value"`
}

// ToCommand converts the wire shape into a domain edit command. Unrecognized
// actions map to EditUnknown; the flow clarifies rather than guesses.
func (d Edit) ToCommand() domain.EditCommand {
	cmd := domain.EditCommand{
		Name:     strings.TrimSpace(d.Name),
		Field:    strings.TrimSpace(d.Field),
		NewValue: d.NewValue,
	}
	switch strings.ToLower(strings.TrimSpace(d.Action)) {
	case "remove":
		cmd.Action = domain.EditRemove
	case "update":
		cmd.Action = domain.EditUpdate
	case "add":
		cmd.Action = domain.EditAdd
	default:
		cmd.Action = domain.EditUnknown
	}
	return cmd
}

// PromptMetadata is the YAML front matter of a prompt document.
type PromptMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Kind        string `json:"kind" mapstructure:"kind"`
	Description string `json:"description" mapstructure:"description"`

	// Model parameters forwarded with the completion request. Empty values
	// fall back to the client's defaults.
	Model       string  `json:"model,omitempty" mapstructure:"model"`
	System      string  `json:"system,omitempty" mapstructure:"system"`
	Temperature float64 `json:"temperature,omitempty" mapstructure:"temperature"`

	// Response declares the expected payload shape as field -> type
	// declaration (see pkg/schema.ParseTypeMap).
	Response map[string]string `json:"response" mapstructure:"response"`
}

// Decode maps a raw payload into a DTO. Decoding is strict about types:
// weak typing would let a string "4.5" pass where the schema demands a
// number, hiding malformed responses.
func Decode(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}
