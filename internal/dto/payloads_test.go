package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/tablescout/pkg/domain"
)

func TestExtractionItemToCandidate(t *testing.T) {
	item := ExtractionItem{
		Name:        "  Maydan ",
		BookingURL:  "https://maydandc.com",
		Description: "Live-fire cooking.",
		Cuisine:     "Middle Eastern",
		PriceRange:  "$$$-$$$$",
	}

	c := item.ToCandidate()
	assert.Equal(t, "Maydan", c.Name)
	assert.Equal(t, domain.PriceLuxury, c.Price, "ranges resolve to the higher bound")
	assert.Empty(t, c.Scores, "extraction never scores")
}

func TestEditToCommand(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   domain.EditAction
	}{
		{"remove", "remove", domain.EditRemove},
		{"case folded", "Remove", domain.EditRemove},
		{"update", "update", domain.EditUpdate},
		{"add", "add", domain.EditAdd},
		{"invented verb", "archive", domain.EditUnknown},
		{"empty", "", domain.EditUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Edit{Action: tt.action, Name: "Maydan"}.ToCommand()
			assert.Equal(t, tt.want, cmd.Action)
			assert.Equal(t, "Maydan", cmd.Name)
		})
	}
}

func TestDecodeRanking(t *testing.T) {
	raw := map[string]any{"score": 4.5, "justification": "praised across sources"}

	var r Ranking
	require.NoError(t, Decode(raw, &r))
	assert.Equal(t, 4.5, r.Score)
	assert.Equal(t, "praised across sources", r.Justification)
}

func TestDecodeRejectsWrongTypes(t *testing.T) {
	raw := map[string]any{"score": "4.5"}

	var r Ranking
	err := Decode(raw, &r)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestDecodePromptMetadata(t *testing.T) {
	raw := map[string]any{
		"name":        "ranking",
		"kind":        "rank",
		"description": "Scores one candidate against one source.",
		"response": map[string]any{
			"score":         "float",
			"justification": "string?",
		},
	}

	var meta PromptMetadata
	require.NoError(t, Decode(raw, &meta))
	assert.Equal(t, "rank", meta.Kind)
	assert.Equal(t, "string?", meta.Response["justification"])
}
