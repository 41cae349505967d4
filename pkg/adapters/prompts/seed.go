package prompts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"

	"github.com/tablescout/tablescout/internal/dto"
)

// Seed scaffolds the default prompt documents into dir. Existing documents
// are left alone so edited prompts survive re-running init.
func Seed(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create prompt dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve prompt dir: %w", err)
	}

	repo, err := loam.Init(abs, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("open prompt repository: %w", err)
	}
	typed := loam.NewTypedRepository[dto.PromptMetadata](repo)

	ctx := context.Background()
	for _, doc := range defaultDocuments() {
		if _, err := os.Stat(filepath.Join(abs, doc.ID+".md")); err == nil {
			continue
		}
		if err := typed.Save(ctx, &doc); err != nil {
			return fmt.Errorf("seed prompt %q: %w", doc.ID, err)
		}
	}
	return nil
}

func defaultDocuments() []loam.DocumentModel[dto.PromptMetadata] {
	return []loam.DocumentModel[dto.PromptMetadata]{
		{
			ID:      Extraction,
			Content: extractionTemplate,
			Data: dto.PromptMetadata{
				Name:        "Restaurant extraction",
				Kind:        "extraction",
				Description: "Pulls featured restaurants out of one source's raw content.",
				System: "You are a restaurant data extraction assistant. You parse web content " +
					"from authoritative food publications and extract structured information " +
					"about the restaurants they feature.",
				Response: map[string]string{
					"restaurant_name":   "string",
					"brief_description": "string?",
					"cuisine_type":      "string?",
					"price_range":       "string?",
					"booking_website":   "string?",
				},
			},
		},
		{
			ID:      Ranking,
			Content: rankingTemplate,
			Data: dto.PromptMetadata{
				Name:        "Source ranking",
				Kind:        "ranking",
				Description: "Scores how prominently one source features one restaurant.",
				System: "You are a restaurant ranking assistant. You judge how prominently a " +
					"publication features a restaurant, using only the content you are given.",
				Response: map[string]string{
					"score":         "float[1,5]",
					"justification": "string?",
				},
			},
		},
		{
			ID:      EditCommand,
			Content: editCommandTemplate,
			Data: dto.PromptMetadata{
				Name:        "Edit command parser",
				Kind:        "edit",
				Description: "Parses a conversational list edit into a structured action.",
				System: "You are a command parser for restaurant list management. Parse user " +
					"requests into structured actions.",
				Response: map[string]string{
					"action":          "enum(remove|update|add|unknown)",
					"restaurant_name": "string?",
					"field":           "string?",
					"new_value":       "string?",
				},
			},
		},
	}
}

const extractionTemplate = `I found content from {{ .Source }}. Extract the restaurants that are PRIMARY FEATURED ENTRIES in this content.

GUIDELINES:
- Location: {{ .Location }} area, including nearby suburbs.
- Only extract restaurants with their own dedicated write-up: a heading, a description, address or booking details.
- Include restaurants of any price range; filtering happens later.
- Do NOT extract restaurants merely mentioned inside another entry ("same owner as X", "sister restaurant to Y"), in related links, or in notes about what was added or removed from the list.

SOURCE CONTENT:
{{ .Content }}

For each featured restaurant provide:

1. restaurant_name: the official name.
2. brief_description: one to three sentences from the article.
3. cuisine_type: for example Italian, French, Japanese.
4. price_range: one of $, $$, $$$, $$$$ by typical per-person dinner cost with one drink. Under $25 is $, $25-50 is $$, $50-100 is $$$, over $100 is $$$$. Tasting menus, omakase and fine dining are $$$$; casual neighborhood spots are $$; counter service is $. Use "" if truly unknown.
5. booking_website: URL if mentioned, otherwise "".

Respond in JSON with this exact structure:
{"restaurants": [{"restaurant_name": "...", "brief_description": "...", "cuisine_type": "...", "price_range": "$$$", "booking_website": "https://..."}]}

If no restaurants meet the criteria, respond {"restaurants": []}.
`

const rankingTemplate = `How prominently does {{ .Source }} feature this restaurant?

RESTAURANT:
Name: {{ .Name }}
Description: {{ .Description }}

SOURCE CONTENT:
{{ .Content }}

Score from 1.0 to 5.0, considering position in the list, awards and honors, language intensity, and prominence of placement:
- 5.0: exceptional. Top three placement, starred, "best in city", lead feature.
- 4.0: excellent. Top ten, "essential", prominently featured with strong praise.
- 3.0: very good. Featured with a positive write-up.
- 2.0: good. Included but not a standout, brief write-up.
- 1.0: mentioned. Minimal endorsement or filler entry.

Respond in JSON:
{"score": 4.5, "justification": "one brief sentence on placement and prominence"}
`

const editCommandTemplate = `Parse this user command into a structured action:

USER COMMAND: "{{ .Command }}"

Possible actions:
- "remove": the user wants to remove a restaurant from the list.
- "update": the user wants to change a restaurant's details.
- "add": the user wants to manually add a restaurant.
- "unknown": none of the above.

Extract the action, the restaurant name if mentioned, the field to update if applicable (for example brief_description or priority_rank), and the new value if applicable.

Respond in JSON:
{"action": "remove", "restaurant_name": "Restaurant X", "field": null, "new_value": null}
`
