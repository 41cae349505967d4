package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablescout/tablescout/pkg/domain"
)

func TestPrintEntriesPlainASCII(t *testing.T) {
	scored := domain.ListEntry{Candidate: domain.Candidate{
		Name:        "Maydan",
		Cuisine:     "Middle Eastern",
		Price:       domain.PriceUpscale,
		Description: "Live-fire cooking around a central hearth.",
	}}
	scored.SetScore("eater-dc", 4.5)
	unscored := domain.ListEntry{Candidate: domain.Candidate{Name: "Unranked Spot"}}

	var buf bytes.Buffer
	printEntries(&buf, []domain.ListEntry{scored, unscored})

	out := buf.String()
	assert.Contains(t, out, "1. Maydan - Middle Eastern ($$$) - 4.5/5.0")
	assert.Contains(t, out, "2. Unranked Spot\n")
	// Terminal output stays plain ASCII.
	assert.NotContains(t, out, "\u2014")
}

func TestPrintEntriesEmptyList(t *testing.T) {
	var buf bytes.Buffer
	printEntries(&buf, nil)
	assert.Equal(t, "The list is empty.\n", buf.String())
}
