package domain

import (
	"strings"
	"unicode"
)

// Intent is the classified purpose of a user utterance. The set is closed:
// anything outside it degrades to a clarification request, never an error.
type Intent string

const (
	IntentUnknown  Intent = ""
	IntentDiscover Intent = "discover"
	IntentEdit     Intent = "edit"
	IntentView     Intent = "view"
)

// Keyword tables for intent classification. Matching is per word, not per
// substring, so "renew" does not read as "new". Earlier tables win on conflict.
var (
	discoverKeywords = []string{"find", "discover", "search", "new", "update"}
	editKeywords     = []string{"remove", "delete", "edit", "change"}
	viewKeywords     = []string{"show", "view", "list"}
)

// ClassifyIntent resolves an utterance against the closed intent set.
// ok is false when no keyword matches; the caller should ask for
// clarification without advancing any state.
func ClassifyIntent(utterance string) (Intent, bool) {
	words := tokenize(utterance)
	if containsAny(words, discoverKeywords) {
		return IntentDiscover, true
	}
	if containsAny(words, editKeywords) {
		return IntentEdit, true
	}
	if containsAny(words, viewKeywords) {
		return IntentView, true
	}
	return IntentUnknown, false
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return words
}

func containsAny(words map[string]struct{}, keywords []string) bool {
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return true
		}
	}
	return false
}
