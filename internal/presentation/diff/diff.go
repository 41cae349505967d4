// Package diff renders line-oriented diffs between two snapshots of the
// curated restaurant list. The chat flow only ever describes changes in
// prose; this package gives the CLI admin surfaces an exact before/after
// view, for example when comparing the live list against a CSV backup.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Line is one row of a rendered diff.
type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Lines computes a line-level diff between two texts. The diff runs over
// whole lines, not characters, so a changed entry shows up as one removal
// plus one addition instead of intra-line noise.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine := 1
	newLine := 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// Render prints lines in unified style: two-column gutter with "+", "-" or
// blank, then the text.
func Render(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		switch l.Type {
		case LineAdded:
			b.WriteString("+ ")
		case LineRemoved:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Snapshot flattens list entries into a canonical one-line-per-entry text.
// Entries are ordered by normalized name and fields are rendered in a fixed
// shape, so two snapshots differ only where the lists actually differ.
func Snapshot(entries []domain.ListEntry) string {
	sorted := make([]domain.ListEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return domain.NormalizeName(sorted[i].Name) < domain.NormalizeName(sorted[j].Name)
	})

	var b strings.Builder
	for _, e := range sorted {
		b.WriteString(e.Name)
		if e.Cuisine != "" {
			b.WriteString(" | " + e.Cuisine)
		}
		if p := e.Price.String(); p != "" {
			b.WriteString(" | " + p)
		}
		if score, ok := e.OverallScore(); ok {
			b.WriteString(fmt.Sprintf(" | %.1f", score))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Entries diffs two list snapshots and renders the result. Identical
// snapshots produce all-context output; Changed reports whether anything
// was added or removed.
func Entries(before, after []domain.ListEntry) (string, bool) {
	lines := Lines(Snapshot(before), Snapshot(after))
	changed := false
	for _, l := range lines {
		if l.Type != LineContext {
			changed = true
			break
		}
	}
	return Render(lines), changed
}
