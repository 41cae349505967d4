package workflow

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Reply texts. These are the conversational surface of the engine; adapters
// hand them to the user verbatim, so changing one changes the product.
const (
	msgNothingNew = "I didn't find any new restaurants to add. Your list is up to date!"

	msgCancelled  = "Update cancelled."
	msgTerminated = "Discovery cancelled."

	msgClarifyIntent = "I didn't understand that request. Try 'Find new restaurants', 'Show me my current list', or 'Remove [Restaurant Name] from my list'."

	msgClarifyDecision = "I didn't understand that. Please respond with:\n" +
		"  - 'Yes' or 'Approve' to add all\n" +
		"  - 'Add 1, 3, 5' to add specific restaurants\n" +
		"  - 'No' or 'Cancel' to skip"

	msgClarifyContinuation = "I didn't understand that. Please respond with 'Retry' to try the discovery again, or 'Cancel' to stop."

	msgEditUpdateUnsupported = "Update functionality is not supported yet."
	msgEditAddUnsupported    = "Manual add functionality is not supported yet."
	msgEditUnparsed          = "I didn't understand that command. Try 'Remove [Restaurant Name]' or 'Find new restaurants'."
	msgRemoveUnsupported     = "Your restaurant list does not support removing entries."

	msgListEmpty = "Your restaurant list is empty."
)

// renderProposal formats the addition set in presentation order. Pure: same
// additions, same text, no clock or store access.
func renderProposal(additions []domain.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d new restaurant%s for your list:\n\n", len(additions), pluralS(len(additions)))
	b.WriteString("NEW RESTAURANTS:\n")

	for i, c := range additions {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", c.Description)
		}
		if overall, ok := c.OverallScore(); ok {
			fmt.Fprintf(&b, "   Overall Priority Rank: %s/5.0\n", formatScore(overall))
		} else {
			// No source scored it. The rank line still appears so every
			// proposal item has the same shape.
			b.WriteString("   Overall Priority Rank: unrated\n")
		}
		if c.Justification != "" {
			fmt.Fprintf(&b, "   Priority Reasons: %s\n", c.Justification)
		}
		fmt.Fprintf(&b, "   Cuisine: %s | Price: %s\n", orUnknown(c.Cuisine), orUnknown(c.Price.String()))
	}

	b.WriteString("\n\nWould you like to add these restaurants to your list?")
	return b.String()
}

// renderDetail expands one proposal item. The per-source score block is
// sorted by source so the output is deterministic.
func renderDetail(c *domain.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** - Additional Details:\n\n", c.Name)
	fmt.Fprintf(&b, "Description: %s\n\n", orUnknown(c.Description))

	if overall, ok := c.OverallScore(); ok {
		fmt.Fprintf(&b, "Priority Rank: %s/5.0\n", formatScore(overall))
		if c.Justification != "" {
			fmt.Fprintf(&b, "Priority Reasons: %s\n", c.Justification)
		}
		if len(c.Scores) > 0 {
			b.WriteString("Source Scores:\n")
			for _, src := range sortedSources(c.Scores) {
				fmt.Fprintf(&b, "  %s: %s/5.0\n", src, formatScore(c.Scores[src]))
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Cuisine: %s\n", orUnknown(c.Cuisine))
	fmt.Fprintf(&b, "Price Range: %s\n", orUnknown(c.Price.String()))
	fmt.Fprintf(&b, "Booking: %s", orUnknown(c.BookingURL))
	return b.String()
}

// renderList formats the curated list, newest additions first.
func renderList(entries []domain.ListEntry) string {
	if len(entries) == 0 {
		return msgListEmpty
	}

	sorted := append([]domain.ListEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AddedAt.After(sorted[j].AddedAt)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Your restaurant list has %d restaurant%s:\n", len(sorted), pluralS(len(sorted)))
	for i, entry := range sorted {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, entry.Name)
		if overall, ok := entry.OverallScore(); ok {
			fmt.Fprintf(&b, "   Overall Priority Rank: %s/5.0\n", formatScore(overall))
		}
		fmt.Fprintf(&b, "   Cuisine: %s | Price: %s\n", orUnknown(entry.Cuisine), orUnknown(entry.Price.String()))
	}
	return b.String()
}

// renderErrorReport pairs the plain-language summary with the technical
// error listing. Both always appear; neither substitutes for the other.
func renderErrorReport(summary string, reports []domain.ErrorReport) string {
	lines := make([]string, 0, len(reports))
	for _, r := range reports {
		lines = append(lines, r.String())
	}
	return fmt.Sprintf("I encountered an error during restaurant discovery.\n\n"+
		"**What happened:** %s\n\n"+
		"**Technical Details:**\n%s\n\n"+
		"Would you like me to try again or cancel this discovery?",
		summary, strings.Join(lines, "\n"))
}

func renderApplied(added int) string {
	return fmt.Sprintf("Successfully updated your restaurant list! Added %d restaurant%s.", added, pluralS(added))
}

func renderOutOfRange(size int) string {
	return fmt.Sprintf("That refers to an item that isn't in the proposal. Please use numbers between 1 and %d.", size)
}

func renderRemovePrompt(name string) string {
	return fmt.Sprintf("Remove %s from your list?", name)
}

func renderRemoved(name string) string {
	return fmt.Sprintf("Removed %s from your list.", name)
}

func renderEditNotFound(name string) string {
	return fmt.Sprintf("I couldn't find '%s' in your list.", name)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func sortedSources(scores map[domain.SourceID]float64) []domain.SourceID {
	out := make([]domain.SourceID, 0, len(scores))
	for src := range scores {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
