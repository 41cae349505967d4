// Package approval implements the decision grammar for the suspend point:
// deterministic, case-insensitive, whitespace-tolerant parsing of a user
// response into a full approval, partial approval, rejection, or detail
// request. Parsing is pure; clarification counting and fail-closed rejection
// belong to the engine.
package approval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tablescout/tablescout/pkg/domain"
)

// Token sets matched against the whole trimmed, lowercased input.
var (
	affirmatives = []string{"yes", "y", "approve", "looks good", "add all", "add them", "ok"}
	negatives    = []string{"no", "n", "cancel", "skip", "don't add", "nope"}

	// Continuation tokens for the error-reported prompt ("try again or
	// cancel"). Affirmative means retry the whole run.
	retryTokens     = []string{"yes", "y", "retry", "try again", "ok"}
	terminateTokens = []string{"no", "n", "cancel", "stop", "terminate"}
)

var numberPattern = regexp.MustCompile(`\d+`)

// Parse resolves a raw approval response against a proposal of size items.
//
// Errors wrap domain.ErrIndexOutOfRange when a referenced index does not
// exist, and domain.ErrApprovalParse when the input matches no pattern. Both
// re-prompt at the suspend point; only the latter counts toward the
// fail-closed clarification limit.
func Parse(raw string, size int) (domain.Decision, error) {
	input := strings.ToLower(strings.TrimSpace(raw))

	if matchesToken(input, affirmatives) {
		return domain.Decision{Kind: domain.DecisionFull}, nil
	}
	if matchesToken(input, negatives) {
		return domain.Decision{Kind: domain.DecisionReject}, nil
	}

	// Partial approval: add-intent plus 1-based indices ("add 1, 3 and 5").
	if strings.Contains(input, "add") {
		if indices := extractNumbers(input); len(indices) > 0 {
			indices = dedupe(indices)
			for _, idx := range indices {
				if idx < 1 || idx > size {
					return domain.Decision{}, fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, idx, size)
				}
			}
			return domain.Decision{Kind: domain.DecisionPartial, Indices: indices}, nil
		}
	}

	// Detail request: "more"/"tell me" with an index, or a bare index.
	if strings.Contains(input, "more") || strings.Contains(input, "tell me") {
		if indices := extractNumbers(input); len(indices) > 0 {
			return detail(indices[0], size)
		}
	}
	if idx, err := strconv.Atoi(input); err == nil {
		return detail(idx, size)
	}

	return domain.Decision{}, fmt.Errorf("%w: %q", domain.ErrApprovalParse, raw)
}

// ParseContinuation resolves the retry/terminate choice offered by an error
// report. retry is true for an affirmative answer.
func ParseContinuation(raw string) (bool, error) {
	input := strings.ToLower(strings.TrimSpace(raw))

	if matchesToken(input, retryTokens) {
		return true, nil
	}
	if matchesToken(input, terminateTokens) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", domain.ErrApprovalParse, raw)
}

func detail(idx, size int) (domain.Decision, error) {
	if idx < 1 || idx > size {
		return domain.Decision{}, fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, idx, size)
	}
	return domain.Decision{Kind: domain.DecisionDetail, Index: idx}, nil
}

func matchesToken(input string, tokens []string) bool {
	for _, t := range tokens {
		if input == t {
			return true
		}
	}
	return false
}

func extractNumbers(s string) []int {
	matches := numberPattern.FindAllString(s, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func dedupe(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := in[:0]
	for _, n := range in {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
