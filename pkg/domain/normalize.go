package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// NormalizeName produces the canonical comparison key for a restaurant name:
// NFKC-normalized, case-folded, trimmed, inner whitespace collapsed. Dedup
// and the addition-set difference both key on this value.
func NormalizeName(name string) string {
	s := norm.NFKC.String(name)
	s = foldCaser.String(s)
	return strings.Join(strings.Fields(s), " ")
}
