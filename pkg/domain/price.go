package domain

import (
	"regexp"
	"strings"
)

// PriceTier is the ordered four-tier price classification. The zero value
// means the price is unknown, which renders as an empty string.
type PriceTier int

const (
	PriceUnknown  PriceTier = iota
	PriceBudget             // $
	PriceModerate           // $$
	PriceUpscale            // $$$
	PriceLuxury             // $$$$
)

func (p PriceTier) String() string {
	if p < PriceBudget || p > PriceLuxury {
		return ""
	}
	return strings.Repeat("$", int(p))
}

var dollarRuns = regexp.MustCompile(`\${1,4}`)

// Word forms seen in collaborator output, checked most expensive first so
// "very expensive" does not stop at "expensive".
var priceWords = []struct {
	words []string
	tier  PriceTier
}{
	{[]string{"very expensive", "fine dining", "splurge", "luxury"}, PriceLuxury},
	{[]string{"expensive", "upscale", "pricey"}, PriceUpscale},
	{[]string{"moderate", "mid-range", "reasonable"}, PriceModerate},
	{[]string{"cheap", "budget", "inexpensive", "affordable"}, PriceBudget},
}

// ParsePriceTier normalizes a raw price string from a collaborator into a
// tier. Ranges like "$$$-$$$$" or "$$$ to $$$$" resolve to the higher bound.
// Unrecognized input yields PriceUnknown rather than an error: a missing
// price never blocks a candidate.
func ParsePriceTier(raw string) PriceTier {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PriceUnknown
	}

	// Any $ run present wins, longest (most expensive) first. This covers
	// direct values, hyphen and en-dash ranges, "to" ranges, and prices
	// embedded in prose.
	if runs := dollarRuns.FindAllString(s, -1); len(runs) > 0 {
		longest := ""
		for _, r := range runs {
			if len(r) > len(longest) {
				longest = r
			}
		}
		return PriceTier(len(longest))
	}

	lower := strings.ToLower(s)
	for _, pw := range priceWords {
		for _, w := range pw.words {
			if strings.Contains(lower, w) {
				return pw.tier
			}
		}
	}

	return PriceUnknown
}
