package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePriceTier(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want PriceTier
	}{
		{"direct single", "$", PriceBudget},
		{"direct double", "$$", PriceModerate},
		{"direct triple", "$$$", PriceUpscale},
		{"direct quad", "$$$$", PriceLuxury},
		{"hyphen range takes higher", "$$$-$$$$", PriceLuxury},
		{"spaced hyphen range", "$$$ - $$$$", PriceLuxury},
		{"en-dash range", "$$–$$$", PriceUpscale},
		{"to range", "$$$ to $$$$", PriceLuxury},
		{"embedded in prose", "around $$ per person", PriceModerate},
		{"word very expensive", "Very Expensive", PriceLuxury},
		{"word fine dining", "fine dining", PriceLuxury},
		{"word splurge", "a splurge", PriceLuxury},
		{"word luxury", "luxury", PriceLuxury},
		{"word expensive", "expensive", PriceUpscale},
		{"word upscale", "Upscale", PriceUpscale},
		{"word pricey", "pricey", PriceUpscale},
		{"word moderate", "moderate", PriceModerate},
		{"word mid-range", "mid-range", PriceModerate},
		{"word reasonable", "reasonable", PriceModerate},
		{"word cheap", "cheap", PriceBudget},
		{"word budget", "budget", PriceBudget},
		{"word inexpensive", "inexpensive", PriceBudget},
		{"word affordable", "affordable eats", PriceBudget},
		{"empty", "", PriceUnknown},
		{"whitespace", "   ", PriceUnknown},
		{"garbage", "call for pricing", PriceUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePriceTier(tc.raw))
		})
	}
}

func TestPriceTierString(t *testing.T) {
	assert.Equal(t, "", PriceUnknown.String())
	assert.Equal(t, "$", PriceBudget.String())
	assert.Equal(t, "$$$$", PriceLuxury.String())
	assert.Equal(t, "", PriceTier(9).String())
}
