package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pepco/internal"
)

func TestColourFromPage(t *testing.T) {
	cases := map[string]struct {
		text string
		want string
		ok   bool
	}{
		"skips keyword lines": {"TOTAL ORDERED QUANTITY\nPantone 19-4024\nnavy blue\n", "NAVY BLUE", true},
		"strips digits":       {"COLOUR\n(2) Dark  Green 01\n", "DARK GREEN", true},
		"numeric only":        {"12 34\n5.00\n", "", false},
		"ambiguous":           {"Purchase price\nManual entry\n", "", false},
		"empty":               {"", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := ColourFromPage(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveColourTierOrder(t *testing.T) {
	pages := internal.PageText{
		"RED",
		"PURCHASE PRICE COLOUR\nBLUE",
		"TOTAL ORDERED QUANTITY\nGREEN",
	}
	res := ResolveColour(pages, DefaultColourStrategies)
	assert.Equal(t, "GREEN", res.Colour)
	assert.Equal(t, "total-ordered-quantity", res.Tier)
	assert.Equal(t, 3, res.Page)

	res = ResolveColour(pages[:2], DefaultColourStrategies)
	assert.Equal(t, "BLUE", res.Colour)
	assert.Equal(t, 2, res.Page)

	res = ResolveColour(pages[:1], DefaultColourStrategies)
	assert.Equal(t, "RED", res.Colour)
	assert.Equal(t, "any-page", res.Tier)
}

func TestResolveColourFallsThroughEmptyTier(t *testing.T) {
	pages := internal.PageText{
		"TOTAL ORDERED QUANTITY\n100 200",
		"PURCHASE PRICE COLOUR\nBEIGE",
	}
	res := ResolveColour(pages, DefaultColourStrategies)
	assert.Equal(t, "BEIGE", res.Colour)
	assert.Equal(t, "purchase-price-colour", res.Tier)
}

func TestResolveColourUnresolved(t *testing.T) {
	res := ResolveColour(internal.PageText{"TOTAL 12\n34"}, DefaultColourStrategies)
	assert.False(t, res.Resolved())
	assert.Equal(t, internal.Unresolved, res.Colour)
}
