package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pepco/internal"
	"pepco/internal/util"
)

var colourSkipKeywords = []string{
	"PURCHASE", "COLOUR", "TOTAL", "PANTONE", "SUPPLIER", "PRICE",
	"ORDERED", "SIZES", "TPG", "TPX", "USD", "NIP", "PEPCO",
	"Poland", "ul. Strzeszyńska 73A, 60-479 Poznań", "NIP 782-21-31-157",
}

var (
	reNumericLine   = regexp.MustCompile(`^[\d\s,./-]+$`)
	reColourStrip   = regexp.MustCompile(`[\d.)(]+`)
	colourUpper     = cases.Upper(language.Und)
	colourAmbiguous = []string{"MANUAL"}
)

// ColourStrategy is one tier of the colour cascade. It returns the colour
// and the 1-indexed page it came from.
type ColourStrategy struct {
	Name    string
	Resolve func(pages internal.PageText) (string, int, bool)
}

// pageTier scans the pages accepted by match, in order, with the
// single-page heuristic.
func pageTier(name string, match func(upper string) bool) ColourStrategy {
	return ColourStrategy{
		Name: name,
		Resolve: func(pages internal.PageText) (string, int, bool) {
			for i, text := range pages {
				if !match(strings.ToUpper(text)) {
					continue
				}
				if c, ok := ColourFromPage(text); ok {
					return c, i + 1, true
				}
			}
			return "", 0, false
		},
	}
}

// DefaultColourStrategies is the cascade order. The first tier that
// resolves wins.
var DefaultColourStrategies = []ColourStrategy{
	pageTier("total-ordered-quantity", func(u string) bool {
		return strings.Contains(u, "TOTAL ORDERED QUANTITY")
	}),
	pageTier("purchase-price-colour", func(u string) bool {
		return strings.Contains(u, "PURCHASE PRICE") && strings.Contains(u, "COLOUR")
	}),
	pageTier("any-page", func(string) bool { return true }),
}

type ColourResult struct {
	Colour string
	Tier   string
	Page   int
}

func (r ColourResult) Resolved() bool {
	return internal.Resolved(r.Colour)
}

// ResolveColour runs the strategies in order. When none succeeds the
// colour is Unresolved and the caller has to ask for it.
func ResolveColour(pages internal.PageText, strategies []ColourStrategy) ColourResult {
	for _, s := range strategies {
		if c, page, ok := s.Resolve(pages); ok {
			return ColourResult{Colour: c, Tier: s.Name, Page: page}
		}
	}
	return ColourResult{Colour: internal.Unresolved}
}

// ColourFromPage takes the first line that is neither a table keyword line
// nor purely numeric, strips digits and brackets and upper-cases it.
func ColourFromPage(text string) (string, bool) {
	for _, line := range util.SplitLines(text) {
		if util.ContainsAnyFold(line, colourSkipKeywords) || reNumericLine.MatchString(line) {
			continue
		}
		colour := strings.TrimSpace(reColourStrip.ReplaceAllString(line, ""))
		colour = util.NormalizeSpaces(colourUpper.String(colour))
		if colour == "" || colour == internal.Unresolved {
			return "", false
		}
		for _, token := range colourAmbiguous {
			if strings.Contains(colour, token) {
				return "", false
			}
		}
		return colour, true
	}
	return "", false
}
