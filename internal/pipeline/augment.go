package pipeline

import (
	"fmt"
	"maps"
	"strings"

	"pepco/internal"
	"pepco/internal/classify"
	"pepco/internal/describe"
	"pepco/internal/pricing"
	"pepco/internal/selection"
)

// Augmentation is everything the operator and the reference tables add to
// assembled records.
type Augmentation struct {
	Tables      *classify.Tables
	Selections  selection.Selections
	Translation *internal.TranslationRow
	Materials   []internal.MaterialRow
	Ladder      pricing.Ladder
}

// Augment returns new records carrying the washing code, cotton flag,
// description and prices. The input records are not modified. A price that
// cannot be resolved is returned as the error together with usable records
// that have no price columns.
func Augment(records []internal.LineItemRecord, a Augmentation) ([]internal.LineItemRecord, []internal.Warning, error) {
	tables := a.Tables
	if tables == nil {
		tables = classify.Default()
	}
	var warnings []internal.Warning

	washKey := strings.TrimSpace(a.Selections.WashingCode)
	if washKey == "" {
		washKey = tables.DefaultWashingCode
	}
	washing, ok := tables.WashingLabel(washKey)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown washing code %q", selection.ErrInvalidSelection, washKey)
	}

	var description string
	if a.Translation == nil {
		warnings = append(warnings, internal.Warning{
			Code:    internal.WarnNoTranslation,
			Message: fmt.Sprintf("no translation row for %q / %q", a.Selections.Department, a.Selections.Product),
		})
	} else {
		materials := describe.BuildMaterialText(a.Selections.ValidMaterials(), a.Materials)
		res := describe.Compose(a.Selections.Product, *a.Translation, materials)
		description = res.Text
		if len(res.Fallbacks) > 0 {
			warnings = append(warnings, internal.Warning{
				Code:    internal.WarnNoTranslation,
				Message: "product name used for " + strings.Join(res.Fallbacks, ", "),
			})
		}
	}

	prices, priceErr := resolvePrices(a.Selections, a.Ladder)
	if priceErr != nil {
		warnings = append(warnings, internal.Warning{Code: internal.WarnPriceLookup, Message: priceErr.Error()})
	}

	cotton := a.Selections.CottonFlag()
	out := make([]internal.LineItemRecord, 0, len(records))
	for _, r := range records {
		r = r.Clone()
		r.WashingCode = washing
		r.Cotton = cotton
		r.Description = description
		if prices != nil {
			r.Prices = maps.Clone(prices)
		}
		out = append(out, r)
	}
	return out, warnings, priceErr
}

func resolvePrices(s selection.Selections, ladder pricing.Ladder) (map[string]string, error) {
	value, ok, err := s.ParsedPrice()
	if err != nil || !ok {
		return nil, err
	}
	siblings, err := ladder.Resolve(pricing.SourceCurrency, value)
	if err != nil {
		return nil, err
	}
	siblings[pricing.SourceCurrency] = pricing.Format(value, pricing.SourceCurrency)
	return siblings, nil
}
