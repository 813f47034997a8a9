package pipeline

import (
	"fmt"
	"regexp"

	"pepco/internal"
	"pepco/internal/util"
)

var (
	reSKU           = regexp.MustCompile(`\b\d{8}\b`)
	reBarcode       = regexp.MustCompile(`\b\d{13}\b`)
	reCartonBarcode = regexp.MustCompile(`barcode:\s*(\d{13})`)
)

type Correlation struct {
	SKUs     []string
	Barcodes []string
	Excluded []string
	Pairs    []internal.IdentifierPair
	Warning  *internal.Warning
}

// CorrelateIdentifiers collects SKUs and item barcodes from every page,
// removes carton barcodes and pairs the survivors by position. When the
// counts differ both lists are cut to the shorter one.
func CorrelateIdentifiers(pages internal.PageText) (Correlation, error) {
	var skus, barcodes, excluded []string
	for _, text := range pages {
		skus = append(skus, reSKU.FindAllString(text, -1)...)
		barcodes = append(barcodes, reBarcode.FindAllString(text, -1)...)
		for _, m := range reCartonBarcode.FindAllStringSubmatch(text, -1) {
			excluded = append(excluded, m[1])
		}
	}

	c := Correlation{SKUs: util.Dedupe(skus), Excluded: util.Dedupe(excluded)}
	skip := make(map[string]bool, len(c.Excluded))
	for _, b := range c.Excluded {
		skip[b] = true
	}
	for _, b := range util.Dedupe(barcodes) {
		if !skip[b] {
			c.Barcodes = append(c.Barcodes, b)
		}
	}

	if len(c.SKUs) == 0 || len(c.Barcodes) == 0 {
		return c, fmt.Errorf("%w: skus=%d barcodes=%d", ErrNoIdentifiers, len(c.SKUs), len(c.Barcodes))
	}

	n := min(len(c.SKUs), len(c.Barcodes))
	if len(c.SKUs) != len(c.Barcodes) {
		c.Warning = &internal.Warning{
			Code:    internal.WarnCountMismatch,
			Message: fmt.Sprintf("SKU (%d) and barcode (%d) counts differ. Using first %d pairs.", len(c.SKUs), len(c.Barcodes), n),
		}
	}
	c.Pairs = make([]internal.IdentifierPair, 0, n)
	for i := 0; i < n; i++ {
		c.Pairs = append(c.Pairs, internal.IdentifierPair{SKU: c.SKUs[i], Barcode: c.Barcodes[i]})
	}
	return c, nil
}
