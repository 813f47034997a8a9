package pipeline

import (
	"fmt"
	"strings"

	"pepco/internal"
	"pepco/internal/util"
)

const (
	batchPrefix    = "Data e prodhimit: "
	orderIDJoiner  = "+"
	styleUnknown   = "STYLE UNKNOWN"
	styleLabelTmpl = "STYLE %s • %s • Batch No./"
)

type AssembleOptions struct {
	// ExtraOrderIDs are companion order ids already joined with "+".
	ExtraOrderIDs string
	// Colour replaces the colour only when extraction left it Unresolved.
	Colour string
}

// ApplyColour returns doc with an operator-supplied colour when the
// extracted one is Unresolved.
func ApplyColour(doc internal.Document, colour string) internal.Document {
	colour = strings.ToUpper(strings.TrimSpace(colour))
	if colour == "" || internal.Resolved(doc.Colour) {
		return doc
	}
	doc.Colour = colour
	return doc
}

// Assemble builds one record per identifier pair. Document-level labels are
// computed once; every record gets its own copy.
func (e *Engine) Assemble(doc internal.Document, opts AssembleOptions) []internal.LineItemRecord {
	doc = ApplyColour(doc, opts.Colour)
	f := doc.Fields

	styleLabel := styleUnknown
	if internal.Resolved(f.Style) {
		styleLabel = fmt.Sprintf(styleLabelTmpl, f.Style, f.StyleSuffix)
	}

	base := internal.LineItemRecord{
		OrderID:             f.OrderID,
		Style:               f.Style,
		Colour:              doc.Colour,
		SupplierProductCode: f.SupplierCode,
		ItemClassification:  f.ItemClassification,
		SupplierName:        f.SupplierName,
		DateStamp:           e.now().Format("02-01-2006"),
		Collection:          e.tables.TagCollection(f.Collection, f.ItemClassification),
		StyleMerchSeason:    styleLabel,
		Batch:               batchPrefix + f.Batch,
		ItemNameEN:          f.ItemName,
		Season:              f.Season,
		Dept:                e.tables.DeptCode(f.ItemClassification),
		ItemName:            CleanItemName(f.ItemName),
	}

	records := make([]internal.LineItemRecord, 0, len(doc.Pairs))
	for _, p := range doc.Pairs {
		r := base.Clone()
		r.SKU = p.SKU
		r.Barcode = p.Barcode
		r.ColourSKU = fmt.Sprintf("%s • SKU %s", doc.Colour, p.SKU)
		records = append(records, r)
	}
	return MergeOrderIDs(records, opts.ExtraOrderIDs)
}

// MergeOrderIDs appends companion order ids to every record's order id.
func MergeOrderIDs(records []internal.LineItemRecord, extra string) []internal.LineItemRecord {
	extra = strings.Trim(strings.TrimSpace(extra), orderIDJoiner)
	out := make([]internal.LineItemRecord, 0, len(records))
	for _, r := range records {
		r = r.Clone()
		if extra != "" {
			r.OrderID = r.OrderID + orderIDJoiner + extra
		}
		out = append(out, r)
	}
	return out
}

// CleanItemName collapses whitespace and trailing separators of the
// document item name.
func CleanItemName(name string) string {
	if !internal.Resolved(name) {
		return ""
	}
	return strings.TrimRight(util.NormalizeSpaces(name), " .,;:-")
}
