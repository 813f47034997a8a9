package internal

import (
	"maps"
	"strings"
)

// Unresolved marks a field the engine could not recover. It is never an error.
const Unresolved = "UNKNOWN"

// Resolved reports whether v carries a real value.
func Resolved(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != Unresolved
}

// OrUnresolved returns v trimmed, or Unresolved when it is empty.
func OrUnresolved(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Unresolved
	}
	return v
}

type ItemSource string

const (
	SourcePDF   ItemSource = "pdf"
	SourceText  ItemSource = "text"
	SourceEmail ItemSource = "email"
)

// PageText holds one plain-text block per document page, in page order.
type PageText []string

// Page returns the 1-indexed page, or "" when out of range.
func (p PageText) Page(n int) string {
	if n < 1 || n > len(p) {
		return ""
	}
	return p[n-1]
}

func (p PageText) Joined() string {
	return strings.Join(p, "\n")
}

type DocumentFields struct {
	OrderID            string `json:"orderId"`
	Style              string `json:"style"`
	MerchCode          string `json:"merchCode"`
	StyleSuffix        string `json:"styleSuffix"`
	Collection         string `json:"collection"`
	ItemClassification string `json:"itemClassification"`
	SupplierCode       string `json:"supplierCode"`
	SupplierName       string `json:"supplierName"`
	HandoverDate       string `json:"handoverDate"`
	Batch              string `json:"batch"`
	ItemName           string `json:"itemName"`
	Season             string `json:"season"`
	SeasonDigits       string `json:"seasonDigits"`
	SuggestedPrice     string `json:"suggestedPrice"`
}

type IdentifierPair struct {
	SKU     string `json:"sku"`
	Barcode string `json:"barcode"`
}

type WarningCode string

const (
	WarnCountMismatch     WarningCode = "COUNT_MISMATCH"
	WarnColourUnresolved  WarningCode = "COLOUR_UNRESOLVED"
	WarnBatchDate         WarningCode = "BATCH_DATE"
	WarnPriceLookup       WarningCode = "PRICE_LOOKUP"
	WarnReferenceFallback WarningCode = "REFERENCE_FALLBACK"
	WarnNoTranslation     WarningCode = "NO_TRANSLATION"
)

type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Document is the engine output for one purchase order before record assembly.
type Document struct {
	Source   string           `json:"source"`
	Pages    int              `json:"pages"`
	Layout   string           `json:"layout"`
	Fields   DocumentFields   `json:"fields"`
	Colour   string           `json:"colour"`
	Pairs    []IdentifierPair `json:"pairs"`
	Warnings []Warning        `json:"warnings,omitempty"`

	// ExtraOrderIDs are the companion order ids merged at assembly.
	ExtraOrderIDs string `json:"extraOrderIds,omitempty"`
}

// LineItemRecord is one export row. Records of the same document hold copies
// of the document-level values, never shared references.
type LineItemRecord struct {
	OrderID             string `json:"Order_ID"`
	Style               string `json:"Style"`
	Colour              string `json:"Colour"`
	SupplierProductCode string `json:"Supplier_product_code"`
	ItemClassification  string `json:"Item_classification"`
	SupplierName        string `json:"Supplier_name"`
	DateStamp           string `json:"today_date"`
	Collection          string `json:"Collection"`
	ColourSKU           string `json:"Colour_SKU"`
	StyleMerchSeason    string `json:"Style_Merch_Season"`
	Batch               string `json:"Batch"`
	SKU                 string `json:"sku"`
	Barcode             string `json:"barcode"`
	ItemNameEN          string `json:"Item_name_EN"`
	Season              string `json:"Season"`
	Dept                string `json:"Dept"`

	WashingCode string            `json:"washing_code,omitempty"`
	Description string            `json:"product_name,omitempty"`
	Cotton      string            `json:"Cotton,omitempty"`
	ItemName    string            `json:"Item_name,omitempty"`
	Prices      map[string]string `json:"prices,omitempty"`
}

// Clone returns a deep copy of r.
func (r LineItemRecord) Clone() LineItemRecord {
	out := r
	if r.Prices != nil {
		out.Prices = maps.Clone(r.Prices)
	}
	return out
}

type MaterialSelection struct {
	Material string `json:"material" validate:"required"`
	Percent  int    `json:"percent" validate:"gte=0,lte=100"`
}

// TranslationRow is one product row of the translation table keyed by language code.
type TranslationRow struct {
	Department string            `json:"department"`
	Product    string            `json:"product"`
	Values     map[string]string `json:"values"`
}

// Value returns the non-blank value for lang.
func (r TranslationRow) Value(lang string) (string, bool) {
	v, ok := r.Values[lang]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

type MaterialRow struct {
	Material    string `json:"material"`
	Language    string `json:"language"`
	Translation string `json:"translation"`
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

const (
	StatusFetched   = "fetched"
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// DocumentRow is a stored document with its extraction result.
type DocumentRow struct {
	ID        int
	EmailID   *int
	Source    string
	Hash      string
	Status    string
	Layout    string
	Error     string
	CreatedAt string
	Document  Document
}

type ReferenceSnapshot struct {
	ID        int
	Kind      string
	Payload   []byte
	FetchedAt string
}
