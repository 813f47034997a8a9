package pipeline

import (
	"regexp"
	"strings"
	"time"

	"pepco/internal"
)

type Field string

const (
	FieldOrderID        Field = "order_id"
	FieldMerchCode      Field = "merch_code"
	FieldSeason         Field = "season"
	FieldStyle          Field = "style"
	FieldCollection     Field = "collection"
	FieldHandoverDate   Field = "handover_date"
	FieldClassification Field = "item_classification"
	FieldSupplierCode   Field = "supplier_code"
	FieldSupplierName   Field = "supplier_name"
	FieldItemName       Field = "item_name"
	FieldSuggestedPrice Field = "suggested_price"
)

// Scope says which text a rule is matched against.
type Scope int

const (
	ScopeFirstPage Scope = iota
	ScopeAllPages
)

// Rule is one candidate pattern for a field. The captured groups are
// returned as-is; the first rule that matches wins.
type Rule struct {
	Field   Field
	Scope   Scope
	Pattern *regexp.Regexp
}

// Layout is the pattern table of one document generation.
type Layout struct {
	Name  string
	Rules []Rule
}

func rule(f Field, scope Scope, expr string) Rule {
	return Rule{Field: f, Scope: scope, Pattern: regexp.MustCompile(expr)}
}

// ClassicLayout covers the dotted-leader order sheets
// ("Order-ID..........12345"). Labels match in any case.
var ClassicLayout = Layout{
	Name: "classic",
	Rules: []Rule{
		rule(FieldOrderID, ScopeFirstPage, `(?i)Order\s*-\s*ID\s*\.{2,}\s*(.+)`),
		rule(FieldMerchCode, ScopeFirstPage, `(?i)Merch\s*code\s*\.{2,}\s*([\w/]+)`),
		rule(FieldSeason, ScopeFirstPage, `(?i)Season\s*\.{2,}\s*(\w+)?\s*(\d{2})`),
		rule(FieldStyle, ScopeFirstPage, `(?i)Style[ \t]*(?:no\.?|number)?[ \t]*(?::|\.+)[ \t]*(\d{6})\b`),
		rule(FieldStyle, ScopeFirstPage, `\b(\d{6})\b`),
		rule(FieldCollection, ScopeFirstPage, `(?i)Collection\s*\.{2,}\s*(.+)`),
		rule(FieldHandoverDate, ScopeFirstPage, `(?i)Handover\s*date\s*\.{2,}\s*(\d{2}/\d{2}/\d{4})`),
		rule(FieldClassification, ScopeFirstPage, `(?i)Item\s*classification\s*\.{2,}\s*(.+)`),
		rule(FieldSupplierCode, ScopeFirstPage, `(?i)Supplier\s*product\s*code\s*\.{2,}\s*(.+)`),
		rule(FieldSupplierName, ScopeFirstPage, `(?i)Supplier\s*name\s*\.{2,}\s*(.+)`),
		rule(FieldItemName, ScopeAllPages, `(?i)Item\s*name\s*English\s*[:.]+\s*(.+)`),
		rule(FieldItemName, ScopeAllPages, `(?i)Item\s*name\s*[:.]+\s*(.+?)\n`),
		rule(FieldSuggestedPrice, ScopeAllPages, `PL\s+[^\n]*?(\d+[.,]\d+)`),
	},
}

// CompactLayout covers sheets that use a colon, or a single dot, as the
// label separator and keep each value on the label line. A value never
// starts with a dot, so dotted leaders are left to ClassicLayout.
var CompactLayout = Layout{
	Name: "compact",
	Rules: []Rule{
		rule(FieldOrderID, ScopeFirstPage, `(?i)Order[ \t]*-?[ \t]*ID[ \t]*[:.][ \t]*([^.\s][^\n]*)`),
		rule(FieldMerchCode, ScopeFirstPage, `(?i)Merch[ \t]*code[ \t]*[:.][ \t]*([\w/]+)`),
		rule(FieldSeason, ScopeFirstPage, `(?i)Season[ \t]*[:.][ \t]*([A-Za-z]+)?[ \t]*(?:20)?(\d{2})\b`),
		rule(FieldCollection, ScopeFirstPage, `(?i)Collection[ \t]*[:.][ \t]*([^.\s][^\n]*)`),
		rule(FieldHandoverDate, ScopeFirstPage, `(?i)Handover[ \t]*date[ \t]*[:.][ \t]*(\d{2}[/.]\d{2}[/.]\d{4})`),
		rule(FieldClassification, ScopeFirstPage, `(?i)Item[ \t]*classification[ \t]*[:.][ \t]*([^.\s][^\n]*)`),
		rule(FieldSupplierCode, ScopeFirstPage, `(?i)Supplier[ \t]*product[ \t]*code[ \t]*[:.][ \t]*([^.\s][^\n]*)`),
		rule(FieldSupplierName, ScopeFirstPage, `(?i)Supplier[ \t]*name[ \t]*[:.][ \t]*([^.\s][^\n]*)`),
		rule(FieldItemName, ScopeAllPages, `(?i)Item[ \t]*name[ \t]*\(?EN\)?[ \t]*[:.][ \t]*(\S[^\n]*)`),
		rule(FieldSuggestedPrice, ScopeAllPages, `(?i)\bPLN?[ \t]+[^\n]*?(\d+[.,]\d{2})`),
	},
}

// DefaultLayouts is the search order. A new generation is supported by
// appending its table.
var DefaultLayouts = []Layout{ClassicLayout, CompactLayout}

// Library evaluates the layout tables against page text.
type Library struct {
	layouts []Layout
}

func NewLibrary(layouts ...Layout) *Library {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	return &Library{layouts: layouts}
}

func (l *Library) Layouts() []Layout {
	return l.layouts
}

// Capture is the submatch list of the winning rule, group 0 excluded.
type Capture struct {
	Layout string
	Groups []string
}

func (c Capture) Group(i int) string {
	if i < 0 || i >= len(c.Groups) {
		return ""
	}
	return strings.TrimSpace(c.Groups[i])
}

// Find returns the first capture for f over all layouts in order.
func (l *Library) Find(pages internal.PageText, f Field) (Capture, bool) {
	first := pages.Page(1)
	var all string
	for _, layout := range l.layouts {
		for _, r := range layout.Rules {
			if r.Field != f {
				continue
			}
			text := first
			if r.Scope == ScopeAllPages {
				if all == "" {
					all = pages.Joined()
				}
				text = all
			}
			m := r.Pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			return Capture{Layout: layout.Name, Groups: m[1:]}, true
		}
	}
	return Capture{}, false
}

func (l *Library) value(pages internal.PageText, f Field) string {
	c, ok := l.Find(pages, f)
	if !ok {
		return internal.Unresolved
	}
	return internal.OrUnresolved(c.Group(0))
}

// ExtractFields runs every field rule. Missing fields are Unresolved; the
// collection is cut at its first dash but not remapped here.
func (l *Library) ExtractFields(pages internal.PageText, batchOffsetDays int) internal.DocumentFields {
	f := internal.DocumentFields{
		OrderID:            l.value(pages, FieldOrderID),
		Style:              l.value(pages, FieldStyle),
		MerchCode:          l.value(pages, FieldMerchCode),
		ItemClassification: l.value(pages, FieldClassification),
		SupplierCode:       l.value(pages, FieldSupplierCode),
		SupplierName:       l.value(pages, FieldSupplierName),
		HandoverDate:       l.value(pages, FieldHandoverDate),
		Collection:         internal.Unresolved,
		Season:             internal.Unresolved,
		Batch:              internal.Unresolved,
	}

	if c, ok := l.Find(pages, FieldCollection); ok {
		head, _, _ := strings.Cut(c.Group(0), "-")
		f.Collection = internal.OrUnresolved(head)
	}

	if c, ok := l.Find(pages, FieldSeason); ok {
		f.SeasonDigits = c.Group(1)
		f.Season = internal.OrUnresolved(c.Group(0) + c.Group(1))
	}

	switch {
	case internal.Resolved(f.MerchCode) && f.SeasonDigits != "":
		f.StyleSuffix = f.MerchCode + f.SeasonDigits
	case internal.Resolved(f.MerchCode):
		f.StyleSuffix = f.MerchCode
	}

	if internal.Resolved(f.HandoverDate) {
		if batch, ok := BatchLabel(f.HandoverDate, batchOffsetDays); ok {
			f.Batch = batch
		}
	}

	if c, ok := l.Find(pages, FieldItemName); ok {
		f.ItemName = c.Group(0)
	}
	if c, ok := l.Find(pages, FieldSuggestedPrice); ok {
		f.SuggestedPrice = strings.ReplaceAll(c.Group(0), ",", ".")
	}
	return f
}

// BatchLabel subtracts offsetDays from a dd/mm/yyyy handover date and
// renders the month and year as "mmyyyy".
func BatchLabel(handover string, offsetDays int) (string, bool) {
	handover = strings.ReplaceAll(strings.TrimSpace(handover), ".", "/")
	t, err := time.Parse("02/01/2006", handover)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, -offsetDays).Format("012006"), true
}

// ExtractOrderID reads the order id of a companion document from its first
// page. Only id-safe characters are kept.
func ExtractOrderID(pages internal.PageText) (string, bool) {
	m := reCompanionOrderID.FindStringSubmatch(pages.Page(1))
	if m == nil {
		return "", false
	}
	id := strings.TrimSpace(m[1])
	return id, id != ""
}

var reCompanionOrderID = regexp.MustCompile(`(?i)Order\s*-\s*ID\s*\.{2,}\s*([A-Z0-9_+-]+)`)
