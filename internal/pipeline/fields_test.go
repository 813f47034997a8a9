package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal"
)

func TestExtractFieldsClassic(t *testing.T) {
	f := NewLibrary().ExtractFields(classicPages, 20)

	assert.Equal(t, "PO-12345", f.OrderID)
	assert.Equal(t, "456789", f.Style)
	assert.Equal(t, "WGB", f.MerchCode)
	assert.Equal(t, "SS26", f.Season)
	assert.Equal(t, "26", f.SeasonDigits)
	assert.Equal(t, "WGB26", f.StyleSuffix)
	assert.Equal(t, "LITTLE SAILOR", f.Collection)
	assert.Equal(t, "15/03/2026", f.HandoverDate)
	assert.Equal(t, "022026", f.Batch)
	assert.Equal(t, "Baby boys outerwear", f.ItemClassification)
	assert.Equal(t, "SUP-778", f.SupplierCode)
	assert.Equal(t, "Textile Works Ltd", f.SupplierName)
	assert.Equal(t, "Boys padded jacket.", f.ItemName)
	assert.Equal(t, "49.99", f.SuggestedPrice)
}

func TestExtractFieldsCompact(t *testing.T) {
	f := NewLibrary().ExtractFields(compactPages, 20)

	assert.Equal(t, "PO-777", f.OrderID)
	assert.Equal(t, "123456", f.Style)
	assert.Equal(t, "AW26", f.Season)
	assert.Equal(t, "KDG26", f.StyleSuffix)
	assert.Equal(t, "DAISY", f.Collection)
	assert.Equal(t, "092026", f.Batch)
	assert.Equal(t, "Fabrika d.o.o.", f.SupplierName)
	assert.Equal(t, "Girls dress", f.ItemName)
	assert.Equal(t, "39.99", f.SuggestedPrice)
}

func TestExtractFieldsMissingAreUnresolved(t *testing.T) {
	f := NewLibrary().ExtractFields(internal.PageText{"nothing useful here"}, 20)

	for name, v := range map[string]string{
		"order":      f.OrderID,
		"style":      f.Style,
		"merch":      f.MerchCode,
		"collection": f.Collection,
		"season":     f.Season,
		"batch":      f.Batch,
		"supplier":   f.SupplierName,
	} {
		assert.Equal(t, internal.Unresolved, v, name)
	}
	assert.Empty(t, f.StyleSuffix)
	assert.Empty(t, f.ItemName)
}

func TestExtractFieldsFirstPageOnly(t *testing.T) {
	pages := internal.PageText{"cover page", "Order-ID..........PO-1\nStyle 111111"}
	f := NewLibrary().ExtractFields(pages, 20)
	assert.Equal(t, internal.Unresolved, f.OrderID)
	assert.Equal(t, internal.Unresolved, f.Style)
}

func TestBatchLabel(t *testing.T) {
	cases := []struct {
		in     string
		offset int
		want   string
		ok     bool
	}{
		{"15/03/2026", 20, "022026", true},
		{"25/03/2026", 20, "032026", true},
		{"10/01/2026", 20, "122025", true},
		{"10.01.2026", 0, "012026", true},
		{"31/02/2026", 20, "", false},
		{"soon", 20, "", false},
	}
	for _, tc := range cases {
		got, ok := BatchLabel(tc.in, tc.offset)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestExtractOrderID(t *testing.T) {
	id, ok := ExtractOrderID(companionPages)
	require.True(t, ok)
	assert.Equal(t, "PO-12346", id)

	_, ok = ExtractOrderID(internal.PageText{"no id"})
	assert.False(t, ok)
}

func TestDetectLayout(t *testing.T) {
	lib := NewLibrary()

	m := lib.DetectLayout(classicPages)
	assert.Equal(t, ClassicLayout.Name, m.Layout)
	assert.Greater(t, m.Score, 0.5)

	m = lib.DetectLayout(compactPages)
	assert.Equal(t, CompactLayout.Name, m.Layout)
	assert.Equal(t, 1.0, m.Score)

	m = lib.DetectLayout(internal.PageText{"blank"})
	assert.Equal(t, LayoutUnknown, m.Layout)
}

func TestLibraryCustomLayoutOrder(t *testing.T) {
	lib := NewLibrary(CompactLayout)
	require.Len(t, lib.Layouts(), 1)
	f := lib.ExtractFields(classicPages, 20)
	assert.Equal(t, internal.Unresolved, f.Style)
	for name, v := range map[string]string{
		"order":          f.OrderID,
		"collection":     f.Collection,
		"classification": f.ItemClassification,
		"supplier code":  f.SupplierCode,
		"supplier name":  f.SupplierName,
	} {
		assert.Equal(t, internal.Unresolved, v, name)
	}
}

func TestExtractFieldsClassicMixedCaseLabels(t *testing.T) {
	pages := internal.PageText{`ORDER-ID..........PO-55
Supplier Name..........ACME
Supplier Product Code..........SUP-9
COLLECTION..........SEA BREEZE - MAIN
Item Classification..........Baby girls outerwear
Style..........654321`}
	f := NewLibrary().ExtractFields(pages, 20)

	assert.Equal(t, "PO-55", f.OrderID)
	assert.Equal(t, "ACME", f.SupplierName)
	assert.Equal(t, "SUP-9", f.SupplierCode)
	assert.Equal(t, "SEA BREEZE", f.Collection)
	assert.Equal(t, "Baby girls outerwear", f.ItemClassification)
	assert.Equal(t, "654321", f.Style)
}

func TestExtractFieldsLabelledStyleWins(t *testing.T) {
	pages := internal.PageText{"Invoice ref 998877\nStyle no: 123456"}
	f := NewLibrary().ExtractFields(pages, 20)
	assert.Equal(t, "123456", f.Style)

	f = NewLibrary().ExtractFields(internal.PageText{"Invoice ref 998877"}, 20)
	assert.Equal(t, "998877", f.Style)
}
