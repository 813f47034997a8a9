package reference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pepco/internal"
	"pepco/internal/pricing"
	"pepco/internal/util"
)

const (
	columnDepartment  = "DEPARTMENT"
	columnProductName = "PRODUCT_NAME"
	columnMaterial    = "Name"
)

var materialLanguages = []string{"AL", "MK"}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; h != "" && !dup {
			idx[h] = i
		}
	}
	return idx
}

// DecodePriceLadder reads one column per currency. A column ends at its
// first blank cell so positions stay aligned across currencies.
func DecodePriceLadder(rows [][]string) (pricing.Ladder, error) {
	if len(rows) < 2 {
		return nil, errors.New("price table has no data rows")
	}
	header := rows[0]
	ladder := pricing.Ladder{}
	for col, name := range header {
		currency := strings.ToUpper(strings.TrimSpace(name))
		if currency == "" {
			continue
		}
		var values []decimal.Decimal
		for r := 1; r < len(rows); r++ {
			raw := cellAt(rows[r], col)
			if raw == "" {
				break
			}
			v, err := decimal.NewFromString(util.NormalizeDecimal(raw))
			if err != nil {
				return nil, fmt.Errorf("price table %s row %d: invalid value %q", currency, r+1, raw)
			}
			values = append(values, v)
		}
		ladder[currency] = values
	}
	if len(ladder) == 0 {
		return nil, errors.New("price table has no currency columns")
	}
	return ladder, nil
}

// DecodeTranslations keeps every column other than the department and
// product columns as a language value.
func DecodeTranslations(rows [][]string) ([]internal.TranslationRow, error) {
	if len(rows) == 0 {
		return nil, errors.New("translation table is empty")
	}
	idx := headerIndex(rows[0])
	deptCol, ok := idx[columnDepartment]
	if !ok {
		return nil, fmt.Errorf("translation table has no %s column", columnDepartment)
	}
	productCol, ok := idx[columnProductName]
	if !ok {
		return nil, fmt.Errorf("translation table has no %s column", columnProductName)
	}

	out := make([]internal.TranslationRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		dept, product := cellAt(row, deptCol), cellAt(row, productCol)
		if dept == "" || product == "" {
			continue
		}
		values := map[string]string{}
		for name, i := range idx {
			if i == deptCol || i == productCol {
				continue
			}
			if v := cellAt(row, i); v != "" {
				values[name] = v
			}
		}
		out = append(out, internal.TranslationRow{Department: dept, Product: product, Values: values})
	}
	return out, nil
}

// DecodeMaterials emits one row per material and material language. The
// material name comes from the Name column, else the first column.
func DecodeMaterials(rows [][]string) ([]internal.MaterialRow, error) {
	if len(rows) < 2 {
		return nil, errors.New("material table has no data rows")
	}
	idx := headerIndex(rows[0])
	nameCol, ok := idx[columnMaterial]
	if !ok {
		nameCol = 0
	}

	var out []internal.MaterialRow
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		if name == "" {
			continue
		}
		for _, lang := range materialLanguages {
			tr := ""
			if i, ok := idx[lang]; ok {
				tr = cellAt(row, i)
			}
			out = append(out, internal.MaterialRow{Material: name, Language: lang, Translation: tr})
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no material rows produced from table")
	}
	return out, nil
}

// Departments lists distinct departments in table order.
func Departments(rows []internal.TranslationRow) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range rows {
		if !seen[r.Department] {
			seen[r.Department] = true
			out = append(out, r.Department)
		}
	}
	return out
}

// Products lists distinct products of a department in table order.
func Products(rows []internal.TranslationRow, department string) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range rows {
		if r.Department == department && !seen[r.Product] {
			seen[r.Product] = true
			out = append(out, r.Product)
		}
	}
	return out
}

// FindTranslation returns the row of a department and product, or nil.
func FindTranslation(rows []internal.TranslationRow, department, product string) *internal.TranslationRow {
	for i := range rows {
		if strings.EqualFold(rows[i].Department, strings.TrimSpace(department)) &&
			strings.EqualFold(rows[i].Product, strings.TrimSpace(product)) {
			row := rows[i]
			return &row
		}
	}
	return nil
}
