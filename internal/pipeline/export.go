package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"pepco/internal"
	"pepco/internal/pricing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	headColumns = []string{
		"Order_ID", "Style", "Colour", "Supplier_product_code", "Item_classification",
		"Supplier_name", "today_date", "Collection", "Colour_SKU", "Style_Merch_Season",
		"Batch", "barcode", "washing_code",
	}
	tailColumns = []string{"product_name", "Dept", "Season"}
)

// Columns returns the export header for records. Price columns appear only
// when some record has prices; Cotton and Item_name only when some record
// has a value for them.
func Columns(records []internal.LineItemRecord) []string {
	var hasPrices, hasCotton, hasItemName bool
	for _, r := range records {
		hasPrices = hasPrices || len(r.Prices) > 0
		hasCotton = hasCotton || r.Cotton != ""
		hasItemName = hasItemName || r.ItemName != ""
	}
	cols := append([]string{}, headColumns...)
	if hasPrices {
		cols = append(cols, pricing.Columns...)
	}
	cols = append(cols, tailColumns...)
	if hasCotton {
		cols = append(cols, "Cotton")
	}
	if hasItemName {
		cols = append(cols, "Item_name")
	}
	return cols
}

func cell(r internal.LineItemRecord, col string) string {
	switch col {
	case "Order_ID":
		return r.OrderID
	case "Style":
		return r.Style
	case "Colour":
		return r.Colour
	case "Supplier_product_code":
		return r.SupplierProductCode
	case "Item_classification":
		return r.ItemClassification
	case "Supplier_name":
		return r.SupplierName
	case "today_date":
		return r.DateStamp
	case "Collection":
		return r.Collection
	case "Colour_SKU":
		return r.ColourSKU
	case "Style_Merch_Season":
		return r.StyleMerchSeason
	case "Batch":
		return r.Batch
	case "barcode":
		return r.Barcode
	case "washing_code":
		return r.WashingCode
	case "product_name":
		return r.Description
	case "Dept":
		return r.Dept
	case "Season":
		return r.Season
	case "Cotton":
		return r.Cotton
	case "Item_name":
		return r.ItemName
	default:
		return r.Prices[col]
	}
}

// Rows renders records as string rows in Columns order, header first.
func Rows(records []internal.LineItemRecord) [][]string {
	cols := Columns(records)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, cols)
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cell(r, c)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes a semicolon separated, fully quoted file with a UTF-8 BOM.
func WriteCSV(w io.Writer, records []internal.LineItemRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	for _, row := range Rows(records) {
		quoted := make([]string, len(row))
		for i, v := range row {
			quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(quoted, ";")+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// ReadCSV parses a file written by WriteCSV back into string rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(blob, utf8BOM)))
	cr.Comma = ';'
	return cr.ReadAll()
}

var filenameReplacer = strings.NewReplacer("/", "-", `\`, "-", ":", "-", "*", "-", "?", "-", `"`, "-", "<", "-", ">", "-", "|", "-")

// ExportFilename builds PEPCO_<SEASON>_<SKU_SKU>_DATAFILE_<supplier>_00_<style>.csv.
func ExportFilename(records []internal.LineItemRecord) string {
	season, supplier, style, skus := internal.Unresolved, internal.Unresolved, internal.Unresolved, internal.Unresolved
	if len(records) > 0 {
		first := records[0]
		season = strings.ToUpper(internal.OrUnresolved(first.Season))
		supplier = internal.OrUnresolved(first.SupplierProductCode)
		style = internal.OrUnresolved(first.Style)
		list := make([]string, 0, len(records))
		for _, r := range records {
			list = append(list, r.SKU)
		}
		skus = strings.Join(list, "_")
	}
	name := fmt.Sprintf("PEPCO_%s_%s_DATAFILE_%s_00_%s.csv", season, skus, supplier, style)
	return filenameReplacer.Replace(name)
}

// SaveCSV writes records to dir under ExportFilename and returns the path.
func SaveCSV(dir string, records []internal.LineItemRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportFilename(records))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// ExportXLSX writes the same columns into a workbook.
func ExportXLSX(records []internal.LineItemRecord, outputPath string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	for i, row := range Rows(records) {
		for j, v := range row {
			name, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellStr(sheet, name, v); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
