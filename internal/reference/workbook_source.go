package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WorkbookSource reads the tables from sheets of a local xlsx file.
type WorkbookSource struct {
	path   string
	sheets map[Kind]string
}

func NewWorkbookSource(path string, sheets map[Kind]string) *WorkbookSource {
	return &WorkbookSource{path: path, sheets: sheets}
}

func (s *WorkbookSource) Fetch(ctx context.Context, kind Kind) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheet := strings.TrimSpace(s.sheets[kind])
	if sheet == "" {
		return nil, fmt.Errorf("no sheet configured for %s table", kind)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
