package reference

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			for j, v := range row {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, f.SetCellStr(name, cell, v))
			}
		}
	}
	path := filepath.Join(t.TempDir(), "reference.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookSourceFetch(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Materials": {{"Name", "AL", "MK"}, {"Cotton", "Pambuk", "Памук"}},
	})
	src := NewWorkbookSource(path, map[Kind]string{KindMaterials: "Materials"})

	rows, err := src.Fetch(context.Background(), KindMaterials)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "AL", "MK"}, {"Cotton", "Pambuk", "Памук"}}, rows)

	_, err = src.Fetch(context.Background(), KindPrices)
	assert.ErrorContains(t, err, "no sheet configured")
}
