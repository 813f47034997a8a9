package reference

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"pepco/internal/config"
)

func TestSheetsSourceFetch(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.SheetsSpreadsheetID = "sheet-id"
	cfg.SheetsCredentialsFile = ""
	cfg.SheetsAPIKey = ""
	cfg.SheetsPriceRange = "Prices"

	var gotPath string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		return response(http.StatusOK, "application/json",
			`{"range":"Prices!A1:B3","majorDimension":"ROWS","values":[["PLN","EUR"],["9.99","2.5"],[12.99," 3 "]]}`), nil
	})}

	src, err := NewSheetsSource(context.Background(), cfg, option.WithHTTPClient(client), option.WithEndpoint("https://sheets.test/"))
	require.NoError(t, err)

	rows, err := src.Fetch(context.Background(), KindPrices)
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotPath, "/v4/spreadsheets/sheet-id/values/Prices"), gotPath)
	assert.Equal(t, [][]string{{"PLN", "EUR"}, {"9.99", "2.5"}, {"12.99", "3"}}, rows)
}

func TestSheetsSourceRequiresSpreadsheet(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.SheetsSpreadsheetID = ""
	_, err = NewSheetsSource(context.Background(), cfg)
	assert.ErrorContains(t, err, "SHEETS_SPREADSHEET_ID")
}
