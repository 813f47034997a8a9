package reference

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"pepco/internal/config"
)

// SheetsSource reads the tables through the Google Sheets values API.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	ranges        map[Kind]string
}

// NewSheetsSource authenticates with a service-account file when one is
// configured, else with an API key. Extra options are appended last.
func NewSheetsSource(ctx context.Context, cfg config.Config, extra ...option.ClientOption) (*SheetsSource, error) {
	if err := cfg.Require("SHEETS_SPREADSHEET_ID", cfg.SheetsSpreadsheetID); err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	switch {
	case strings.TrimSpace(cfg.SheetsCredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.SheetsCredentialsFile))
	case strings.TrimSpace(cfg.SheetsAPIKey) != "":
		opts = append(opts, option.WithAPIKey(cfg.SheetsAPIKey))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsSource{
		svc:           svc,
		spreadsheetID: cfg.SheetsSpreadsheetID,
		ranges: map[Kind]string{
			KindPrices:       cfg.SheetsPriceRange,
			KindTranslations: cfg.SheetsTranslationRange,
			KindMaterials:    cfg.SheetsMaterialRange,
		},
	}, nil
}

func (s *SheetsSource) Fetch(ctx context.Context, kind Kind) ([][]string, error) {
	readRange := strings.TrimSpace(s.ranges[kind])
	if readRange == "" {
		return nil, fmt.Errorf("no sheet range configured for %s table", kind)
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s range %q: %w", kind, readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = strings.TrimSpace(fmt.Sprint(v))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
