// Package reference loads the price ladder, product translation and
// material translation tables and keeps a time-bounded shared copy.
package reference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pepco/internal/config"
)

type Kind string

const (
	KindPrices       Kind = "prices"
	KindTranslations Kind = "translations"
	KindMaterials    Kind = "materials"
)

var Kinds = []Kind{KindPrices, KindTranslations, KindMaterials}

// ErrUnavailable means a table could not be loaded and no stored copy exists.
var ErrUnavailable = errors.New("reference data unavailable")

// Source returns a table as rows of cells, header row first.
type Source interface {
	Fetch(ctx context.Context, kind Kind) ([][]string, error)
}

// NewSource builds the source selected by REFERENCE_SOURCE.
func NewSource(ctx context.Context, cfg config.Config, logger *slog.Logger) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ReferenceSource)) {
	case "", "http":
		return NewHTTPSource(cfg, logger), nil
	case "sheets":
		return NewSheetsSource(ctx, cfg)
	case "xlsx":
		if err := cfg.Require("REFERENCE_XLSX_PATH", cfg.ReferenceXLSXPath); err != nil {
			return nil, err
		}
		return NewWorkbookSource(cfg.ReferenceXLSXPath, map[Kind]string{
			KindPrices:       cfg.XLSXPriceSheet,
			KindTranslations: cfg.XLSXTranslationSheet,
			KindMaterials:    cfg.XLSXMaterialSheet,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported reference source: %s", cfg.ReferenceSource)
	}
}
