package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pepco/internal"
	"pepco/internal/pdftext"
	"pepco/internal/pricing"
	"pepco/internal/reference"
	"pepco/internal/selection"
)

// LoadPages reads a PDF, or a text dump with form-feed page breaks.
func LoadPages(path string) (internal.PageText, internal.ItemSource, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err := pdftext.ReadPages(blob)
		return pages, internal.SourcePDF, err
	case ".txt":
		pages := pdftext.SplitText(pdftext.Normalize(string(blob)))
		if len(pages) == 0 {
			return nil, internal.SourceText, pdftext.ErrEmptyDocument
		}
		return pages, internal.SourceText, nil
	default:
		return nil, "", fmt.Errorf("unsupported input type: %s", filepath.Ext(path))
	}
}

// CompanionOrderIDs reads the order id of every companion file. Files
// without a recognisable id are skipped.
func CompanionOrderIDs(paths []string) ([]string, error) {
	var ids []string
	for _, p := range paths {
		pages, _, err := LoadPages(p)
		if err != nil {
			return nil, fmt.Errorf("companion %s: %w", p, err)
		}
		if id, ok := ExtractOrderID(pages); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func joinOrderIDs(ids []string) string {
	return strings.Join(ids, orderIDJoiner)
}

// ReferenceProvider serves the decoded reference tables.
type ReferenceProvider interface {
	PriceLadder(ctx context.Context) (pricing.Ladder, error)
	Translations(ctx context.Context) ([]internal.TranslationRow, error)
	Materials(ctx context.Context) ([]internal.MaterialRow, error)
}

type fallbackReporter interface {
	Fallbacks() []reference.Kind
}

type RunRequest struct {
	Input      string
	Companions []string
	Selections selection.Selections
	OutputDir  string
	XLSX       bool
}

type RunResult struct {
	Document internal.Document
	Records  []internal.LineItemRecord
	Warnings []internal.Warning
	CSVPath  string
	XLSXPath string
}

// Exporter runs the operator flow for one document: validate selections,
// extract and assemble, augment from the reference tables and write files.
type Exporter struct {
	engine    *Engine
	refs      ReferenceProvider
	validator *selection.Validator
	logger    *slog.Logger
}

func NewExporter(engine *Engine, refs ReferenceProvider, logger *slog.Logger) *Exporter {
	if engine == nil {
		engine = NewEngine(WithLogger(logger))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		engine:    engine,
		refs:      refs,
		validator: selection.NewValidator(engine.Tables()),
		logger:    logger,
	}
}

func (x *Exporter) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	var res RunResult
	if err := x.validator.Validate(req.Selections); err != nil {
		return res, err
	}
	pages, _, err := LoadPages(req.Input)
	if err != nil {
		return res, fmt.Errorf("load %s: %w", req.Input, err)
	}
	companions, err := CompanionOrderIDs(req.Companions)
	if err != nil {
		return res, err
	}
	extra := joinOrderIDs(append(companions, req.Selections.ExtraOrderIDs...))

	doc, records, err := x.engine.Run(filepath.Base(req.Input), pages, AssembleOptions{
		ExtraOrderIDs: extra,
		Colour:        req.Selections.Colour,
	})
	res.Document = doc
	if err != nil {
		return res, err
	}

	out, err := x.Export(ctx, records, req.Selections, req.OutputDir, req.XLSX)
	out.Document = doc
	out.Warnings = append(append([]internal.Warning{}, doc.Warnings...), out.Warnings...)
	return out, err
}

// Export augments already assembled records and writes them to dir. The
// caller merges sel.ExtraOrderIDs into the records beforehand.
func (x *Exporter) Export(ctx context.Context, records []internal.LineItemRecord, sel selection.Selections, dir string, withXLSX bool) (RunResult, error) {
	var res RunResult
	if err := x.validator.Validate(sel); err != nil {
		return res, err
	}
	if len(records) == 0 {
		return res, errors.New("no records to export")
	}

	translations, err := x.refs.Translations(ctx)
	if err != nil {
		return res, err
	}
	materials, err := x.refs.Materials(ctx)
	if err != nil {
		return res, err
	}

	a := Augmentation{
		Tables:      x.engine.Tables(),
		Selections:  sel,
		Translation: reference.FindTranslation(translations, sel.Department, sel.Product),
		Materials:   materials,
	}
	if _, ok, _ := sel.ParsedPrice(); ok {
		ladder, err := x.refs.PriceLadder(ctx)
		if err != nil {
			res.Warnings = append(res.Warnings, internal.Warning{Code: internal.WarnPriceLookup, Message: err.Error()})
		}
		a.Ladder = ladder
	}

	if a.Ladder == nil {
		a.Selections.Price = ""
	}
	augmented, warnings, err := Augment(records, a)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil && !isPriceError(err) {
		return res, err
	}
	if err != nil {
		x.logger.Warn("export.price.unresolved", "price", sel.Price, "err", err)
	}

	if fr, ok := x.refs.(fallbackReporter); ok {
		for _, kind := range fr.Fallbacks() {
			res.Warnings = append(res.Warnings, internal.Warning{
				Code:    internal.WarnReferenceFallback,
				Message: string(kind) + " table served from a stored copy",
			})
		}
	}

	res.Records = augmented
	res.CSVPath, err = SaveCSV(dir, augmented)
	if err != nil {
		return res, fmt.Errorf("write csv: %w", err)
	}
	if withXLSX {
		res.XLSXPath = strings.TrimSuffix(res.CSVPath, filepath.Ext(res.CSVPath)) + ".xlsx"
		if err := ExportXLSX(augmented, res.XLSXPath); err != nil {
			return res, fmt.Errorf("write xlsx: %w", err)
		}
	}
	x.logger.Info("export.ok", "records", len(augmented), "csv", res.CSVPath, "warnings", len(res.Warnings))
	return res, nil
}

func isPriceError(err error) bool {
	return errors.Is(err, pricing.ErrPriceNotFound) ||
		errors.Is(err, pricing.ErrCurrencyMissing) ||
		errors.Is(err, pricing.ErrInvalidPrice)
}
