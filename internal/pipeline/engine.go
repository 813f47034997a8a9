package pipeline

import (
	"log/slog"
	"time"

	"pepco/internal"
	"pepco/internal/classify"
)

const defaultBatchOffsetDays = 20

// Engine turns page text into a Document and its line-item records. It
// holds no per-document state and is safe for concurrent use.
type Engine struct {
	library     *Library
	colours     []ColourStrategy
	tables      *classify.Tables
	now         func() time.Time
	batchOffset int
	logger      *slog.Logger
}

type Option func(*Engine)

func WithLibrary(l *Library) Option { return func(e *Engine) { e.library = l } }

func WithColourStrategies(s []ColourStrategy) Option { return func(e *Engine) { e.colours = s } }

func WithTables(t *classify.Tables) Option { return func(e *Engine) { e.tables = t } }

// WithClock fixes the date stamp source.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithBatchOffset(days int) Option { return func(e *Engine) { e.batchOffset = days } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		library:     NewLibrary(),
		colours:     DefaultColourStrategies,
		tables:      classify.Default(),
		now:         time.Now,
		batchOffset: defaultBatchOffsetDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

func (e *Engine) Tables() *classify.Tables {
	return e.tables
}

// Extract recovers the document-level fields, the colour and the
// identifier pairs. Only ErrNoIdentifiers is fatal; everything else that
// cannot be recovered is left Unresolved and reported as a warning.
func (e *Engine) Extract(source string, pages internal.PageText) (internal.Document, error) {
	doc := internal.Document{
		Source: source,
		Pages:  len(pages),
		Layout: e.library.DetectLayout(pages).Layout,
	}

	doc.Fields = e.library.ExtractFields(pages, e.batchOffset)
	doc.Fields.Collection = e.tables.RemapCollection(doc.Fields.Collection, doc.Fields.ItemClassification)
	if internal.Resolved(doc.Fields.HandoverDate) && !internal.Resolved(doc.Fields.Batch) {
		doc.Warnings = append(doc.Warnings, internal.Warning{
			Code:    internal.WarnBatchDate,
			Message: "handover date " + doc.Fields.HandoverDate + " is not a valid dd/mm/yyyy date",
		})
	}

	colour := ResolveColour(pages, e.colours)
	doc.Colour = colour.Colour
	if !colour.Resolved() {
		doc.Warnings = append(doc.Warnings, internal.Warning{
			Code:    internal.WarnColourUnresolved,
			Message: "colour not found in document, manual input required",
		})
		e.logger.Warn("extract.colour.unresolved", "source", source, "pages", len(pages))
	} else {
		e.logger.Debug("extract.colour", "source", source, "tier", colour.Tier, "page", colour.Page, "colour", colour.Colour)
	}

	ids, err := CorrelateIdentifiers(pages)
	if err != nil {
		e.logger.Error("extract.identifiers.failed", "source", source, "err", err)
		return doc, err
	}
	doc.Pairs = ids.Pairs
	if ids.Warning != nil {
		doc.Warnings = append(doc.Warnings, *ids.Warning)
		e.logger.Warn("extract.identifiers.mismatch", "source", source, "skus", len(ids.SKUs), "barcodes", len(ids.Barcodes))
	}

	e.logger.Info("extract.ok", "source", source, "layout", doc.Layout, "pairs", len(doc.Pairs), "warnings", len(doc.Warnings))
	return doc, nil
}

// Run extracts and assembles one document.
func (e *Engine) Run(source string, pages internal.PageText, opts AssembleOptions) (internal.Document, []internal.LineItemRecord, error) {
	doc, err := e.Extract(source, pages)
	doc.ExtraOrderIDs = opts.ExtraOrderIDs
	if err != nil {
		return doc, nil, err
	}
	return doc, e.Assemble(doc, opts), nil
}
