package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pepco/internal"
	"pepco/internal/classify"
	"pepco/internal/pipeline"
	"pepco/internal/reference"
	"pepco/internal/selection"
	"pepco/internal/util"
)

type selectionFlags struct {
	department    string
	product       string
	washingCode   string
	price         string
	colour        string
	materials     []string
	extraOrderIDs []string
	out           string
	xlsx          bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.department, "department", "", "translation table department (default from item classification)")
	fl.StringVar(&f.product, "product", "", "translation table product (default from item name)")
	fl.StringVar(&f.washingCode, "washing-code", "", "washing code key (default DEFAULT_WASHING_CODE)")
	fl.StringVar(&f.price, "price", "", "PLN price (default the suggested price on the order)")
	fl.StringVar(&f.colour, "colour", "", "colour used when the document has none")
	fl.StringArrayVar(&f.materials, "material", nil, "composition entry Name:Pct, repeatable")
	fl.StringArrayVar(&f.extraOrderIDs, "order-id", nil, "extra order id merged with +, repeatable")
	fl.StringVar(&f.out, "out", "", "output directory (default OUTPUT_DIR)")
	fl.BoolVar(&f.xlsx, "xlsx", false, "also write an .xlsx copy")
}

func (f *selectionFlags) selections() (selection.Selections, error) {
	sel := selection.Selections{
		Department:    strings.TrimSpace(f.department),
		Product:       strings.TrimSpace(f.product),
		WashingCode:   strings.TrimSpace(f.washingCode),
		Price:         strings.TrimSpace(f.price),
		Colour:        strings.TrimSpace(f.colour),
		ExtraOrderIDs: f.extraOrderIDs,
	}
	for _, raw := range f.materials {
		m, err := selection.ParseMaterial(raw)
		if err != nil {
			return sel, err
		}
		sel.Materials = append(sel.Materials, m)
	}
	return sel, nil
}

// applyDefaults fills unset selections the way the operator form does:
// department from the classification, product from the item name and
// price from the suggested price.
func applyDefaults(ctx context.Context, a *app, refs pipeline.ReferenceProvider, tables *classify.Tables, fields internal.DocumentFields, sel *selection.Selections) error {
	if sel.WashingCode == "" {
		sel.WashingCode = a.cfg.DefaultWashingCode
	}
	if sel.Price == "" {
		sel.Price = fields.SuggestedPrice
	}
	if sel.Department != "" && sel.Product != "" {
		return nil
	}
	rows, err := refs.Translations(ctx)
	if err != nil {
		return err
	}
	if sel.Department == "" {
		sel.Department = selection.DefaultDepartment(tables, fields.ItemClassification, reference.Departments(rows))
	}
	if sel.Product == "" {
		sel.Product = selection.DefaultProduct(pipeline.CleanItemName(fields.ItemName), reference.Products(rows, sel.Department))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res pipeline.RunResult) {
	fmt.Fprintf(w, "records=%d csv=%s\n", len(res.Records), res.CSVPath)
	if res.XLSXPath != "" {
		fmt.Fprintf(w, "xlsx=%s\n", res.XLSXPath)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning %s: %s\n", warn.Code, warn.Message)
	}
}

func newExtractCmd(a *app) *cobra.Command {
	var input string
	var companions []string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract one purchase order and print the document and records as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, _, err := pipeline.LoadPages(input)
			if err != nil {
				return err
			}
			extra, err := pipeline.CompanionOrderIDs(companions)
			if err != nil {
				return err
			}
			doc, records, err := a.engine().Run(filepath.Base(input), pages, pipeline.AssembleOptions{
				ExtraOrderIDs: strings.Join(extra, "+"),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"document": doc, "records": records})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "purchase order .pdf or .txt")
	cmd.Flags().StringArrayVar(&companions, "companion", nil, "companion order document, repeatable")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var input string
	var companions []string
	var flags selectionFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, augment and export one purchase order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sel, err := flags.selections()
			if err != nil {
				return err
			}
			refs, err := a.references(ctx)
			if err != nil {
				return err
			}
			engine := a.engine()

			pages, _, err := pipeline.LoadPages(input)
			if err != nil {
				return err
			}
			fields := pipeline.NewLibrary().ExtractFields(pages, a.cfg.BatchOffsetDays)
			if err := applyDefaults(ctx, a, refs, engine.Tables(), fields, &sel); err != nil {
				return err
			}

			res, err := pipeline.NewExporter(engine, refs, a.logger).Run(ctx, pipeline.RunRequest{
				Input:      input,
				Companions: companions,
				Selections: sel,
				OutputDir:  util.FirstNonEmpty(flags.out, a.cfg.OutputDir),
				XLSX:       flags.xlsx,
			})
			if err != nil {
				return err
			}
			if err := a.saveRun(input, res); err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "purchase order .pdf or .txt")
	cmd.Flags().StringArrayVar(&companions, "companion", nil, "companion order document, repeatable")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// saveRun stores the document and its exported records keyed by the input
// content hash.
func (a *app) saveRun(input string, res pipeline.RunResult) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	blob, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(blob)
	id, err := db.SaveDocument(nil, hex.EncodeToString(sum[:]), internal.StatusProcessed, "", res.Document)
	if err != nil {
		return err
	}
	return db.ReplaceLineItems(id, res.Records)
}

func newExportCmd(a *app) *cobra.Command {
	var documentID int
	var flags selectionFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Augment and export a stored document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB()
			if err != nil {
				return err
			}
			row, err := db.GetDocument(documentID)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("document %d not found", documentID)
			}
			if row.Status != internal.StatusProcessed {
				return fmt.Errorf("document %d is %s: %s", documentID, row.Status, row.Error)
			}

			sel, err := flags.selections()
			if err != nil {
				return err
			}
			refs, err := a.references(ctx)
			if err != nil {
				return err
			}
			engine := a.engine()
			if err := applyDefaults(ctx, a, refs, engine.Tables(), row.Document.Fields, &sel); err != nil {
				return err
			}

			extra := strings.Trim(row.Document.ExtraOrderIDs+"+"+sel.ExtraOrderIDsJoined(), "+")
			records := engine.Assemble(row.Document, pipeline.AssembleOptions{ExtraOrderIDs: extra, Colour: sel.Colour})
			res, err := pipeline.NewExporter(engine, refs, a.logger).Export(ctx, records, sel, util.FirstNonEmpty(flags.out, a.cfg.OutputDir), flags.xlsx)
			if err != nil {
				return err
			}
			if err := db.ReplaceLineItems(row.ID, res.Records); err != nil {
				return err
			}
			res.Warnings = append(append([]internal.Warning{}, row.Document.Warnings...), res.Warnings...)
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVar(&documentID, "document-id", 0, "stored document id")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("document-id")
	return cmd
}

func newDocumentsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List stored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			rows, err := db.ListDocuments(limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range rows {
				items, err := db.GetLineItems(r.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\torder=%s\trecords=%d\n",
					r.ID, r.Status, r.Layout, r.Source, r.Document.Fields.OrderID, len(items))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max documents")
	return cmd
}
