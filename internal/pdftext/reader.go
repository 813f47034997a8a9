// Package pdftext turns a binary purchase-order PDF into per-page plain text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"pepco/internal"
)

var ErrEmptyDocument = errors.New("document has no pages")

// ReadPages extracts the plain text of every page. Pages that cannot be
// decoded are kept as empty blocks so page numbers stay aligned.
func ReadPages(content []byte) (internal.PageText, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if r.NumPage() < 1 {
		return nil, ErrEmptyDocument
	}

	pages := make(internal.PageText, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, Normalize(text))
	}
	return pages, nil
}

// ReadFirstPage returns the page-one text, which is all a companion
// document contributes.
func ReadFirstPage(content []byte) (string, error) {
	pages, err := ReadPages(content)
	if err != nil {
		return "", err
	}
	return pages.Page(1), nil
}

// SplitText splits already-extracted text on form feeds, the page separator
// pdftotext and most text dumps use.
func SplitText(text string) (internal.PageText, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	parts := strings.Split(text, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make(internal.PageText, 0, len(parts))
	for _, p := range parts {
		pages = append(pages, Normalize(p))
	}
	return pages, nil
}

// Normalize folds line endings and odd spaces and composes accented letters.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.NewReplacer("\u00a0", " ", "\u2007", " ", "\u202f", " ").Replace(text)
	return norm.NFC.String(text)
}
