package pipeline

import "errors"

// ErrNoIdentifiers is returned when a document has no SKU or no item
// barcode at all. No records are produced for it.
var ErrNoIdentifiers = errors.New("no SKUs or barcodes detected")
