package pipeline

import (
	"io"
	"log/slog"
	"time"

	"pepco/internal"
)

var classicPages = internal.PageText{
	`PEPCO Poland
Order-ID..........PO-12345
Merch code..........WGB
Season..........SS 26
Style 456789
Collection..........LITTLE SAILOR - MAIN
Handover date..........15/03/2026
Item classification..........Baby boys outerwear
Supplier product code..........SUP-778
Supplier name..........Textile Works Ltd`,
	`TOTAL ORDERED QUANTITY
NAVY BLUE
SKU 10000001 EAN 5901234000011 QTY 120
SKU 10000002 EAN 5901234000028 QTY 80
Carton barcode: 5909999999990
Item name English: Boys padded jacket.
PL  49,99
`,
}

var compactPages = internal.PageText{
	`PEPCO Poland
Order ID: PO-777
Merch code: KDG
Season: AW 2026
Style no: 123456
Collection: DAISY-SPRING
Handover date: 01.10.2026
Item classification: Younger girls outerwear
Supplier product code: SP-1
Supplier name: Fabrika d.o.o.`,
	`Purchase price per colour
PINK
SKU 20000001 EAN 5901111000014
SKU 20000002 EAN 5901111000021
SKU 20000003 EAN 5901111000038
Item name (EN): Girls dress
PLN 39.99
`,
}

var companionPages = internal.PageText{
	`PEPCO Poland
Order-ID..........PO-12346 / additional
Style 456789`,
}

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine() *Engine {
	return NewEngine(
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(discardLogger()),
	)
}
