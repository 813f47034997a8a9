// Package pricing resolves sibling-currency prices from a position-aligned
// currency ladder and formats them per currency.
package pricing

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"pepco/internal/util"
)

const SourceCurrency = "PLN"

var (
	ErrCurrencyMissing = errors.New("currency missing from price ladder")
	ErrPriceNotFound   = errors.New("price not found in price ladder")
	ErrInvalidPrice    = errors.New("invalid price")
)

// Columns is the export order of the currency columns.
var Columns = []string{"EUR", "BGN", "BAM", "PLN", "RON", "CZK", "MKD", "RSD", "HUF"}

var decimalCurrencies = []string{"EUR", "BGN", "BAM", "RON", "PLN"}

// Ladder maps a currency code to its ordered values. Index i of every list
// refers to the same price point.
type Ladder map[string][]decimal.Decimal

// ParsePrice accepts "12.50", "12,50" and "1.234,50".
func ParsePrice(raw string) (decimal.Decimal, error) {
	token := util.NormalizeDecimal(raw)
	if token == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	v, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if v.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is negative", ErrInvalidPrice, raw)
	}
	return v, nil
}

// Index returns the position of value in the currency list by exact
// decimal equality.
func (l Ladder) Index(currency string, value decimal.Decimal) (int, error) {
	values, ok := l[currency]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrCurrencyMissing, currency)
	}
	idx := slices.IndexFunc(values, value.Equal)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s %s", ErrPriceNotFound, currency, value.String())
	}
	return idx, nil
}

// Resolve returns every other currency's formatted value at the position
// of value in the source currency. Currencies whose list is too short for
// that position are left out.
func (l Ladder) Resolve(source string, value decimal.Decimal) (map[string]string, error) {
	idx, err := l.Index(source, value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(l))
	for currency, values := range l {
		if currency == source || idx >= len(values) {
			continue
		}
		out[currency] = Format(values[idx], currency)
	}
	return out, nil
}

// Available lists the source-currency values, for error messages.
func (l Ladder) Available(currency string) []string {
	values := l[currency]
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.String())
	}
	return out
}

// Format renders two comma decimals with dot thousands for the euro-style
// currencies and a truncated integer for the rest.
func Format(v decimal.Decimal, currency string) string {
	if !slices.Contains(decimalCurrencies, strings.ToUpper(currency)) {
		return v.Truncate(0).StringFixed(0)
	}
	fixed := v.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
