package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLadder() Ladder {
	return Ladder{
		"PLN": {dec("9.99"), dec("12.99"), dec("19.99")},
		"EUR": {dec("2.5"), dec("3"), dec("4.99")},
		"HUF": {dec("990"), dec("1290.9"), dec("1990")},
		"CZK": {dec("59"), dec("79")},
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value    string
		currency string
		want     string
	}{
		{"1234.5", "EUR", "1.234,50"},
		{"1234.9", "HUF", "1234"},
		{"3", "BGN", "3,00"},
		{"12.999", "PLN", "13,00"},
		{"1234567.8", "RON", "1.234.567,80"},
		{"79.99", "CZK", "79"},
		{"0.5", "RSD", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.currency+"_"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(dec(tt.value), tt.currency))
		})
	}
}

func TestResolveExactMatch(t *testing.T) {
	got, err := testLadder().Resolve("PLN", dec("12.990"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"EUR": "3,00", "HUF": "1290", "CZK": "79"}, got)
}

func TestResolveShortColumnOmitted(t *testing.T) {
	got, err := testLadder().Resolve("PLN", dec("19.99"))
	require.NoError(t, err)
	assert.NotContains(t, got, "CZK")
	assert.Equal(t, "4,99", got["EUR"])
}

func TestResolveFailures(t *testing.T) {
	_, err := testLadder().Resolve("PLN", dec("13"))
	assert.ErrorIs(t, err, ErrPriceNotFound)

	_, err = Ladder{"EUR": {dec("1")}}.Resolve("PLN", dec("1"))
	assert.ErrorIs(t, err, ErrCurrencyMissing)
}

func TestParsePrice(t *testing.T) {
	for in, want := range map[string]string{"12.50": "12.5", "12,50": "12.5", " 1.234,50 ": "1234.5"} {
		v, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.True(t, v.Equal(dec(want)), in)
	}
	for _, in := range []string{"", "abc", "-1"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrInvalidPrice, in)
	}
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{"9.99", "12.99", "19.99"}, testLadder().Available("PLN"))
}
