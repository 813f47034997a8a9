package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	got := SplitLines("  first \r\n\n second\n   \nthird")
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	got := Dedupe([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, ContainsAnyFold("Total Ordered Quantity", []string{"xyz", "ORDERED"}))
	assert.False(t, ContainsAnyFold("navy", []string{"red"}))
}

func TestNormalizeDecimal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "comma decimal", input: "12,50", want: "12.50"},
		{name: "dot decimal", input: "12.50", want: "12.50"},
		{name: "integer", input: " 19 ", want: "19"},
		{name: "european grouping", input: "1.234,50", want: "1234.50"},
		{name: "english grouping", input: "1,234.50", want: "1234.50"},
		{name: "three decimals stay decimal", input: "12.500", want: "12.500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeDecimal(tc.input))
		})
	}
}
