package util

import "strings"

// NormalizeDecimal rewrites an operator-typed amount into a dot-decimal token.
// "12,50" and "12.50" both become "12.50". When both separators appear the
// last one is the decimal separator and the other one is dropped.
func NormalizeDecimal(token string) string {
	compact := strings.NewReplacer(" ", "", "\u00a0", "").Replace(strings.TrimSpace(token))
	lastDot := strings.LastIndex(compact, ".")
	lastComma := strings.LastIndex(compact, ",")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		compact = strings.ReplaceAll(compact, ".", "")
		return strings.ReplaceAll(compact, ",", ".")
	case lastComma >= 0 && lastDot >= 0:
		return strings.ReplaceAll(compact, ",", "")
	default:
		return strings.ReplaceAll(compact, ",", ".")
	}
}
