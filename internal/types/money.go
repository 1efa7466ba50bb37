package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders a monetary value the way the planilha layout
// expects it: two decimal places, comma as the decimal separator.
func FormatBRL(v decimal.Decimal) string {
	return strings.ReplaceAll(v.StringFixed(2), ".", ",")
}

// ParseBRL parses a planilha monetary string. Accepts "12,34",
// "12.34" and "1.234,56"; anything unparseable yields zero.
func ParseBRL(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v.Round(2)
}
