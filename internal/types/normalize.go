package types

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel lowercases, trims and strips diacritics from a label
// so coupon codes, product names and rule labels compare the same way
// regardless of accents or casing.
func NormalizeLabel(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
