package categorize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizePayee folds a payee string for grouping in run statistics:
// diacritics stripped, lowercased, runs of whitespace collapsed. Rule
// matching and duplicate detection both operate on the raw payee; this is
// only for reporting, so "CAFÉ  AROMA" and "Cafe Aroma" count as one
// uncategorized payee instead of two.
func NormalizePayee(payee string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, payee)
	if err != nil {
		normalized = payee
	}
	return strings.Join(strings.Fields(strings.ToLower(normalized)), " ")
}
