package record

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a signed decimal amount string from a source file.
// Thousands separators are stripped before parsing. The result is exact;
// the string "1,234.56" parses to precisely 1234.56.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
