// Package money parses and formats baht amounts as exact decimals.
package money

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Normalize parses a grouped numeric string such as "1,234.56" into a
// non-negative decimal. It reports false for anything that is not a plain
// number once whitespace and comma separators are removed.
func Normalize(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return decimal.Zero, false
	}

	digits, points := 0, 0
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			points++
		default:
			return decimal.Zero, false
		}
	}
	if digits == 0 || points > 1 {
		return decimal.Zero, false
	}

	// "500." and ".5" are both accepted by the banks' own formatters.
	cleaned = strings.TrimSuffix(cleaned, ".")
	if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
