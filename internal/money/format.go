package money

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Symbol is the currency glyph prefixed to displayed amounts.
const Symbol = "฿"

// Format renders d with comma grouping and exactly two decimal digits,
// e.g. 1234.5 -> "1,234.50". It is the inverse of Normalize.
func Format(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign = "-"
		whole = whole[1:]
	}

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// Beyond int64; fall back to the float renderer.
		return humanize.FormatFloat("#,###.##", d.InexactFloat64())
	}
	return sign + humanize.Comma(n) + "." + frac
}

// Display renders d as a currency string with the baht glyph, e.g. "฿1,234.50".
func Display(d decimal.Decimal) string {
	return Symbol + Format(d)
}
