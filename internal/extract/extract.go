// Package extract applies ordered pattern rules to recognized text.
//
// Every field is resolved independently with first-match-wins semantics:
// rules are tried in order and the first rule that matches anywhere in the
// text decides the outcome, even when its payload later fails to normalize.
package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zombor/paynotify/internal/money"
	"github.com/zombor/paynotify/internal/patterns"
)

// match returns the first non-empty candidate group of the first rule that
// matches text. matched reports whether any rule matched at all.
func match(rules []patterns.Rule, text string) (value string, matched bool) {
	for _, r := range rules {
		m := r.Pattern.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		for _, g := range r.Groups {
			start, end := m[2*g], m[2*g+1]
			if start >= 0 && end > start {
				return text[start:end], true
			}
		}
		return "", true
	}
	return "", false
}

// Amount extracts and normalizes the first amount. A match whose digits do
// not parse yields no amount; later rules are not consulted.
func Amount(rules []patterns.Rule, text string) (decimal.Decimal, bool) {
	raw, matched := match(rules, text)
	if !matched || raw == "" {
		return decimal.Zero, false
	}
	return money.Normalize(raw)
}

// First returns the first captured value verbatim, trimmed. It serves the
// account number and timestamp fields.
func First(rules []patterns.Rule, text string) (string, bool) {
	raw, _ := match(rules, text)
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// Sender returns the first captured sender description, trimmed.
func Sender(rules []patterns.Rule, text string) (string, bool) {
	return First(rules, text)
}

// Field dispatches on kind for callers that iterate over field kinds.
// Amounts are returned in their normalized string form.
func Field(kind patterns.FieldKind, rules []patterns.Rule, text string) (string, bool) {
	switch kind {
	case patterns.Amount:
		d, ok := Amount(rules, text)
		if !ok {
			return "", false
		}
		return d.String(), true
	case patterns.Sender:
		return Sender(rules, text)
	default:
		return First(rules, text)
	}
}
