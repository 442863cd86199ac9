// Package patterns holds the ordered extraction rules for each field kind,
// both per bank and generic.
package patterns

import (
	"fmt"
	"regexp"
)

// FieldKind names a field the engine extracts.
type FieldKind int

const (
	Amount FieldKind = iota
	AccountNumber
	Sender
	Timestamp
	BankName
)

func (k FieldKind) String() string {
	switch k {
	case Amount:
		return "amount"
	case AccountNumber:
		return "account_number"
	case Sender:
		return "sender"
	case Timestamp:
		return "timestamp"
	case BankName:
		return "bank_name"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// Rule is a capture pattern plus the groups that may hold the payload, in
// preference order. Group 0 is the whole match.
type Rule struct {
	Pattern *regexp.Regexp
	Groups  []int
}

// NewRule compiles expr. With no groups the whole match is the payload.
// It panics on an invalid expression, like regexp.MustCompile.
func NewRule(expr string, groups ...int) Rule {
	return mustRule(regexp.MustCompile(expr), groups)
}

func compileRule(expr string, groups []int) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("compiling %q: %w", expr, err)
	}
	for _, g := range groups {
		if g < 0 || g > re.NumSubexp() {
			return Rule{}, fmt.Errorf("pattern %q has no group %d", expr, g)
		}
	}
	return mustRule(re, groups), nil
}

func mustRule(re *regexp.Regexp, groups []int) Rule {
	if len(groups) == 0 {
		groups = []int{0}
	}
	return Rule{Pattern: re, Groups: groups}
}

// RuleSet is an ordered rule list per field kind.
type RuleSet struct {
	Amount        []Rule
	AccountNumber []Rule
	Sender        []Rule
	Timestamp     []Rule
	BankName      []Rule
}

// For returns the rules for kind.
func (s RuleSet) For(kind FieldKind) []Rule {
	switch kind {
	case Amount:
		return s.Amount
	case AccountNumber:
		return s.AccountNumber
	case Sender:
		return s.Sender
	case Timestamp:
		return s.Timestamp
	case BankName:
		return s.BankName
	}
	return nil
}
