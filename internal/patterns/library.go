package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zombor/paynotify/internal/corpus"
)

// ErrDuplicateBank is returned when two profiles share a code.
var ErrDuplicateBank = errors.New("duplicate bank code")

// BankProfile is the rule bundle for one bank.
type BankProfile struct {
	Code        string
	DisplayName string
	// Keywords are matched case-insensitively against recognized text.
	Keywords []string
	// AppPackages are the notifying app identifiers owned by the bank.
	AppPackages []string
	// TransferKeyword marks incoming-transfer wording; when set, an amount
	// rule anchored on it is tried before the profile's other amount rules.
	TransferKeyword *regexp.Regexp
	// LogoRegion is where the bank's logo is expected on a capture.
	LogoRegion *corpus.Box
	Rules      RuleSet

	derivedName   bool
	derivedAmount bool
}

// Library is an immutable set of bank profiles in identification priority
// order, plus the generic rules used when no bank rule matches.
type Library struct {
	profiles []BankProfile
	index    map[string]int
	generic  RuleSet
}

// NewLibrary validates the profiles and derives their name rules.
func NewLibrary(generic RuleSet, profiles ...BankProfile) (*Library, error) {
	l := &Library{
		profiles: make([]BankProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
		generic:  generic,
	}
	for _, p := range profiles {
		p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
		if p.Code == "" {
			return nil, fmt.Errorf("bank profile without code")
		}
		if _, ok := l.index[p.Code]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBank, p.Code)
		}
		l.index[p.Code] = len(l.profiles)
		l.profiles = append(l.profiles, complete(p))
	}
	return l, nil
}

// complete fills the derived rules of a profile.
func complete(p BankProfile) BankProfile {
	keywords := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		keywords = []string{strings.ToLower(p.Code)}
	}
	p.Keywords = keywords
	if len(p.Rules.BankName) == 0 {
		p.Rules.BankName = []Rule{nameRule(p.Keywords)}
		p.derivedName = true
	}
	if p.TransferKeyword != nil && !p.derivedAmount {
		p.Rules.Amount = append([]Rule{transferAmountRule(p.TransferKeyword)}, p.Rules.Amount...)
		p.derivedAmount = true
	}
	return p
}

// nameRule matches any keyword in lower-cased text.
func nameRule(keywords []string) Rule {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return NewRule(`(?:` + strings.Join(quoted, "|") + `)`)
}

// transferAmountRule anchors an amount on the transfer wording and requires
// a currency marker after the number.
func transferAmountRule(keyword *regexp.Regexp) Rule {
	return NewRule(`(?:`+keyword.String()+`).*?`+number+`[ \t]*(?:บาท|THB|฿)`, 1)
}

// Rules returns the rules for kind: the bank's own rules first when code
// names a known bank, then the generic rules.
func (l *Library) Rules(kind FieldKind, code string) []Rule {
	var rules []Rule
	if p, ok := l.Profile(code); ok {
		rules = append(rules, p.Rules.For(kind)...)
	}
	return append(rules, l.generic.For(kind)...)
}

// Profile looks up a bank by code.
func (l *Library) Profile(code string) (BankProfile, bool) {
	i, ok := l.index[strings.ToUpper(code)]
	if !ok {
		return BankProfile{}, false
	}
	return l.profiles[i], true
}

// Profiles returns the banks in identification priority order.
func (l *Library) Profiles() []BankProfile {
	out := make([]BankProfile, len(l.profiles))
	copy(out, l.profiles)
	return out
}

// ProfileForPackage finds the bank that owns an app package.
func (l *Library) ProfileForPackage(pkg string) (BankProfile, bool) {
	if pkg == "" {
		return BankProfile{}, false
	}
	for _, p := range l.profiles {
		for _, ap := range p.AppPackages {
			if ap == pkg {
				return p, true
			}
		}
	}
	return BankProfile{}, false
}

// Merge returns a new library where profiles replace same-code banks in
// place and unknown codes are appended in order.
func (l *Library) Merge(profiles ...BankProfile) (*Library, error) {
	merged := make([]BankProfile, 0, len(l.profiles)+len(profiles))
	for _, p := range l.profiles {
		merged = append(merged, rawProfile(p))
	}
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		if seen[code] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBank, code)
		}
		seen[code] = true
		p.Code = code
		if i, ok := l.index[code]; ok {
			merged[i] = p
			continue
		}
		merged = append(merged, p)
	}
	return NewLibrary(l.generic, merged...)
}

// rawProfile undoes complete so a profile can be rebuilt without doubling
// its derived rules.
func rawProfile(p BankProfile) BankProfile {
	if p.derivedName {
		p.Rules.BankName = nil
		p.derivedName = false
	}
	if p.derivedAmount {
		p.Rules.Amount = append([]Rule(nil), p.Rules.Amount[1:]...)
		p.derivedAmount = false
	}
	return p
}
