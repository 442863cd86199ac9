package patterns

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zombor/paynotify/internal/corpus"
)

// File is the on-disk bank profile format.
type File struct {
	Banks []ProfileConfig `yaml:"banks"`
}

// ProfileConfig describes one bank in a profile file.
type ProfileConfig struct {
	Code            string        `yaml:"code"`
	Name            string        `yaml:"name"`
	Keywords        []string      `yaml:"keywords"`
	AppPackages     []string      `yaml:"app_packages,omitempty"`
	TransferKeyword string        `yaml:"transfer_keyword,omitempty"`
	LogoRegion      *corpus.Box   `yaml:"logo_region,omitempty"`
	Rules           RuleSetConfig `yaml:"rules,omitempty"`
}

// RuleSetConfig lists rules per field kind.
type RuleSetConfig struct {
	Amount        []RuleConfig `yaml:"amount,omitempty"`
	AccountNumber []RuleConfig `yaml:"account_number,omitempty"`
	Sender        []RuleConfig `yaml:"sender,omitempty"`
	Timestamp     []RuleConfig `yaml:"timestamp,omitempty"`
	BankName      []RuleConfig `yaml:"bank_name,omitempty"`
}

// RuleConfig is a pattern and its payload groups.
type RuleConfig struct {
	Pattern string `yaml:"pattern"`
	Groups  []int  `yaml:"groups,omitempty"`
}

// LoadFile reads a profile file and merges it over base.
func LoadFile(base *Library, path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bank profiles: %w", err)
	}
	profiles, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return base.Merge(profiles...)
}

// Load decodes and compiles the profiles in a profile file.
func Load(r io.Reader) ([]BankProfile, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing bank profiles: %w", err)
	}

	seen := make(map[string]bool, len(f.Banks))
	profiles := make([]BankProfile, 0, len(f.Banks))
	for i, b := range f.Banks {
		code := strings.ToUpper(strings.TrimSpace(b.Code))
		if code == "" {
			return nil, fmt.Errorf("bank %d: code is required", i)
		}
		if seen[code] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBank, code)
		}
		seen[code] = true

		p, err := b.compile()
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", code, err)
		}
		p.Code = code
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (b ProfileConfig) compile() (BankProfile, error) {
	p := BankProfile{
		Code:        b.Code,
		DisplayName: b.Name,
		Keywords:    b.Keywords,
		AppPackages: b.AppPackages,
	}
	if b.LogoRegion != nil {
		if !b.LogoRegion.Valid() {
			return BankProfile{}, fmt.Errorf("logo region %+v outside the unit square", *b.LogoRegion)
		}
		region := *b.LogoRegion
		p.LogoRegion = &region
	}
	if b.TransferKeyword != "" {
		re, err := regexp.Compile(b.TransferKeyword)
		if err != nil {
			return BankProfile{}, fmt.Errorf("compiling transfer keyword: %w", err)
		}
		p.TransferKeyword = re
	}

	var err error
	compileAll := func(kind FieldKind, cfgs []RuleConfig) []Rule {
		if err != nil {
			return nil
		}
		rules := make([]Rule, 0, len(cfgs))
		for _, c := range cfgs {
			r, cerr := compileRule(c.Pattern, c.Groups)
			if cerr != nil {
				err = fmt.Errorf("%s rule: %w", kind, cerr)
				return nil
			}
			rules = append(rules, r)
		}
		return rules
	}
	p.Rules = RuleSet{
		Amount:        compileAll(Amount, b.Rules.Amount),
		AccountNumber: compileAll(AccountNumber, b.Rules.AccountNumber),
		Sender:        compileAll(Sender, b.Rules.Sender),
		Timestamp:     compileAll(Timestamp, b.Rules.Timestamp),
		BankName:      compileAll(BankName, b.Rules.BankName),
	}
	if err != nil {
		return BankProfile{}, err
	}
	return p, nil
}
