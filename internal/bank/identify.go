// Package bank works out which bank produced a capture or notification.
package bank

import (
	"strings"

	"github.com/zombor/paynotify/internal/corpus"
	"github.com/zombor/paynotify/internal/patterns"
)

// Unknown is the bank name reported when identification fails.
const Unknown = "Unknown"

// Source records which pass identified the bank.
type Source string

const (
	SourceNone    Source = ""
	SourcePackage Source = "package"
	SourceRegion  Source = "region"
	SourceText    Source = "text"
)

// Identification is either a known bank code with the pass that found it,
// or no identification at all.
type Identification struct {
	Code   string
	Source Source
}

// Known reports whether a bank was identified.
func (i Identification) Known() bool {
	return i.Source != SourceNone
}

// String returns the bank code, or Unknown.
func (i Identification) String() string {
	if !i.Known() {
		return Unknown
	}
	return i.Code
}

// Identify resolves the bank for c. The posting app package wins when it
// belongs to a known bank, then logo-region overlap, then keyword
// containment in priority order.
func Identify(lib *patterns.Library, c corpus.Corpus) Identification {
	if p, ok := lib.ProfileForPackage(c.AppPackage); ok {
		return Identification{Code: p.Code, Source: SourcePackage}
	}
	if id, ok := byRegion(lib, c); ok {
		return id
	}
	if id, ok := byText(lib, c); ok {
		return id
	}
	return Identification{}
}

func byRegion(lib *patterns.Library, c corpus.Corpus) (Identification, bool) {
	if !c.HasBoxes() {
		return Identification{}, false
	}
	for _, p := range lib.Profiles() {
		if p.LogoRegion == nil {
			continue
		}
		for _, l := range c.Lines {
			if l.Box != nil && p.LogoRegion.Intersects(*l.Box) {
				return Identification{Code: p.Code, Source: SourceRegion}, true
			}
		}
	}
	return Identification{}, false
}

func byText(lib *patterns.Library, c corpus.Corpus) (Identification, bool) {
	text := strings.ToLower(c.Text())
	for _, p := range lib.Profiles() {
		for _, r := range p.Rules.For(patterns.BankName) {
			if r.Pattern.MatchString(text) {
				return Identification{Code: p.Code, Source: SourceText}, true
			}
		}
	}
	return Identification{}, false
}
