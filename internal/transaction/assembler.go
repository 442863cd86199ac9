package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/zombor/paynotify/internal/bank"
	"github.com/zombor/paynotify/internal/corpus"
	"github.com/zombor/paynotify/internal/extract"
	"github.com/zombor/paynotify/internal/patterns"
)

// ErrEmptyCorpus is returned when there is no text to extract from.
var ErrEmptyCorpus = errors.New("empty corpus")

// Bangkok is the default zone for timestamps printed without one.
var Bangkok = time.FixedZone("ICT", 7*60*60)

// Assembler runs bank identification and field extraction over a corpus.
// It holds no mutable state and is safe for concurrent use.
type Assembler struct {
	lib *patterns.Library
	loc *time.Location
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLocation sets the zone used to interpret extracted timestamps.
func WithLocation(loc *time.Location) Option {
	return func(a *Assembler) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// NewAssembler creates an Assembler over lib.
func NewAssembler(lib *patterns.Library, opts ...Option) *Assembler {
	a := &Assembler{lib: lib, loc: Bangkok}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble extracts a record from c. Missing fields are left nil; only an
// empty corpus is an error. The raw text is always preserved.
func (a *Assembler) Assemble(c corpus.Corpus) (Record, error) {
	if c.Empty() {
		return Record{}, ErrEmptyCorpus
	}

	text := c.Text()
	id := bank.Identify(a.lib, c)
	rec := Record{
		Bank:       id.String(),
		BankSource: id.Source,
		RawText:    text,
	}

	if amount, ok := extract.Amount(a.lib.Rules(patterns.Amount, id.Code), text); ok {
		rec.Amount = &amount
	}
	fields := map[patterns.FieldKind]**string{
		patterns.Sender:        &rec.Sender,
		patterns.AccountNumber: &rec.AccountNumber,
		patterns.Timestamp:     &rec.Timestamp,
	}
	for kind, dst := range fields {
		if v, ok := extract.Field(kind, a.lib.Rules(kind, id.Code), text); ok {
			*dst = &v
		}
	}
	if rec.Timestamp != nil {
		if t, ok := extract.ParseTimestamp(*rec.Timestamp, a.loc); ok {
			rec.OccurredAt = &t
		}
	}

	return rec, nil
}

// AssembleText is Assemble over newline-separated text without boxes.
func (a *Assembler) AssembleText(text string) (Record, error) {
	return a.Assemble(corpus.FromLines(strings.Split(text, "\n")))
}
