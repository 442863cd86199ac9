// Package transaction turns a recognized text corpus into a structured
// transfer record.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/paynotify/internal/bank"
)

// Source records which input path produced a record.
type Source string

const (
	SourceCapture      Source = "capture"
	SourceCorpus       Source = "corpus"
	SourceNotification Source = "notification"
	SourcePayload      Source = "payload"
)

// Record is one incoming transfer. Optional fields are nil when the text
// did not yield them.
type Record struct {
	ID            string           `json:"id,omitempty"`
	Bank          string           `json:"bank"`
	BankSource    bank.Source      `json:"bank_source,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Sender        *string          `json:"sender,omitempty"`
	AccountNumber *string          `json:"account_number,omitempty"`
	Timestamp     *string          `json:"timestamp,omitempty"`
	OccurredAt    *time.Time       `json:"occurred_at,omitempty"`
	RawText       string           `json:"raw_text"`
	Source        Source           `json:"source,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// HasAmount reports whether a positive amount was extracted.
func (r Record) HasAmount() bool {
	return r.Amount != nil && r.Amount.IsPositive()
}
