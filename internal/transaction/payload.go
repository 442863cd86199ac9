package transaction

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/paynotify/internal/bank"
)

// ErrInvalidPayload is returned for payloads whose amount cannot be a
// transfer amount.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is the pre-parsed record pushed by the backend. Its fields are
// trusted and bypass extraction.
type Payload struct {
	BankName   string  `json:"bankName"`
	Amount     float64 `json:"amount"`
	SenderInfo string  `json:"senderInfo"`
	Timestamp  int64   `json:"timestamp"`
}

// FromPayload converts a trusted payload into a record. Zero values are
// treated as absent, except for the amount, which is always present.
func (a *Assembler) FromPayload(p Payload) (Record, error) {
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount < 0 {
		return Record{}, fmt.Errorf("%w: amount %v", ErrInvalidPayload, p.Amount)
	}

	amount := decimal.NewFromFloat(p.Amount)
	rec := Record{
		Bank:   strings.TrimSpace(p.BankName),
		Amount: &amount,
		Source: SourcePayload,
	}
	if rec.Bank == "" {
		rec.Bank = bank.Unknown
	}

	lines := []string{"bankName: " + rec.Bank, "amount: " + amount.StringFixed(2)}
	if s := strings.TrimSpace(p.SenderInfo); s != "" {
		rec.Sender = &s
		lines = append(lines, "senderInfo: "+s)
	}
	if p.Timestamp > 0 {
		ts := strconv.FormatInt(p.Timestamp, 10)
		at := time.Unix(p.Timestamp, 0).In(a.loc)
		rec.Timestamp = &ts
		rec.OccurredAt = &at
		lines = append(lines, "timestamp: "+ts)
	}
	rec.RawText = strings.Join(lines, "\n")

	return rec, nil
}
