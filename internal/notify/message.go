package notify

import (
	"strings"
	"time"

	"github.com/zombor/paynotify/internal/bank"
	"github.com/zombor/paynotify/internal/money"
)

const dateLayout = "02/01/2006 15:04"

// Message is what a user is shown for one incoming transfer.
type Message struct {
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Amount      string       `json:"amount,omitempty"`
	Date        string       `json:"date"`
	Transaction *Transaction `json:"transaction"`
}

// NewMessage formats t for display in loc. Missing fields are left out of
// the text. The date is when the transfer happened, or when it was
// recorded if the text carried no usable timestamp.
func NewMessage(t *Transaction, loc *time.Location) Message {
	if loc == nil {
		loc = time.UTC
	}

	msg := Message{Title: "รับเงินเข้าบัญชี", Transaction: t}
	if t.Bank != "" && t.Bank != bank.Unknown {
		msg.Title += " " + t.Bank
	}

	var body []string
	if t.Amount != nil {
		msg.Amount = money.Display(*t.Amount)
		body = append(body, "จำนวน "+money.Format(*t.Amount)+" บาท")
	}
	if t.Sender != nil {
		body = append(body, "จาก "+*t.Sender)
	}
	msg.Body = strings.Join(body, " ")

	at := t.CreatedAt
	if t.OccurredAt != nil {
		at = *t.OccurredAt
	}
	msg.Date = at.In(loc).Format(dateLayout)

	return msg
}
