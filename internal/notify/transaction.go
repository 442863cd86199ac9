// Package notify ingests captures, notifications and pushed payloads,
// records the resulting transfers and delivers a message for each one.
package notify

import (
	"errors"

	"github.com/zombor/paynotify/internal/transaction"
)

var (
	// ErrNotFound is returned when no transaction has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrThrottled is returned when captures arrive faster than the
	// configured capture interval.
	ErrThrottled = errors.New("capture throttled")
)

// Transaction is a stored record plus the capture it came from, if any.
type Transaction struct {
	transaction.Record
	ImagePath string `json:"image_path,omitempty"`
	ImageType string `json:"image_type,omitempty"`
}
