package domain

import (
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for Transaction.Date.
const DateLayout = "2006-01-02"

// Transaction is one recorded expense, entered manually or extracted from an SMS.
// Field names and JSON tags match the persisted ledger blob.
type Transaction struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Merchant    string  `json:"merchant"`
	Category    string  `json:"category"`
	OriginalSMS string  `json:"originalSms,omitempty"` // only set for extracted transactions
}

// NewID returns a fresh transaction identifier.
func NewID() string {
	return uuid.New().String()
}

// Insertable reports whether t carries the fields required to enter the ledger:
// a positive finite amount, a non-empty merchant and a YYYY-MM-DD date.
func (t Transaction) Insertable() bool {
	return t.Problem() == ""
}

// Problem names the first field that keeps t out of the ledger, or "".
func (t Transaction) Problem() string {
	switch {
	case t.Amount <= 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0):
		return "amount must be a positive number"
	case strings.TrimSpace(t.Merchant) == "":
		return "merchant is required"
	case t.Date != strings.TrimSpace(t.Date) || !ValidDate(t.Date):
		return "date must be a " + DateLayout + " calendar date"
	}
	return ""
}

// Extracted reports whether t was created from an SMS.
func (t Transaction) Extracted() bool {
	return t.OriginalSMS != ""
}

// FormatDate renders d in DateLayout.
func FormatDate(d civil.Date) string {
	return d.String()
}

// ParseDate parses a DateLayout string into a civil date.
func ParseDate(s string) (civil.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	d, err := ParseDate(s)
	return err == nil && d.IsValid()
}

// Today returns the local calendar date of now as a YYYY-MM-DD string.
func Today(now time.Time) string {
	return FormatDate(civil.DateOf(now))
}
