package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a manual entry is missing required fields.
// It never reaches the ledger.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ManualEntry is the raw manual form input. Amount is kept as text so that
// "12,50" and "12.50" are both accepted.
type ManualEntry struct {
	Amount   string `json:"amount"`
	Merchant string `json:"merchant"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// NewManual validates e and builds a fresh Transaction from it.
// An empty date defaults to today's date and an empty category to
// DefaultManualCategory.
func NewManual(e ManualEntry, now time.Time) (Transaction, error) {
	var fields []FieldError

	amount, err := parseAmount(e.Amount)
	if err != nil {
		fields = append(fields, FieldError{Field: "amount", Message: err.Error()})
	}

	merchant := strings.TrimSpace(e.Merchant)
	if merchant == "" {
		fields = append(fields, FieldError{Field: "merchant", Message: "is required"})
	}

	date := strings.TrimSpace(e.Date)
	if date == "" {
		date = Today(now)
	} else if !ValidDate(date) {
		fields = append(fields, FieldError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", e.Date)})
	}

	if len(fields) > 0 {
		return Transaction{}, &ValidationError{Fields: fields}
	}

	category := strings.TrimSpace(e.Category)
	if category == "" {
		category = DefaultManualCategory
	}

	return Transaction{
		ID:       NewID(),
		Amount:   amount,
		Date:     date,
		Merchant: merchant,
		Category: category,
	}, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v <= 0 {
		return 0, errors.New("must be greater than zero")
	}
	return v, nil
}
