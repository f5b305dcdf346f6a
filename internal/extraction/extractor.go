// Package extraction turns free-text bank/merchant SMS notifications into
// transaction candidates using a hosted language model.
package extraction

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/dvloznov/smsspend/internal/domain"
	"github.com/dvloznov/smsspend/internal/logger"
)

// Extractor wraps one Generator call per SMS and normalizes the result.
type Extractor struct {
	gen   Generator
	now   func() time.Time
	newID func() string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to default missing dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithIDGenerator sets the transaction id source.
func WithIDGenerator(newID func() string) Option {
	return func(e *Extractor) { e.newID = newID }
}

// NewExtractor creates an Extractor around gen.
func NewExtractor(gen Generator, opts ...Option) *Extractor {
	e := &Extractor{
		gen:   gen,
		now:   time.Now,
		newID: domain.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract asks the model for the transaction in text.
//
// Blank text returns ErrEmptyInput without calling the model. A failed call
// returns a *ServiceUnavailableError. A response that is empty, not a JSON
// object, or lacks an amount or merchant returns an *IncompleteError.
// Otherwise the returned transaction has a fresh id, OriginalSMS set to text,
// the date defaulted to today and the category defaulted to Other.
func (e *Extractor) Extract(ctx context.Context, text string) (domain.Transaction, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Transaction{}, ErrEmptyInput
	}

	log := logger.FromContext(ctx)
	today := domain.Today(e.now())

	raw, err := e.gen.Generate(ctx, buildPrompt(text, today), responseSchema())
	if err != nil {
		log.Error().Err(err).Msg("Extraction call failed")
		return domain.Transaction{}, &ServiceUnavailableError{Err: err}
	}

	result := ParseResponse(raw)
	if result.Status != StatusOK {
		log.Warn().
			Str("status", result.Status.String()).
			AnErr("parse_error", result.Err).
			Msg("Model response could not be parsed")
		return domain.Transaction{}, &IncompleteError{Status: result.Status, Raw: raw}
	}

	c := result.Candidate
	if missing := c.Missing(); len(missing) > 0 {
		log.Info().Strs("missing", missing).Msg("Model response lacks required fields")
		return domain.Transaction{}, &IncompleteError{Status: StatusOK, Missing: missing, Raw: raw}
	}

	date := today
	if c.Date != nil {
		if domain.ValidDate(*c.Date) {
			date = *c.Date
		} else {
			log.Warn().Str("date", *c.Date).Msg("Ignoring unparsable date from model")
		}
	}

	category := domain.CategoryOther
	if c.Category != nil {
		category = *c.Category
		if domain.IsSuggestedCategory(category) {
			category = domain.CanonicalCategory(category)
		} else {
			log.Debug().Str("category", category).Msg("Model chose a category outside the suggested set")
		}
	}

	return domain.Transaction{
		ID:          e.newID(),
		Amount:      math.Abs(*c.Amount),
		Date:        date,
		Merchant:    *c.Merchant,
		Category:    category,
		OriginalSMS: text,
	}, nil
}
