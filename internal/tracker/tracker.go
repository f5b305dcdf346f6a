// Package tracker is the boundary API used by the HTTP and CLI surfaces.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/smsspend/internal/domain"
	"github.com/dvloznov/smsspend/internal/extraction"
	"github.com/dvloznov/smsspend/internal/history"
	"github.com/dvloznov/smsspend/internal/ledger"
	"github.com/dvloznov/smsspend/internal/logger"
	"github.com/dvloznov/smsspend/internal/stats"
)

// ErrExtractionDisabled is wrapped in the *extraction.ServiceUnavailableError
// returned by ImportFromText when no extractor is configured.
var ErrExtractionDisabled = errors.New("extraction is not configured: set GEMINI_API_KEY")

// Persister loads and saves the whole ledger.
type Persister interface {
	Load(ctx context.Context) (*ledger.Ledger, error)
	Save(ctx context.Context, l *ledger.Ledger) error
}

// Tracker owns the live ledger. Mutations are serialized and persisted
// before they become visible; reads recompute views from the live ledger.
type Tracker struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	store     Persister
	extractor *extraction.Extractor
	now       func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithExtractor enables ImportFromText.
func WithExtractor(e *extraction.Extractor) Option {
	return func(t *Tracker) { t.extractor = e }
}

// Open loads the persisted ledger and returns a ready Tracker. A present but
// unreadable blob is returned as an error so it is never overwritten.
func Open(ctx context.Context, store Persister, opts ...Option) (*Tracker, error) {
	l, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracker: open: %w", err)
	}

	t := &Tracker{
		ledger: l,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ExtractionEnabled reports whether ImportFromText can reach a model.
func (t *Tracker) ExtractionEnabled() bool {
	return t.extractor != nil
}

// AddTransaction inserts tx and persists the result.
func (t *Tracker) AddTransaction(ctx context.Context, tx domain.Transaction) error {
	return t.mutate(ctx, func(l *ledger.Ledger) error {
		return l.Add(tx)
	})
}

// AddManual validates a manual entry and adds it.
func (t *Tracker) AddManual(ctx context.Context, e domain.ManualEntry) (domain.Transaction, error) {
	tx, err := domain.NewManual(e, t.now())
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := t.AddTransaction(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("id", tx.ID).
		Float64("amount", tx.Amount).
		Str("merchant", tx.Merchant).
		Msg("Added manual transaction")
	return tx, nil
}

// DeleteTransaction removes the transaction with id. An unknown id is a
// no-op and nothing is written.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	removed := false
	err := t.mutate(ctx, func(l *ledger.Ledger) error {
		removed = l.Remove(id)
		if !removed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		log.Debug().Str("id", id).Msg("Delete of unknown transaction ignored")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("Deleted transaction")
	return nil
}

// GetTransactions returns the collection in canonical order.
func (t *Tracker) GetTransactions() []domain.Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.All()
}

// GetDashboardStats recomputes the dashboard as of today.
func (t *Tracker) GetDashboardStats() stats.Dashboard {
	txs := t.GetTransactions()
	return stats.Compute(txs, stats.Today(t.now()))
}

// GetGroupedHistory groups the collection by date.
func (t *Tracker) GetGroupedHistory() []history.Bucket {
	return history.Group(t.GetTransactions())
}

// ImportFromText extracts a transaction from an SMS and adds it.
//
// Blank text returns (nil, nil) without calling the model, whether or not
// an extractor is configured. Extraction
// errors (*extraction.ServiceUnavailableError, *extraction.IncompleteError)
// are returned unchanged and leave the ledger untouched.
func (t *Tracker) ImportFromText(ctx context.Context, text string) (*domain.Transaction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if t.extractor == nil {
		return nil, &extraction.ServiceUnavailableError{Err: ErrExtractionDisabled}
	}

	// The model call runs unlocked so other mutations are not blocked on it
	tx, err := t.extractor.Extract(ctx, text)
	if errors.Is(err, extraction.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := t.AddTransaction(ctx, tx); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("id", tx.ID).
		Float64("amount", tx.Amount).
		Str("merchant", tx.Merchant).
		Str("date", tx.Date).
		Msg("Imported transaction from SMS")
	return &tx, nil
}

var errNoChange = errors.New("no change")

// mutate applies fn to a copy of the ledger, persists the copy and only then
// makes it live. If fn or the save fails the live ledger is unchanged.
func (t *Tracker) mutate(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.ledger.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := t.store.Save(ctx, next); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to persist ledger, change discarded")
		return fmt.Errorf("tracker: save: %w", err)
	}
	t.ledger = next
	return nil
}
