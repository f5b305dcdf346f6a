// Package ledger holds the ordered collection of transactions.
//
// The canonical order is descending by date. New transactions are placed at
// the head before a stable sort, so same-day entries list the most recently
// added first.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dvloznov/smsspend/internal/domain"
)

var (
	// ErrInvalidTransaction is returned by Add for a transaction without a
	// positive amount, a merchant or a YYYY-MM-DD date.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrDuplicateID is returned by Add when the id is already in the ledger.
	ErrDuplicateID = errors.New("transaction id already exists")

	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("persisted ledger is unreadable")
)

// PersistenceError reports a persisted blob that is present but cannot be
// decoded as a ledger.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("load ledger: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Ledger owns the transaction collection. It is not safe for concurrent use;
// callers serialize access (see tracker.Tracker).
type Ledger struct {
	txs []domain.Transaction
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{txs: []domain.Transaction{}}
}

// Load decodes a persisted blob. An empty blob yields an empty ledger.
// The persisted order is kept as is.
func Load(blob []byte) (*Ledger, error) {
	if len(bytes.TrimSpace(blob)) == 0 {
		return New(), nil
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(blob, &txs); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	seen := make(map[string]struct{}, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			return nil, &PersistenceError{Err: fmt.Errorf("transaction %d has no id", i)}
		}
		if _, dup := seen[tx.ID]; dup {
			return nil, &PersistenceError{Err: fmt.Errorf("transaction %d: duplicate id %q", i, tx.ID)}
		}
		seen[tx.ID] = struct{}{}
	}

	if txs == nil {
		txs = []domain.Transaction{}
	}
	return &Ledger{txs: txs}, nil
}

// Serialize encodes the full collection as a JSON array.
func (l *Ledger) Serialize() ([]byte, error) {
	data, err := json.Marshal(l.txs)
	if err != nil {
		return nil, fmt.Errorf("serialize ledger: %w", err)
	}
	return data, nil
}

// Add inserts tx at the head and re-sorts the collection.
func (l *Ledger) Add(tx domain.Transaction) error {
	if problem := tx.Problem(); problem != "" {
		return fmt.Errorf("add transaction: %w: %s", ErrInvalidTransaction, problem)
	}
	if tx.ID == "" {
		return fmt.Errorf("add transaction: %w: empty id", ErrInvalidTransaction)
	}
	if l.indexOf(tx.ID) >= 0 {
		return fmt.Errorf("add transaction %s: %w", tx.ID, ErrDuplicateID)
	}

	next := make([]domain.Transaction, 0, len(l.txs)+1)
	next = append(next, tx)
	next = append(next, l.txs...)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Date > next[j].Date
	})
	l.txs = next
	return nil
}

// Remove deletes the transaction with the given id. It reports whether a
// transaction was removed; an unknown id is not an error.
func (l *Ledger) Remove(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	next := make([]domain.Transaction, 0, len(l.txs)-1)
	next = append(next, l.txs[:i]...)
	next = append(next, l.txs[i+1:]...)
	l.txs = next
	return true
}

// All returns a copy of the collection in canonical order.
func (l *Ledger) All() []domain.Transaction {
	out := make([]domain.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (domain.Transaction, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l.txs[i], true
	}
	return domain.Transaction{}, false
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	return len(l.txs)
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{txs: l.All()}
}

func (l *Ledger) indexOf(id string) int {
	for i, tx := range l.txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
