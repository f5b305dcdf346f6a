// Package persistence keeps the ledger and its durable blob in sync.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/smsspend/internal/blobstore"
	"github.com/dvloznov/smsspend/internal/ledger"
	"github.com/dvloznov/smsspend/internal/logger"
)

// Bridge loads the ledger from one blob key and writes it back in full.
// There is no retry or corruption detection beyond what the store provides.
type Bridge struct {
	store blobstore.Store
	key   string
}

// NewBridge binds a bridge to key in store.
func NewBridge(store blobstore.Store, key string) *Bridge {
	return &Bridge{store: store, key: key}
}

// Key returns the blob key.
func (b *Bridge) Key() string {
	return b.key
}

// Load reads the blob. An absent blob yields an empty ledger; an unreadable
// one yields a *ledger.PersistenceError and no ledger.
func (b *Bridge) Load(ctx context.Context) (*ledger.Ledger, error) {
	log := logger.FromContext(ctx)

	blob, err := b.store.Get(ctx, b.key)
	if errors.Is(err, blobstore.ErrNotFound) {
		log.Info().Str("key", b.key).Msg("No saved ledger, starting empty")
		return ledger.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: read %q: %w", b.key, err)
	}

	l, err := ledger.Load(blob)
	if err != nil {
		log.Error().Err(err).Str("key", b.key).Int("bytes", len(blob)).Msg("Saved ledger is unreadable")
		return nil, err
	}

	log.Info().Str("key", b.key).Int("transactions", l.Len()).Msg("Loaded ledger")
	return l, nil
}

// Save serializes the whole ledger and writes it synchronously.
func (b *Bridge) Save(ctx context.Context, l *ledger.Ledger) error {
	blob, err := l.Serialize()
	if err != nil {
		return err
	}
	if err := b.store.Put(ctx, b.key, blob); err != nil {
		return fmt.Errorf("persistence: write %q: %w", b.key, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("key", b.key).Int("transactions", l.Len()).Msg("Saved ledger")
	return nil
}
