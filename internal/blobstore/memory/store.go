package memory

import (
	"context"
	"sync"

	"github.com/dvloznov/smsspend/internal/blobstore"
)

// Store is an in-memory implementation of blobstore.Store.
// It is safe for concurrent use. Data is lost when the process exits.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	puts  int
}

// NewStore creates an empty in-memory blob store.
func NewStore() *Store {
	return &Store{
		blobs: make(map[string][]byte),
	}
}

// Get implements blobstore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.blobs[key]
	if !exists {
		return nil, blobstore.ErrNotFound
	}

	// Return a copy to avoid external modifications
	return append([]byte(nil), value...), nil
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := blobstore.ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), value...)
	s.puts++
	return nil
}

// Puts returns how many writes the store has accepted.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Close implements blobstore.Store.
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements blobstore.Store interface.
var _ blobstore.Store = (*Store)(nil)
