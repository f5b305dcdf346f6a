// Package file stores each blob as one file under a data directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dvloznov/smsspend/internal/blobstore"
)

const fileExt = ".json"

// Store is a directory-backed blobstore.Store. Writes go to a temporary file
// that is renamed over the target, so a crash never leaves a half-written blob.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store rooted at it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: data directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create data directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file a key is stored in.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Get implements blobstore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %q: %w", key, err)
	}
	return data, nil
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := blobstore.ValidateKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write %q: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: sync %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("file store: replace %q: %w", key, err)
	}
	return nil
}

// Close implements blobstore.Store.
func (s *Store) Close() error {
	return nil
}

var _ blobstore.Store = (*Store)(nil)
