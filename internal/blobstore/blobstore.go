// Package blobstore defines the durable key-value store the ledger is
// persisted to. Each key holds one opaque value that is replaced whole.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("blob not found")

// Store provides named durable blobs.
// This interface enables swapping local and cloud backends and mocking in tests.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}

// ValidateKey rejects keys that cannot be mapped to a file or object name.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("blob key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("blob key %q must not contain path separators", key)
	}
	return nil
}
