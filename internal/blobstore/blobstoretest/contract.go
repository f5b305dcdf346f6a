// Package blobstoretest holds the behavior every blobstore.Store backend must share.
package blobstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/smsspend/internal/blobstore"
)

// Run exercises a backend created fresh by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) blobstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "sms_expenses")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)
		value := []byte(`[{"id":"a","amount":1,"date":"2024-05-12","merchant":"x","category":"Food"}]`)
		require.NoError(t, s.Put(ctx, "sms_expenses", value))

		got, err := s.Get(ctx, "sms_expenses")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("put replaces", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "k", []byte("first")))
		require.NoError(t, s.Put(ctx, "k", []byte("[]")))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("[]"), got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "a", []byte("1")))
		require.NoError(t, s.Put(ctx, "b", []byte("2")))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), got)
	})

	t.Run("invalid key", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.Put(ctx, "", []byte("x")))
		assert.Error(t, s.Put(ctx, "../escape", []byte("x")))
		_, err := s.Get(ctx, "a/b")
		assert.Error(t, err)
	})
}
