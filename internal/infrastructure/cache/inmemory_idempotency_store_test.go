package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins, second is a duplicate", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		isNew, err := store.MarkProcessed(ctx, "reputation:loan:1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "reputation:loan:1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("distinct keys do not interfere", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "reputation:loan:1", time.Hour)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "reputation:loan:2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.Equal(t, 2, store.Size())
	})

	t.Run("IsProcessed reflects marking", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		processed, err := store.IsProcessed(ctx, "k")
		require.NoError(t, err)
		assert.False(t, processed)

		_, err = store.MarkProcessed(ctx, "k", time.Hour)
		require.NoError(t, err)

		processed, err = store.IsProcessed(ctx, "k")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired keys can be marked again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "k", time.Millisecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		isNew, err := store.MarkProcessed(ctx, "k", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
	})
}
