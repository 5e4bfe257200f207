package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "ruangpulih:/psychologists/available", []byte(`[]`), time.Hour))

		got, ok, err := cache.Get(ctx, "ruangpulih:/psychologists/available")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("Miss", func(t *testing.T) {
		got, ok, err := cache.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("Expiry", func(t *testing.T) {
		now := time.Now()
		cache.now = func() time.Time { return now }
		require.NoError(t, cache.Set(ctx, "short", []byte("x"), time.Second))

		cache.now = func() time.Time { return now.Add(2 * time.Second) }
		_, ok, err := cache.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
		cache.now = time.Now
	})

	t.Run("NoTTL", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "forever", []byte("x"), 0))
		cache.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
		_, ok, _ := cache.Get(ctx, "forever")
		assert.True(t, ok)
		cache.now = time.Now
	})

	t.Run("DeletePrefix", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "ruangpulih:/psychologists/P1", []byte("a"), time.Hour))
		require.NoError(t, cache.Set(ctx, "ruangpulih:/reviews", []byte("b"), time.Hour))

		require.NoError(t, cache.DeletePrefix(ctx, "ruangpulih:/psychologists"))

		_, ok, _ := cache.Get(ctx, "ruangpulih:/psychologists/P1")
		assert.False(t, ok)
		_, ok, _ = cache.Get(ctx, "ruangpulih:/psychologists/available")
		assert.False(t, ok)
		_, ok, _ = cache.Get(ctx, "ruangpulih:/reviews")
		assert.True(t, ok)
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "copy", []byte("abc"), time.Hour))
		got, _, _ := cache.Get(ctx, "copy")
		got[0] = 'z'
		again, _, _ := cache.Get(ctx, "copy")
		assert.Equal(t, []byte("abc"), again)
	})
}
