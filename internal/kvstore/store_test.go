package kvstore

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "key", "value"))

	value, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)

	require.NoError(t, store.Delete(ctx, "key"))

	_, ok, err = store.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "key", "first"))
	require.NoError(t, store.Set(ctx, "key", "second"))

	value, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", value)
}

func TestNamespacedStoreScopesKeys(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()

	alice := Namespaced(inner, "user:alice")
	bob := Namespaced(inner, "user:bob")

	require.NoError(t, alice.Set(ctx, "sahayak_stats", "a"))
	require.NoError(t, bob.Set(ctx, "sahayak_stats", "b"))

	value, ok, err := alice.Get(ctx, "sahayak_stats")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", value)

	raw, ok, err := inner.Get(ctx, "user:alice:sahayak_stats")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", raw)

	require.NoError(t, alice.Delete(ctx, "sahayak_stats"))

	_, ok, err = bob.Get(ctx, "sahayak_stats")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNamespacedEmptyPrefixReturnsInner(t *testing.T) {
	inner := NewMemory()
	require.Equal(t, inner, Namespaced(inner, ""))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	ctx := context.Background()
	store := NewRedis(redis.NewClient(&redis.Options{Addr: mini.Addr()}))

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "key", "value"))

	value, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)

	require.NoError(t, store.Delete(ctx, "key"))

	_, ok, err = store.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
}
