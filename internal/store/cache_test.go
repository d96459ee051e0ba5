package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "linkedin", "acme", []byte(`{"url":"x"}`), time.Hour))

	val, ok, err := c.Get(ctx, "linkedin", "acme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"url":"x"}`, string(val))

	_, ok, err = c.Get(ctx, "linkedin", "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Get(ctx, "profile", "acme")
	require.NoError(t, err)
	assert.False(t, ok, "kinds are isolated")
}

func TestCache_Upsert(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "linkedin", "acme", []byte("old"), time.Hour))
	require.NoError(t, c.Put(ctx, "linkedin", "acme", []byte("new"), time.Hour))

	val, ok, err := c.Get(ctx, "linkedin", "acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", string(val))
}

func TestCache_ExpiryIsAMiss(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "profile", "acme", []byte("data"), time.Minute))

	_, ok, err := c.Get(ctx, "profile", "acme")
	require.NoError(t, err)
	assert.True(t, ok)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, err = c.Get(ctx, "profile", "acme")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries read as misses")
}

func TestCache_Prune(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "a", "expired", []byte("x"), time.Minute))
	require.NoError(t, c.Put(ctx, "a", "fresh", []byte("y"), time.Hour))

	c.now = func() time.Time { return now.Add(10 * time.Minute) }
	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := c.Get(ctx, "a", "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}
