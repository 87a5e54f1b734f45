package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*AnswerCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewAnswerCache(client), srv
}

func TestAnswerCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "doc-hash", "What is the grace period?", "Thirty days.", time.Hour)
	require.NoError(t, err)

	answer, ok, err := cache.Get(ctx, "doc-hash", "What is the grace period?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Thirty days.", answer)
}

func TestAnswerCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	answer, ok, err := cache.Get(context.Background(), "doc-hash", "never asked")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, answer)
}

func TestAnswerCacheKeysByDocument(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "doc-a", "same question", "answer for a", time.Hour))
	require.NoError(t, cache.Set(ctx, "doc-b", "same question", "answer for b", time.Hour))

	answer, ok, err := cache.Get(ctx, "doc-a", "same question")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "answer for a", answer)

	answer, ok, err = cache.Get(ctx, "doc-b", "same question")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "answer for b", answer)
}

func TestAnswerCacheExpiry(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "doc-hash", "q", "a", time.Minute))

	srv.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "doc-hash", "q")
	require.NoError(t, err)
	assert.False(t, ok, "answer should expire with its TTL")
}

func TestAnswerCacheZeroTTLIsNoOp(t *testing.T) {
	cache, srv := newTestCache(t)

	require.NoError(t, cache.Set(context.Background(), "doc-hash", "q", "a", 0))
	assert.Empty(t, srv.Keys(), "nothing should be stored with a zero TTL")
}

func TestAnswerCacheBackendError(t *testing.T) {
	cache, srv := newTestCache(t)
	srv.Close()

	_, _, err := cache.Get(context.Background(), "doc-hash", "q")
	assert.Error(t, err)
}
