package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

type payload struct {
	Items []string `json:"items"`
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Items: []string{"a", "b"}}, nil
	}

	key, err := cache.BuildKey(ctx, "billing", "items")
	require.NoError(t, err)
	var got payload
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a", "b"}, got.Items)

	require.NoError(t, cache.Bump(ctx))
	key2, err := cache.BuildKey(ctx, "billing", "items")
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)
	require.NoError(t, cache.FetchJSON(ctx, key2, &got, loader))
	assert.Equal(t, 2, calls)
}

func TestFetchJSONDoesNotCacheErrors(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")
	var got payload
	err := cache.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	err = cache.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return payload{Items: []string{"x"}}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Items)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	var got payload
	require.NoError(t, cache.FetchJSON(ctx, key, &got, func(context.Context) (any, error) {
		return payload{Items: []string{"n"}}, nil
	}))
	assert.Equal(t, []string{"n"}, got.Items)
	assert.NoError(t, cache.Bump(ctx))
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = New(context.Background(), addr)
	assert.Error(t, err)
}

func TestListenForInvalidationSeesBump(t *testing.T) {
	cache := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	versions := make(chan int64, 1)
	require.NoError(t, cache.ListenForInvalidation(ctx, func(v int64) { versions <- v }))
	require.NoError(t, cache.Bump(ctx))

	select {
	case v := <-versions:
		assert.Equal(t, int64(1), v)
	case <-time.After(2 * time.Second):
		t.Fatal("no invalidation received")
	}
}
