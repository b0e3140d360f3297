package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return newCountCache(rdb), mr
}

func TestNewCountCache_BadURL(t *testing.T) {
	_, err := NewCountCache("not a url")
	assert.Error(t, err)
}

func TestCountCache_GetCountsSkipsBadValues(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(countKey("p1"), "3"))
	require.NoError(t, mr.Set(countKey("p2"), "garbage"))
	require.NoError(t, mr.Set(versionKey("p1"), "7"))

	counts, versions, err := c.GetCounts(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"p1": 3}, counts)
	assert.Equal(t, map[string]int64{"p1": 7, "p2": 0, "p3": 0}, versions)
}

func TestCountCache_SetCountsAppliesTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, versions, err := c.GetCounts(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	require.NoError(t, c.SetCounts(ctx, map[string]int{"p1": 4, "p2": 0}, versions))

	got, err := mr.Get(countKey("p1"))
	require.NoError(t, err)
	assert.Equal(t, "4", got)
	assert.Equal(t, CountTTL, mr.TTL(countKey("p1")))

	counts, _, err := c.GetCounts(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 4, "p2": 0}, counts)
}

func TestCountCache_InvalidateDropsStaleWrite(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, versions, err := c.GetCounts(ctx, []string{"p1", "p2"})
	require.NoError(t, err)

	// A comment lands on p1 after the versions were read.
	require.NoError(t, c.Invalidate(ctx, "p1"))
	require.NoError(t, c.SetCounts(ctx, map[string]int{"p1": 0, "p2": 2}, versions))

	assert.False(t, mr.Exists(countKey("p1")))
	assert.True(t, mr.Exists(countKey("p2")))

	counts, versions, err := c.GetCounts(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.Equal(t, int64(1), versions["p1"])
	assert.Equal(t, versionTTL, mr.TTL(versionKey("p1")))

	require.NoError(t, c.SetCounts(ctx, map[string]int{"p1": 1}, versions))
	got, err := mr.Get(countKey("p1"))
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestCountCache_InvalidateDeletesCount(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(countKey("p1"), "5"))

	require.NoError(t, c.Invalidate(context.Background(), "p1"))

	assert.False(t, mr.Exists(countKey("p1")))
}

func TestCountCache_SetCountsWithoutVersionsIsNoop(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, c.SetCounts(context.Background(), map[string]int{"p1": 2}, nil))

	assert.False(t, mr.Exists(countKey("p1")))
}
