package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", time.Minute)
	t.Cleanup(func() {
		c.Close()
	})
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips values with a ttl", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Ping(ctx))

		require.NoError(t, c.Set(ctx, KeyBook("b1"), payload{"Dune", 4.5}))

		var got payload
		found, err := c.Get(ctx, KeyBook("b1"), &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, payload{"Dune", 4.5}, got)
		assert.Equal(t, time.Minute, mr.TTL(defaultPrefix+KeyBook("b1")))

		mr.FastForward(2 * time.Minute)
		found, err = c.Get(ctx, KeyBook("b1"), &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("deletes keys", func(t *testing.T) {
		c, _ := newTestCache(t)
		require.NoError(t, c.Set(ctx, KeyPopularBooks, []payload{{"A", 1}}))
		require.NoError(t, c.Delete(ctx, KeyPopularBooks, KeyBook("missing")))

		var got []payload
		found, err := c.Get(ctx, KeyPopularBooks, &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("deletes by prefix", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Set(ctx, KeyCategory("Fantasy"), 1))
		require.NoError(t, c.Set(ctx, KeyCategory("Poetry"), 2))
		require.NoError(t, c.Set(ctx, KeyPopularBooks, 3))

		require.NoError(t, c.DeletePrefix(ctx, CategoryPrefix()))

		assert.False(t, mr.Exists(defaultPrefix+KeyCategory("Fantasy")))
		assert.False(t, mr.Exists(defaultPrefix+KeyCategory("Poetry")))
		assert.True(t, mr.Exists(defaultPrefix+KeyPopularBooks))
	})
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("loads once and serves from cache", func(t *testing.T) {
		c, _ := newTestCache(t)
		calls := 0
		load := func() ([]payload, error) {
			calls++
			return []payload{{"Dune", 4.5}}, nil
		}

		first, err := GetOrLoad(ctx, c, KeyPopularBooks, load)
		require.NoError(t, err)
		second, err := GetOrLoad(ctx, c, KeyPopularBooks, load)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not cache load errors", func(t *testing.T) {
		c, mr := newTestCache(t)
		_, err := GetOrLoad(ctx, c, KeyPopularBooks, func() (int, error) {
			return 0, errors.New("boom")
		})
		require.Error(t, err)
		assert.False(t, mr.Exists(defaultPrefix+KeyPopularBooks))
	})

	t.Run("falls through to the loader when redis is down", func(t *testing.T) {
		c, mr := newTestCache(t)
		mr.Close()

		v, err := GetOrLoad(ctx, c, KeyPopularBooks, func() (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("noop always loads", func(t *testing.T) {
		calls := 0
		for i := 0; i < 2; i++ {
			_, err := GetOrLoad(ctx, Noop{}, KeyPopularBooks, func() (int, error) {
				calls++
				return calls, nil
			})
			require.NoError(t, err)
		}
		assert.Equal(t, 2, calls)
	})
}
