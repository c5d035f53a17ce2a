package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStringCache(t *testing.T, maxEntries int) *LoaderCache[string, int] {
	t.Helper()

	c, err := NewLoaderCache[string, int](maxEntries, func(k string) string { return k })
	require.NoError(t, err)

	return c
}

func TestLoaderCache_Get(t *testing.T) {
	t.Run("loads on miss and caches", func(t *testing.T) {
		c := newStringCache(t, 8)
		loads := 0

		load := func(_ context.Context, _ string) (int, error) {
			loads++
			return 42, nil
		}

		v, err := c.Get(context.Background(), "a", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)

		v, err = c.Get(context.Background(), "a", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 1, loads, "second Get should be served from cache")
	})

	t.Run("load error is not cached", func(t *testing.T) {
		c := newStringCache(t, 8)
		boom := errors.New("boom")
		calls := 0

		_, err := c.Get(context.Background(), "a", func(_ context.Context, _ string) (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)

		v, err := c.Get(context.Background(), "a", func(_ context.Context, _ string) (int, error) {
			calls++
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.Equal(t, 2, calls)
	})

	t.Run("concurrent misses coalesce to one load", func(t *testing.T) {
		c := newStringCache(t, 8)

		var loads atomic.Int32

		start := make(chan struct{})
		load := func(_ context.Context, _ string) (int, error) {
			loads.Add(1)
			<-start
			return 1, nil
		}

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.Get(context.Background(), "k", load)
				assert.NoError(t, err)
				assert.Equal(t, 1, v)
			}()
		}

		close(start)
		wg.Wait()
		assert.Equal(t, int32(1), loads.Load())
	})
}

func TestLoaderCache_Invalidate(t *testing.T) {
	c := newStringCache(t, 8)

	_, err := c.Get(context.Background(), "a", func(_ context.Context, _ string) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	c.Invalidate("a")
	assert.Equal(t, 0, c.Len())
}
