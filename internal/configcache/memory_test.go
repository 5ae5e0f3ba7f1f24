package configcache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestKey(t *testing.T) {
	assert.Equal(t, "shop.myshopify.com-default", Key("shop.myshopify.com", ""))
	assert.Equal(t, "shop.myshopify.com-default", Key("shop.myshopify.com", "0"))
	assert.Equal(t, "shop.myshopify.com-42", Key("shop.myshopify.com", "42"))
}

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[string]()

	_, ok, err := cache.Get(ctx, "a", "")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "a", "", "payload"))
	got, ok, err := cache.Get(ctx, "a", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestMemory_ExpiredEntryIsMissButNotSwept(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewMemory[int](WithClock(clock.Now))

	require.NoError(t, cache.Put(ctx, "a", "1", 7))
	clock.Advance(DefaultTTL - time.Second)
	_, ok, _ := cache.Get(ctx, "a", "1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, _ = cache.Get(ctx, "a", "1")
	assert.False(t, ok)
	assert.Equal(t, []string{"a-1"}, cache.Keys())

	require.NoError(t, cache.Put(ctx, "a", "1", 8))
	got, ok, _ := cache.Get(ctx, "a", "1")
	assert.True(t, ok)
	assert.Equal(t, 8, got)
}

func TestMemory_EvictsInInsertionOrderNotLRU(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[int](WithMaxEntries(3))

	require.NoError(t, cache.Put(ctx, "s", "1", 1))
	require.NoError(t, cache.Put(ctx, "s", "2", 2))
	require.NoError(t, cache.Put(ctx, "s", "3", 3))

	// Reading and overwriting the oldest entry must not protect it.
	_, ok, _ := cache.Get(ctx, "s", "1")
	require.True(t, ok)
	require.NoError(t, cache.Put(ctx, "s", "1", 10))

	require.NoError(t, cache.Put(ctx, "s", "4", 4))

	_, ok, _ = cache.Get(ctx, "s", "1")
	assert.False(t, ok)
	assert.Equal(t, []string{"s-2", "s-3", "s-4"}, cache.Keys())
}

func TestMemory_InvalidateByShopPrefix(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[int]()

	require.NoError(t, cache.Put(ctx, "alpha", "", 1))
	require.NoError(t, cache.Put(ctx, "alpha", "9", 2))
	require.NoError(t, cache.Put(ctx, "beta", "", 3))

	require.NoError(t, cache.Invalidate(ctx, "alpha"))

	assert.Equal(t, []string{"beta-default"}, cache.Keys())
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory[int](WithMaxEntries(16))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				shop := fmt.Sprintf("shop-%d", i%4)
				_ = cache.Put(ctx, shop, fmt.Sprint(i%10), i)
				_, _, _ = cache.Get(ctx, shop, fmt.Sprint(w))
				if i%50 == 0 {
					_ = cache.Invalidate(ctx, shop)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 16)
}

func TestMemory_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	cache := NewMemory[int](WithMaxEntries(1), WithMetrics(metrics))
	_, _, _ = cache.Get(ctx, "a", "")
	_ = cache.Put(ctx, "a", "", 1)
	_, _, _ = cache.Get(ctx, "a", "")
	_ = cache.Put(ctx, "b", "", 2)
	_ = cache.Invalidate(ctx, "b")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.lookups.WithLabelValues(backendMemory, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.lookups.WithLabelValues(backendMemory, "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evictions.WithLabelValues(backendMemory)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.invalidations.WithLabelValues(backendMemory)))
}
