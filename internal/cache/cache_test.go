package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("k", 42, time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expired(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("k", "v", -time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.purgeExpired(time.Now())
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidateByPrefix(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("sheet:rows:Sessions", 1, time.Minute)
	c.Set("sheet:header:Sessions", 2, time.Minute)
	c.Set("other", 3, time.Minute)

	c.InvalidateByPrefix("sheet:")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("other")
	assert.True(t, ok)
}

func TestCache_GetOrSet(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	calls := 0
	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return "computed", nil
	}

	v, hit, err := c.GetOrSet(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "computed", v)

	v, hit, err = c.GetOrSet(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrSetDoesNotCacheErrors(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	_, _, err := c.GetOrSet(context.Background(), "k", time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(time.Millisecond)
	c.Close()
	c.Close()
}

func TestCache_GetOrSetConcurrentMissesLoadOnce(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "rows", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, 8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _, _ = c.GetOrSet(context.Background(), "sheet:rows", time.Minute, fn)
	}()
	<-started

	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, _ = c.GetOrSet(context.Background(), "sheet:rows", time.Minute, fn)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "rows", r)
	}
}
