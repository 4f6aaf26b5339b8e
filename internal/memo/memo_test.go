package memo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup struct {
	op, id, lang string
}

func keyOf(a lookup) string { return a.op + "-" + a.id + "-" + a.lang }

func TestCallCachesSuccess(t *testing.T) {
	var calls atomic.Int32
	c := New(Options[lookup]{Name: "test", Key: keyOf}, func(ctx context.Context, a lookup) (string, error) {
		calls.Add(1)
		return "info:" + a.id, nil
	})

	for i := 0; i < 3; i++ {
		v, err := c.Call(context.Background(), lookup{"basic", "abc", "en"})
		require.NoError(t, err)
		assert.Equal(t, "info:abc", v)
	}
	assert.EqualValues(t, 1, calls.Load())

	_, err := c.Call(context.Background(), lookup{"basic", "abc", "de"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCallDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	c := New(Options[lookup]{Key: keyOf}, func(ctx context.Context, a lookup) (int, error) {
		calls.Add(1)
		return 0, boom
	})
	for i := 0; i < 2; i++ {
		_, err := c.Call(context.Background(), lookup{id: "x"})
		assert.ErrorIs(t, err, boom)
	}
	assert.EqualValues(t, 2, calls.Load())
	assert.Zero(t, c.View().Len())
}

func TestRemapSharesEntries(t *testing.T) {
	var calls atomic.Int32
	c := New(Options[lookup]{
		Key: keyOf,
		Remap: func(a lookup) (lookup, error) {
			if strings.HasPrefix(a.id, "https://") {
				a.id = a.id[strings.LastIndex(a.id, "=")+1:]
			}
			if a.id == "" {
				return a, errors.New("no id")
			}
			return a, nil
		},
	}, func(ctx context.Context, a lookup) (string, error) {
		calls.Add(1)
		return a.id, nil
	})

	v1, err := c.Call(context.Background(), lookup{"basic", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en"})
	require.NoError(t, err)
	v2, err := c.Call(context.Background(), lookup{"basic", "dQw4w9WgXcQ", "en"})
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, []string{"basic-dQw4w9WgXcQ-en"}, c.View().Keys())

	_, err = c.Call(context.Background(), lookup{"basic", "", "en"})
	assert.EqualError(t, err, "no id")
	assert.EqualValues(t, 1, calls.Load())
}

func TestLRUEviction(t *testing.T) {
	c := New(Options[lookup]{Size: 2, Key: keyOf}, func(ctx context.Context, a lookup) (string, error) {
		return a.id, nil
	})
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := c.Call(ctx, lookup{id: id})
		require.NoError(t, err)
	}
	// touch "a" so "b" becomes the least recently used.
	_, _ = c.Call(ctx, lookup{id: "a"})
	_, _ = c.Call(ctx, lookup{id: "c"})

	view := c.View()
	assert.Equal(t, 2, view.Len())
	_, ok := view.Peek("-b-")
	assert.False(t, ok)
	_, ok = view.Peek("-a-")
	assert.True(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	var calls atomic.Int32
	c := New(Options[lookup]{TTL: 30 * time.Millisecond, Key: keyOf}, func(ctx context.Context, a lookup) (int32, error) {
		return calls.Add(1), nil
	})
	ctx := context.Background()
	first, _ := c.Call(ctx, lookup{id: "a"})
	require.Eventually(t, func() bool {
		v, _ := c.Call(ctx, lookup{id: "a"})
		return v != first
	}, time.Second, 10*time.Millisecond)
}

func TestViewInvalidation(t *testing.T) {
	var calls atomic.Int32
	c := New(Options[lookup]{Key: keyOf}, func(ctx context.Context, a lookup) (int32, error) {
		return calls.Add(1), nil
	})
	ctx := context.Background()
	_, _ = c.Call(ctx, lookup{id: "a"})
	_, _ = c.Call(ctx, lookup{id: "b"})

	view := c.View()
	assert.True(t, view.Remove("-a-"))
	assert.Equal(t, 1, view.Len())
	view.Purge()
	assert.Zero(t, view.Len())

	_, _ = c.Call(ctx, lookup{id: "a"})
	assert.EqualValues(t, 3, calls.Load())
}

func TestConcurrentMissesWithoutCoalescing(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := New(Options[lookup]{Key: keyOf}, func(ctx context.Context, a lookup) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Call(context.Background(), lookup{id: "same"})
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()
}

func TestCoalesceSharesInFlightCall(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	c := New(Options[lookup]{Key: keyOf, Coalesce: true}, func(ctx context.Context, a lookup) (int, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return 7, nil
	})

	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Call(context.Background(), lookup{id: "same"})
		}(i)
	}
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []int{7, 7, 7, 7}, results)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, c.View().Len())
}
