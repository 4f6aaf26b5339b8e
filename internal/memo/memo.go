// Package memo wraps a retrieval function with a bounded, expiring
// key/result cache.
package memo

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/famomatic/ytstream/internal/metrics"
)

const (
	DefaultSize = 10
	DefaultTTL  = 10 * time.Minute
)

// Func is the wrapped retrieval function.
type Func[A, V any] func(ctx context.Context, args A) (V, error)

// Options configure a Cache. Size and TTL are fixed once the cache is built.
type Options[A any] struct {
	// Name labels the cache in metrics.
	Name string
	Size int
	TTL  time.Duration
	// Key derives the cache key from the (remapped) arguments.
	Key func(A) string
	// Remap normalizes arguments before keying, e.g. a link to a video id.
	// A Remap error is returned without calling the wrapped function.
	Remap func(A) (A, error)
	// Coalesce shares one in-flight call among concurrent callers of the
	// same key. Off by default: concurrent misses each call through.
	Coalesce bool
}

// Cache memoizes successful results of a Func. Failures are never stored.
type Cache[A, V any] struct {
	name  string
	fn    Func[A, V]
	key   func(A) string
	remap func(A) (A, error)
	lru   *expirable.LRU[string, V]
	group *singleflight.Group
}

// New builds a Cache around fn.
func New[A, V any](opts Options[A], fn Func[A, V]) *Cache[A, V] {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache[A, V]{
		name:  opts.Name,
		fn:    fn,
		key:   opts.Key,
		remap: opts.Remap,
		lru:   expirable.NewLRU[string, V](size, nil, ttl),
	}
	if opts.Coalesce {
		c.group = &singleflight.Group{}
	}
	return c
}

// Call returns the cached result for args, calling the wrapped function on
// a miss.
func (c *Cache[A, V]) Call(ctx context.Context, args A) (V, error) {
	var zero V
	if c.remap != nil {
		remapped, err := c.remap(args)
		if err != nil {
			return zero, err
		}
		args = remapped
	}
	key := c.key(args)
	if v, ok := c.lru.Get(key); ok {
		metrics.CacheRequests.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}
	metrics.CacheRequests.WithLabelValues(c.name, "miss").Inc()

	if c.group == nil {
		return c.load(ctx, key, args)
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, key, args)
	})
	if err != nil {
		return zero, err
	}
	return v.(V), nil
}

func (c *Cache[A, V]) load(ctx context.Context, key string, args A) (V, error) {
	v, err := c.fn(ctx, args)
	if err != nil {
		return v, err
	}
	c.lru.Add(key, v)
	return v, nil
}

// View exposes the cache for inspection and invalidation only.
func (c *Cache[A, V]) View() *View[V] {
	return &View[V]{name: c.name, lru: c.lru}
}

// View is a read-only handle on a Cache. It can drop entries but not add them.
type View[V any] struct {
	name string
	lru  *expirable.LRU[string, V]
}

func (v *View[V]) Name() string { return v.name }

// Len is the number of live entries.
func (v *View[V]) Len() int { return v.lru.Len() }

// Keys lists live keys from oldest to newest.
func (v *View[V]) Keys() []string { return v.lru.Keys() }

// Peek returns an entry without touching its recency.
func (v *View[V]) Peek(key string) (V, bool) { return v.lru.Peek(key) }

// Remove invalidates one entry.
func (v *View[V]) Remove(key string) bool { return v.lru.Remove(key) }

// Purge drops every entry.
func (v *View[V]) Purge() { v.lru.Purge() }
