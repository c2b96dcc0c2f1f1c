// Package archcache caches opened archive handles by path, so that
// repeated lookups against the same archive (e.g. listing many entries,
// or extracting many files from one archive) reuse a single opened
// handle instead of re-running the peel loop and re-parsing headers
// every time.
package archcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	archreader "github.com/desertwitch/archreader"
	"github.com/desertwitch/archreader/internal/metrics"
	"github.com/desertwitch/archreader/internal/seekio"
	"github.com/jellydator/ttlcache/v3"
)

// Handle is a reference-counted, cache-managed archive handle.
//
// It is acquired with a caller reference already held (a fresh handle
// always starts at refcount one), so a one-shot caller only needs to
// call Release once after use.
type Handle struct {
	archreader.Archive

	path     string
	refCount atomic.Int32
	onZero   func()
}

// Acquire increments the reference count. Call this whenever a Handle
// already obtained from the cache is going to be reused more than once
// (e.g. handed to multiple concurrent readers).
func (h *Handle) Acquire() {
	h.refCount.Add(1)
}

// Release decrements the reference count, closing the underlying
// archive once it reaches zero.
func (h *Handle) Release() error {
	if h.refCount.Add(-1) == 0 {
		if h.onZero != nil {
			h.onZero()
		}

		metrics.OpenArchives.Add(-1)
		metrics.TotalClosed.Add(1)

		return h.Archive.Close() //nolint:wrapcheck
	}

	return nil
}

// Cache is a TTL- and capacity-bounded cache of open [Handle]s, keyed
// by archive path.
type Cache struct {
	mu     sync.Mutex
	cache  *ttlcache.Cache[string, *Handle]
	bypass atomic.Bool
}

// New creates a Cache holding up to size entries, each evicted after
// ttl of disuse. Eviction releases the cached reference; the handle
// itself stays open for as long as any caller still holds a reference.
func New(size int, ttl time.Duration) *Cache {
	c := &Cache{}

	c.cache = ttlcache.New(
		ttlcache.WithTTL[string, *Handle](ttl),
		ttlcache.WithCapacity[string, *Handle](uint64(size)), //nolint:gosec
	)

	c.cache.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[string, *Handle]) {
		if h := item.Value(); h != nil {
			c.mu.Lock()
			defer c.mu.Unlock()

			_ = h.Release()
		}
	})

	go c.cache.Start()

	return c
}

// SetBypass toggles whether Acquire skips the cache entirely, opening
// (and closing) a fresh handle on every call.
func (c *Cache) SetBypass(v bool) {
	c.bypass.Store(v)
}

// Acquire returns an open [Handle] for path, reusing a cached one when
// possible. The caller must call Release exactly once when done.
func (c *Cache) Acquire(path string) (*Handle, error) {
	if c.bypass.Load() {
		h, err := c.open(path)
		if err != nil {
			return nil, err
		}

		return h, nil
	}

	c.mu.Lock()

	var openErr error

	item, hit := c.cache.GetOrSetFunc(path, func() *Handle {
		h, err := c.open(path)
		if err != nil {
			openErr = err

			return nil
		}

		return h
	})
	if openErr != nil {
		c.mu.Unlock()

		return nil, openErr
	}
	if item == nil || item.Value() == nil {
		c.mu.Unlock()

		return nil, errCacheItemNil
	}

	h := item.Value()
	h.Acquire() // cache holds one ref, add another for the caller

	c.mu.Unlock()

	if hit {
		metrics.TotalCacheHits.Add(1)
	} else {
		metrics.TotalCacheMisses.Add(1)
	}

	return h, nil
}

func (c *Cache) open(path string) (*Handle, error) {
	f, err := seekio.Open(path, "rb")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	a, status, err := archreader.Open(f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if status != archreader.StatusOK {
		_ = f.Close()

		return nil, fmt.Errorf("open %s: %w", path, statusError(status))
	}

	metrics.OpenArchives.Add(1)
	metrics.TotalOpened.Add(1)

	h := &Handle{Archive: a, path: path}
	h.Acquire() // initial reference: the cache's own, or the caller's in bypass mode

	return h, nil
}
