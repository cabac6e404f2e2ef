package snowpilot

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/whiteroomlabs/snowpit-etl/internal/observability"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed by the
// encoded query. Repeated fetches for the same window skip the network.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchArchive(ctx context.Context, q Query) (Archive, error) {
	key := q.Encode()
	if archive, ok := c.cache.get(key); ok {
		c.observe("hit")
		return archive, nil
	}
	c.observe("miss")

	archive, err := c.inner.FetchArchive(ctx, q)
	if err != nil {
		return archive, err
	}
	// Only cache non-empty archives so a window that fills in later can be
	// fetched again.
	if len(archive.Data) > 0 {
		c.cache.put(key, archive)
	}
	return archive, nil
}

func (c *CachedFetcher) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.FetchCache.With(prometheus.Labels{"result": result}).Inc()
}

// lruCache is a simple thread-safe LRU cache for downloaded archives.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Archive
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (Archive, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Archive{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value Archive) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
