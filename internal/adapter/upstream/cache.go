package upstream

import (
	"context"
	"sync"
	"time"

	"github.com/ferrylane/river-conditions/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Getter fetches a URL with extra headers.
type Getter interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error)
}

// CachedGetter wraps a Getter with an in-memory LRU cache whose entries
// expire after a fixed TTL. Entries are keyed by URL only; headers are
// expected to be constant per URL.
type CachedGetter struct {
	inner   Getter
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGetter creates a cache decorator around a Getter.
func NewCachedGetter(inner Getter, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedGetter {
	return &CachedGetter{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedGetter) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	if body, ok := c.cache.get(rawURL); ok {
		c.metrics.ProxyCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.ProxyCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	// Errors are never cached so a failed upstream is retried on the next request.
	c.cache.put(rawURL, body)
	return body, nil
}

// lruCache is a thread-safe LRU cache of response bodies with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
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
