package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// resultCache holds the most recent board result for a fixed window. Each
// put replaces the whole value; readers get their own copy of the records.
type resultCache struct {
	mu        sync.RWMutex
	value     Result
	fetchedAt time.Time
	ok        bool
	ttl       time.Duration
	clock     clockwork.Clock
}

func newResultCache(ttl time.Duration, clock clockwork.Clock) *resultCache {
	return &resultCache{ttl: ttl, clock: clock}
}

func (c *resultCache) get() (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ok || c.clock.Since(c.fetchedAt) >= c.ttl {
		return Result{}, false
	}
	r := c.value
	r.Records = slices.Clone(c.value.Records)
	return r, true
}

func (c *resultCache) put(r Result) {
	r.Records = slices.Clone(r.Records)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = r
	c.fetchedAt = c.clock.Now()
	c.ok = true
}
