package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferrylane/river-conditions/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGetter struct {
	calls int
	body  []byte
	err   error
}

func (m *countingGetter) Get(_ context.Context, _ string, _ map[string]string) ([]byte, error) {
	m.calls++
	return m.body, m.err
}

// --- CachedGetter tests ---

func TestCachedGetter_Hit(t *testing.T) {
	inner := &countingGetter{body: []byte("payload")}
	cached := NewCachedGetter(inner, 10, time.Minute, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	b1, err := cached.Get(context.Background(), "http://flow.test/a", nil)
	require.NoError(t, err)
	b2, err := cached.Get(context.Background(), "http://flow.test/a", nil)
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGetter_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingGetter{body: []byte("payload")}
	cached := NewCachedGetter(inner, 10, time.Minute, clock, observability.NewMetricsForTesting())

	_, _ = cached.Get(context.Background(), "http://flow.test/a", nil)
	clock.Advance(time.Minute)
	_, _ = cached.Get(context.Background(), "http://flow.test/a", nil)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGetter_ErrorsNotCached(t *testing.T) {
	inner := &countingGetter{err: errors.New("boom")}
	cached := NewCachedGetter(inner, 10, time.Minute, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.Get(context.Background(), "http://flow.test/a", nil)
	require.Error(t, err)
	_, err = cached.Get(context.Background(), "http://flow.test/a", nil)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2, time.Hour, clockwork.NewFakeClock())

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	c.put("c", []byte("C")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, []byte("B"), v)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2, time.Hour, clockwork.NewFakeClock())

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	c.get("a")
	c.put("c", []byte("C"))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_PutRefreshesExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newLRUCache(2, time.Minute, clock)

	c.put("a", []byte("A1"))
	clock.Advance(50 * time.Second)
	c.put("a", []byte("A2"))
	clock.Advance(50 * time.Second)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("A2"), v)
}
