// Package cache provides a small thread-safe LRU cache with optional
// per-entry expiry.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LRU holds at most maxEntries values, evicting the least recently used one
// on overflow. Entries older than ttl are treated as absent; a ttl of zero
// disables expiry.
type LRU[K comparable, V any] struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// New creates an LRU. A nil clock uses real time. maxEntries below one is
// treated as one.
func New[K comparable, V any](maxEntries int, ttl time.Duration, clock clockwork.Clock) *LRU[K, V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LRU[K, V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		order:      list.New(),
		entries:    make(map[K]*list.Element),
	}
}

// Get returns the value for key and promotes it. Expired entries are removed.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e) {
		c.removeElement(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Put stores value under key, replacing and refreshing any existing entry.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.storedAt = now
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, storedAt: now})
	for c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
	}
}

// Delete drops key if present.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}
}

// Len reports the number of stored entries, expired ones included until
// they are next touched.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return c.ttl > 0 && c.clock.Since(e.storedAt) >= c.ttl
}

func (c *LRU[K, V]) removeElement(el *list.Element) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.entries, e.key)
}
