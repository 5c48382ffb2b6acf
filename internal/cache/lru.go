// Package cache provides the bounded LRU used to memoize accumulated
// effects. Presence of the cache must be unobservable to callers except for
// latency, so it stores values verbatim and never expires by time; entries
// die only by capacity eviction or explicit invalidation.
package cache

import (
	"container/list"
	"sync/atomic"
)

// LRU is a bounded least-recently-used map. It is not safe for concurrent
// mutation; one instance belongs to one engine. The hit/miss counters are
// atomics so an ops endpoint may read them from another goroutine.
type LRU[K comparable, V any] struct {
	capacity int
	ll       *list.List
	items    map[K]*list.Element

	hits   atomic.Uint64
	misses atomic.Uint64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 4096

// NewLRU creates an LRU holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*lruEntry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Put inserts or refreshes key, evicting the least-recently-used entry once
// the capacity is exceeded.
func (c *LRU[K, V]) Put(key K, value V) {
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*lruEntry[K, V]).value = value
		return
	}
	el := c.ll.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.items[key] = el
	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
}

// Remove drops key if present.
func (c *LRU[K, V]) Remove(key K) {
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear drops every entry. Counters are preserved.
func (c *LRU[K, V]) Clear() {
	c.ll.Init()
	clear(c.items)
}

// Resize changes the capacity, evicting oldest entries as needed.
func (c *LRU[K, V]) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c.capacity = capacity
	for c.ll.Len() > c.capacity {
		c.evictOldest()
	}
}

// Len reports the number of live entries.
func (c *LRU[K, V]) Len() int {
	return c.ll.Len()
}

// Capacity reports the configured bound.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Metrics returns cumulative hit and miss counts. Observational only.
func (c *LRU[K, V]) Metrics() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU[K, V]) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruEntry[K, V]).key)
}
