// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package cache

import (
	"sync"
	"time"
)

// EvictReason tells an eviction callback why an entry left the cache.
type EvictReason string

const (
	EvictCapacity EvictReason = "capacity"
	EvictExpired  EvictReason = "expired"
	EvictRemoved  EvictReason = "removed"
)

type lruEntry[V any] struct {
	key       string
	value     V
	prev      *lruEntry[V]
	next      *lruEntry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with sliding TTL.
// Every Get refreshes both recency and expiry.
//
// The eviction callback runs after the lock is released, so it may call
// back into the cache.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time
	onEvict  func(key string, value V, reason EvictReason)

	items map[string]*lruEntry[V]

	// head.next is the most recently used, tail.prev the least.
	head *lruEntry[V]
	tail *lruEntry[V]

	hits   int64
	misses int64
}

// NewLRU creates an LRU. onEvict may be nil.
func NewLRU[V any](capacity int, ttl time.Duration, onEvict func(key string, value V, reason EvictReason)) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		onEvict:  onEvict,
		items:    make(map[string]*lruEntry[V], capacity),
		head:     &lruEntry[V]{},
		tail:     &lruEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

type eviction[V any] struct {
	key    string
	value  V
	reason EvictReason
}

func (c *LRU[V]) notify(evicted []eviction[V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range evicted {
		c.onEvict(e.key, e.value, e.reason)
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	e, exists := c.items[key]
	if !exists {
		c.misses++
		c.mu.Unlock()
		return zero, false
	}

	now := c.now()
	if now.After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		c.mu.Unlock()
		c.notify([]eviction[V]{{key: e.key, value: e.value, reason: EvictExpired}})
		return zero, false
	}

	e.expiresAt = now.Add(c.ttl)
	c.moveToFront(e)
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Peek returns the value for key without touching recency or expiry.
func (c *LRU[V]) Peek(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[key]
	if !exists || c.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Add inserts or replaces key. Replacing does not fire the callback for the old value.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()

	expiresAt := c.now().Add(c.ttl)
	if e, exists := c.items[key]; exists {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		c.mu.Unlock()
		return
	}

	e := &lruEntry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	var evicted []eviction[V]
	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		c.removeEntry(oldest)
		evicted = append(evicted, eviction[V]{key: oldest.key, value: oldest.value, reason: EvictCapacity})
	}
	c.mu.Unlock()

	c.notify(evicted)
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	e, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return false
	}
	c.removeEntry(e)
	c.mu.Unlock()

	c.notify([]eviction[V]{{key: e.key, value: e.value, reason: EvictRemoved}})
	return true
}

// Len returns the number of entries, expired ones included until cleaned up.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns keys from most to least recently used.
func (c *LRU[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Purge removes every entry, firing the callback for each.
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	evicted := make([]eviction[V], 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		evicted = append(evicted, eviction[V]{key: e.key, value: e.value, reason: EvictRemoved})
	}
	c.items = make(map[string]*lruEntry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.mu.Unlock()

	c.notify(evicted)
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	now := c.now()
	var evicted []eviction[V]
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			evicted = append(evicted, eviction[V]{key: e.key, value: e.value, reason: EvictExpired})
		}
		e = prev
	}
	c.mu.Unlock()

	c.notify(evicted)
	return len(evicted)
}

// Stats returns hit and miss counts and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods, called with the lock held.

func (c *LRU[V]) addToFront(e *lruEntry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *lruEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *lruEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
