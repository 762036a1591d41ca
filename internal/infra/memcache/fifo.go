// Package memcache provides an in-process cache with TTL expiry and FIFO eviction.
package memcache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// FIFO is a goroutine-safe key-value store. Entries expire after their TTL and,
// once the entry ceiling is reached, the oldest-inserted entry is evicted.
// Reads do not refresh an entry's position.
type FIFO[V any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List // front = oldest insertion
	items      map[string]*list.Element
	now        func() time.Time
}

// Option configures a FIFO.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a FIFO. maxEntries <= 0 means unbounded; ttl <= 0 means entries
// never expire.
func New[V any](maxEntries int, ttl time.Duration, opts ...Option) *FIFO[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &FIFO[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		items:      make(map[string]*list.Element),
		now:        o.now,
	}
}

// Get returns the value for key. Expired entries are removed and reported absent.
func (c *FIFO[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := el.Value.(*entry[V])
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		c.removeLocked(el)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key. Overwriting a key counts as a new insertion.
func (c *FIFO[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}

	el := c.order.PushBack(&entry[V]{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.items[key] = el

	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.removeLocked(c.order.Front())
	}
}

// Delete removes key.
func (c *FIFO[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Clear removes every entry.
func (c *FIFO[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Len returns the number of stored entries, expired ones included.
func (c *FIFO[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *FIFO[V]) removeLocked(el *list.Element) {
	e := el.Value.(*entry[V])
	delete(c.items, e.key)
	c.order.Remove(el)
}
