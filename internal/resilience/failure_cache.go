package resilience

import (
	"sync"
	"time"

	"game-search-service/internal/textnorm"
)

// FailureCache remembers recently failed queries and refuses the same query
// until its cooldown expires.
type FailureCache struct {
	mu         sync.Mutex
	cooldown   time.Duration
	maxEntries int
	entries    map[string]time.Time // normalized query -> expiry
	now        func() time.Time
}

// NewFailureCache creates an empty cache.
func NewFailureCache(cooldown time.Duration, maxEntries int, now func() time.Time) *FailureCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &FailureCache{
		cooldown:   cooldown,
		maxEntries: maxEntries,
		entries:    make(map[string]time.Time),
		now:        now,
	}
}

// Add marks query as failed from now.
func (c *FailureCache) Add(query string) {
	key := textnorm.Normalize(query)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.pruneLocked(now)
	}
	if len(c.entries) >= c.maxEntries {
		// Still full: drop the entry closest to expiry.
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, exp := range c.entries {
			if oldestKey == "" || exp.Before(oldest) {
				oldestKey, oldest = k, exp
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = now.Add(c.cooldown)
}

// Blocked reports whether query is cooling down and for how much longer.
func (c *FailureCache) Blocked(query string) (time.Duration, bool) {
	key := textnorm.Normalize(query)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if !now.Before(exp) {
		delete(c.entries, key)
		return 0, false
	}
	return exp.Sub(now), true
}

// Len returns the number of tracked queries, expired ones included.
func (c *FailureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset forgets every failure.
func (c *FailureCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]time.Time)
	c.mu.Unlock()
}

func (c *FailureCache) pruneLocked(now time.Time) {
	for k, exp := range c.entries {
		if !now.Before(exp) {
			delete(c.entries, k)
		}
	}
}
