package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"game-search-service/internal/domain"
	"game-search-service/internal/infra/memcache"
)

// ResultCache is a two-level cache of ranked search results. L1 is an
// in-process FIFO with TTL; L2 is an optional shared byte cache (Redis).
// Cached results carry no metrics.
type ResultCache struct {
	l1     *memcache.FIFO[*domain.SearchResult]
	l2     domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewResultCache creates a result cache. l2 may be nil.
func NewResultCache(maxEntries int, ttl time.Duration, l2 domain.Cache, logger *zap.Logger, opts ...memcache.Option) *ResultCache {
	return &ResultCache{
		l1:     memcache.New[*domain.SearchResult](maxEntries, ttl, opts...),
		l2:     l2,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached result for key. L2 errors and undecodable L2 payloads
// are treated as misses; undecodable payloads are deleted.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.SearchResult, bool) {
	if res, ok := c.l1.Get(key); ok {
		return res, true
	}
	if c.l2 == nil {
		return nil, false
	}

	data, err := c.l2.Get(ctx, key)
	if err != nil {
		c.logger.Warn("result cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var res domain.SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		if err := c.l2.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to delete corrupt cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	c.l1.Set(key, &res)
	return &res, true
}

// Set stores res under key in both levels.
func (c *ResultCache) Set(ctx context.Context, key string, res *domain.SearchResult) {
	stored := &domain.SearchResult{Results: res.Results, Context: res.Context}
	c.l1.Set(key, stored)

	if c.l2 == nil {
		return
	}
	data, err := json.Marshal(stored)
	if err != nil {
		c.logger.Warn("failed to encode search result", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.l2.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("result cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear empties both levels.
func (c *ResultCache) Clear(ctx context.Context) error {
	c.l1.Clear()
	if c.l2 == nil {
		return nil
	}
	return c.l2.Clear(ctx)
}

// Len returns the number of L1 entries.
func (c *ResultCache) Len() int {
	return c.l1.Len()
}
