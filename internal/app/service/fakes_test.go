package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"game-search-service/internal/domain"
	"game-search-service/internal/policy"
	"game-search-service/internal/ranking"
	"game-search-service/internal/resilience"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// fakeStore mimics a case-insensitive, accent-sensitive substring search.
type fakeStore struct {
	mu      sync.Mutex
	games   []*domain.Game
	failOn  map[string]error
	queries []string
	calls   atomic.Int32
}

func newFakeStore(games ...*domain.Game) *fakeStore {
	for _, g := range games {
		g.Source = domain.SourceLocal
	}
	return &fakeStore{games: games, failOn: map[string]error{}}
}

func (s *fakeStore) SearchByText(_ context.Context, q string, limit int) ([]*domain.Game, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.queries = append(s.queries, q)
	err := s.failOn[q]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q)
	var out []*domain.Game
	for _, g := range s.games {
		if strings.Contains(strings.ToLower(g.Name), needle) {
			out = append(out, g)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// fakeCatalog returns fixed results, optionally after gate is closed.
type fakeCatalog struct {
	games []*domain.Game
	err   error
	gate  chan struct{}
	calls atomic.Int32
}

func (c *fakeCatalog) SearchByText(ctx context.Context, _ string, _ int) ([]*domain.Game, error) {
	c.calls.Add(1)
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.games, nil
}

// spyGuard permits or denies every call and records outcomes.
type spyGuard struct {
	deny     error
	allows   atomic.Int32
	mu       sync.Mutex
	outcomes []resilience.Outcome
}

func (g *spyGuard) Allow(string) (func(resilience.Outcome), error) {
	g.allows.Add(1)
	if g.deny != nil {
		return nil, g.deny
	}
	return func(o resilience.Outcome) {
		g.mu.Lock()
		g.outcomes = append(g.outcomes, o)
		g.mu.Unlock()
	}, nil
}

type fakeWriter struct {
	mu    sync.Mutex
	saved []*domain.Game
	err   error
}

func (w *fakeWriter) UpsertCatalog(_ context.Context, games []*domain.Game) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saved = append(w.saved, games...)
	return w.err
}

// memCache is an in-memory domain.Cache.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
	return nil
}

var errStore = errors.New("store unavailable")

type serviceDeps struct {
	store   *fakeStore
	catalog domain.Catalog
	guard   ExternalGuard
	cache   *ResultCache
	cfg     SearchConfig
	opts    []SearchOption
}

func newTestService(d serviceDeps) *SearchService {
	logger := zap.NewNop()
	if d.cfg == (SearchConfig{}) {
		d.cfg = DefaultSearchConfig()
	}
	if d.cache == nil {
		d.cache = NewResultCache(100, 15*time.Minute, nil, logger)
	}
	scorer := ranking.NewScorer(ranking.DefaultWeights(), ranking.WithClock(func() time.Time { return fixedNow }))
	filter := policy.NewFilter(nil, logger)

	return NewSearchService(d.store, d.catalog, d.guard, filter, scorer, d.cache, d.cfg, logger, d.opts...)
}

func game(name string, mutate ...func(*domain.Game)) *domain.Game {
	g := &domain.Game{
		ID:       strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Name:     name,
		Category: domain.CategoryMainGame,
	}
	for _, m := range mutate {
		m(g)
	}
	return g
}

func withCompany(dev, pub string) func(*domain.Game) {
	return func(g *domain.Game) {
		g.Developer = dev
		g.Publisher = pub
	}
}

func withRating(rating float64, count int) func(*domain.Game) {
	return func(g *domain.Game) {
		g.CriticRating = ptr(rating)
		g.UserRatingCount = ptr(count)
	}
}

func names(results []domain.ScoredGame) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Game.Name
	}
	return out
}
