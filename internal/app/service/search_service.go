// Package service provides application use cases.
package service

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"game-search-service/internal/domain"
	"game-search-service/internal/policy"
	"game-search-service/internal/query"
	"game-search-service/internal/ranking"
	"game-search-service/internal/resilience"
	"game-search-service/internal/textnorm"
)

// maxResultsCeiling bounds caller-supplied result counts.
const maxResultsCeiling = 200

// SearchConfig holds the tunables of the search coordinator.
type SearchConfig struct {
	MaxExecutedQueries          int
	LocalConcurrency            int
	LocalLimit                  int // per expanded query
	LocalTimeout                time.Duration
	EarlyStopThreshold          int
	FranchiseEarlyStopThreshold int
	FallbackThreshold           int // external is consulted below this many local results
	ExternalLimit               int
	ExternalTimeout             time.Duration
	FastModeLimit               int
	PersistExternal             bool
}

// DefaultSearchConfig returns production defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxExecutedQueries:          5,
		LocalConcurrency:            2,
		LocalLimit:                  100,
		LocalTimeout:                5 * time.Second,
		EarlyStopThreshold:          150,
		FranchiseEarlyStopThreshold: 250,
		FallbackThreshold:           2,
		ExternalLimit:               50,
		ExternalTimeout:             3 * time.Second,
		FastModeLimit:               8,
	}
}

// ExternalGuard decides whether the external catalog may be called.
// Implementations: internal/resilience/guard.go
type ExternalGuard interface {
	Allow(query string) (func(resilience.Outcome), error)
}

// CatalogWriter persists external catalog records locally.
// Implementations: internal/infra/postgres/repository.go
type CatalogWriter interface {
	UpsertCatalog(ctx context.Context, games []*domain.Game) error
}

// phase is a step of the search state machine, used for timings.
type phase int

const (
	phaseContextBuilt phase = iota
	phaseCacheCheck
	phaseLocalSearch
	phaseExternalFallback
	phaseMergeFilterScore
	phaseCached
)

func (p phase) String() string {
	switch p {
	case phaseContextBuilt:
		return "context_built"
	case phaseCacheCheck:
		return "cache_check"
	case phaseLocalSearch:
		return "local_search"
	case phaseExternalFallback:
		return "external_fallback"
	case phaseMergeFilterScore:
		return "merge_filter_score"
	case phaseCached:
		return "cached"
	default:
		return "unknown"
	}
}

// phaseTimer accumulates the time spent since the previous mark.
type phaseTimer struct {
	now       func() time.Time
	last      time.Time
	durations map[string]time.Duration
	logger    *zap.Logger
}

func newPhaseTimer(now func() time.Time, logger *zap.Logger) *phaseTimer {
	return &phaseTimer{now: now, last: now(), durations: make(map[string]time.Duration), logger: logger}
}

func (t *phaseTimer) mark(p phase) {
	n := t.now()
	d := n.Sub(t.last)
	t.last = n
	t.durations[p.String()] += d
	t.logger.Debug("search phase done", zap.Stringer("phase", p), zap.Duration("duration", d))
}

// execution is the shared outcome of one search, handed to every caller that
// joined it.
type execution struct {
	result  *domain.SearchResult
	metrics domain.SearchMetrics
}

// SearchService coordinates local search, guarded external fallback, policy
// filtering, scoring and caching.
type SearchService struct {
	store    domain.GameStore
	catalog  domain.Catalog
	guard    ExternalGuard
	filter   *policy.Filter
	scorer   *ranking.Scorer
	cache    *ResultCache
	writer   CatalogWriter
	inflight singleflight.Group
	cfg      SearchConfig
	now      func() time.Time
	logger   *zap.Logger
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithCatalogWriter persists external results when cfg.PersistExternal is set.
func WithCatalogWriter(w CatalogWriter) SearchOption {
	return func(s *SearchService) {
		s.writer = w
	}
}

// WithSearchClock overrides the clock used for timings.
func WithSearchClock(now func() time.Time) SearchOption {
	return func(s *SearchService) {
		s.now = now
	}
}

// NewSearchService creates a new SearchService. catalog and guard may be nil,
// which disables the external fallback.
func NewSearchService(
	store domain.GameStore,
	catalog domain.Catalog,
	guard ExternalGuard,
	filter *policy.Filter,
	scorer *ranking.Scorer,
	cache *ResultCache,
	cfg SearchConfig,
	logger *zap.Logger,
	opts ...SearchOption,
) *SearchService {
	cfg.LocalConcurrency = max(cfg.LocalConcurrency, 1)
	cfg.MaxExecutedQueries = max(cfg.MaxExecutedQueries, 1)

	s := &SearchService{
		store:   store,
		catalog: catalog,
		guard:   guard,
		filter:  filter,
		scorer:  scorer,
		cache:   cache,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs the full search pipeline for query. Only an invalid query is an
// error; store and catalog failures degrade the result instead.
func (s *SearchService) Search(ctx context.Context, q string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	start := s.now()

	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxQueryLength {
		return nil, fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidQuery, domain.MaxQueryLength)
	}

	if opts.FastMode {
		return s.fastSearch(ctx, trimmed, opts, start), nil
	}

	sctx := s.buildContext(trimmed, opts)

	flightKey := sctx.CacheKey
	if opts.BypassCache {
		flightKey += "|bypass"
	}

	// The shared execution must not die with the first caller's context.
	sharedCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(flightKey, func() (any, error) {
		return s.execute(sharedCtx, sctx, opts.UseAggressive, opts.BypassCache), nil
	})

	var exec *execution
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		exec = r.Val.(*execution)
		if r.Shared {
			s.logger.Debug("joined in-flight search", zap.String("cache_key", sctx.CacheKey))
		}
	}

	result := &domain.SearchResult{Results: exec.result.Results, Context: exec.result.Context}
	if opts.IncludeMetrics {
		m := exec.metrics
		m.RequestID = uuid.NewString()
		m.TotalDuration = s.now().Sub(start)
		m.PhaseDurations = maps.Clone(exec.metrics.PhaseDurations)
		result.Metrics = &m
	}

	return result, nil
}

// Clear empties the result cache.
func (s *SearchService) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *SearchService) buildContext(trimmed string, opts domain.SearchOptions) domain.SearchContext {
	intent := query.Classify(trimmed)

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = intent.MaxResults()
	}
	maxResults = min(maxResults, maxResultsCeiling)

	return domain.SearchContext{
		OriginalQuery:    trimmed,
		ExpandedQueries:  query.Prioritize(query.Expand(trimmed, intent), trimmed),
		Intent:           intent,
		QualityThreshold: intent.QualityThreshold(),
		MaxResults:       maxResults,
		CacheKey:         domain.BuildCacheKey(textnorm.Normalize(trimmed), intent, maxResults, opts.UseAggressive),
	}
}

func (s *SearchService) execute(ctx context.Context, sctx domain.SearchContext, aggressive, bypassCache bool) *execution {
	timer := newPhaseTimer(s.now, s.logger)
	timer.mark(phaseContextBuilt)

	exec := &execution{}
	m := &exec.metrics
	m.PhaseDurations = timer.durations

	if !bypassCache {
		cached, ok := s.cache.Get(ctx, sctx.CacheKey)
		timer.mark(phaseCacheCheck)
		if ok {
			m.CacheHit = true
			m.ResultCount = len(cached.Results)
			exec.result = cached
			return exec
		}
	}

	local, used, failures := s.searchLocal(ctx, &sctx)
	m.LocalResults = len(local)
	m.ExpandedQueriesUsed = used
	m.LocalFailures = failures
	timer.mark(phaseLocalSearch)

	var external []*domain.Game
	if len(local) < s.cfg.FallbackThreshold {
		var reason string
		external, reason = s.searchExternal(ctx, sctx.OriginalQuery)
		if reason != "" {
			m.ExternalSkipReason = reason
		} else {
			n := len(external)
			m.ExternalResults = &n
		}
	} else {
		m.ExternalSkipReason = "sufficient local results"
	}
	timer.mark(phaseExternalFallback)

	merged := merge(local, external)

	bypass := policy.ShouldBypass(sctx.Intent, sctx.OriginalQuery, aggressive)
	kept, suppressed := s.filter.Apply(merged, bypass)
	m.FilteredByPolicy = suppressed

	scored := s.scorer.ScoreAll(kept, &sctx)
	results := scored[:0]
	for _, sg := range scored {
		if sg.Score.Quality < sctx.QualityThreshold {
			m.FilteredByQuality++
			continue
		}
		results = append(results, sg)
	}
	ranking.Sort(results)
	if len(results) > sctx.MaxResults {
		results = results[:sctx.MaxResults]
	}
	m.ResultCount = len(results)
	timer.mark(phaseMergeFilterScore)

	exec.result = &domain.SearchResult{Results: results, Context: sctx}
	s.cache.Set(ctx, sctx.CacheKey, exec.result)
	timer.mark(phaseCached)

	s.logger.Info("search completed",
		zap.String("query", sctx.OriginalQuery),
		zap.Stringer("intent", sctx.Intent),
		zap.Int("results", m.ResultCount),
		zap.Int("local", m.LocalResults),
		zap.Int("policy_filtered", m.FilteredByPolicy),
		zap.Int("quality_filtered", m.FilteredByQuality),
	)

	return exec
}

// searchLocal runs the prioritized expanded queries in batches, keeping unique
// games in priority order, and stops once enough games were found. A failing
// query contributes nothing.
func (s *SearchService) searchLocal(ctx context.Context, sctx *domain.SearchContext) ([]*domain.Game, int, int) {
	queries := sctx.ExpandedQueries[:min(len(sctx.ExpandedQueries), s.cfg.MaxExecutedQueries)]

	threshold := s.cfg.EarlyStopThreshold
	if sctx.Intent == domain.IntentFranchiseBrowse {
		threshold = s.cfg.FranchiseEarlyStopThreshold
	}

	var (
		games    []*domain.Game
		seen     = make(map[string]bool)
		used     int
		failures int
	)

	for start := 0; start < len(queries); start += s.cfg.LocalConcurrency {
		batch := queries[start:min(start+s.cfg.LocalConcurrency, len(queries))]
		slots := make([][]*domain.Game, len(batch))
		errs := make([]error, len(batch))

		var wg sync.WaitGroup
		for i, q := range batch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lctx, cancel := context.WithTimeout(ctx, s.cfg.LocalTimeout)
				defer cancel()
				slots[i], errs[i] = s.store.SearchByText(lctx, q, s.cfg.LocalLimit)
			}()
		}
		wg.Wait()
		used += len(batch)

		for i, q := range batch {
			if errs[i] != nil {
				failures++
				s.logger.Warn("local search failed for expanded query",
					zap.String("query", q),
					zap.Error(errs[i]),
				)
				continue
			}
			for _, g := range slots[i] {
				if g == nil {
					continue
				}
				key := g.IdentityKey()
				if seen[key] {
					continue
				}
				seen[key] = true
				games = append(games, g)
			}
		}

		if len(games) >= threshold {
			s.logger.Debug("local search stopped early",
				zap.Int("results", len(games)),
				zap.Int("queries_used", used),
			)
			break
		}
	}

	return games, used, failures
}

// searchExternal makes at most one guarded catalog call. It returns a non-empty
// reason when no catalog results were obtained.
func (s *SearchService) searchExternal(ctx context.Context, q string) ([]*domain.Game, string) {
	if s.catalog == nil || s.guard == nil {
		return nil, "external source disabled"
	}

	done, err := s.guard.Allow(q)
	if err != nil {
		if deny, ok := resilience.IsDenied(err); ok {
			s.logger.Warn("external call denied",
				zap.String("query", q),
				zap.String("component", deny.Component),
				zap.String("reason", deny.Reason),
			)
		}
		return nil, err.Error()
	}

	ectx, cancel := context.WithTimeout(ctx, s.cfg.ExternalTimeout)
	start := s.now()
	games, err := s.catalog.SearchByText(ectx, q, s.cfg.ExternalLimit)
	cancel()
	done(resilience.Outcome{Err: err, Duration: s.now().Sub(start), Results: len(games)})

	if err != nil {
		s.logger.Warn("external search failed", zap.String("query", q), zap.Error(err))
		return nil, "external call failed"
	}

	out := make([]*domain.Game, 0, len(games))
	for _, g := range games {
		if g != nil {
			out = append(out, g.WithSource(domain.SourceExternal))
		}
	}

	if s.cfg.PersistExternal && s.writer != nil && len(out) > 0 {
		if err := s.writer.UpsertCatalog(ctx, out); err != nil {
			s.logger.Warn("failed to persist external results", zap.Error(err))
		}
	}

	return out, ""
}

// merge appends external games to local ones. An external game whose catalog id
// is already present locally replaces that local game with a merged copy.
func merge(local, external []*domain.Game) []*domain.Game {
	if len(external) == 0 {
		return local
	}

	byExternalID := make(map[int64]int, len(local))
	out := make([]*domain.Game, len(local), len(local)+len(external))
	for i, g := range local {
		out[i] = g
		if g.ExternalID != 0 {
			byExternalID[g.ExternalID] = i
		}
	}

	added := make(map[int64]bool, len(external))
	for _, g := range external {
		if i, ok := byExternalID[g.ExternalID]; ok && g.ExternalID != 0 {
			out[i] = out[i].MergeFrom(g)
			continue
		}
		if g.ExternalID != 0 {
			if added[g.ExternalID] {
				continue
			}
			added[g.ExternalID] = true
		}
		out = append(out, g)
	}

	return out
}

// fastSearch returns raw local matches for the query alone, without expansion,
// policy or scoring.
func (s *SearchService) fastSearch(ctx context.Context, trimmed string, opts domain.SearchOptions, start time.Time) *domain.SearchResult {
	limit := s.cfg.FastModeLimit
	if opts.MaxResults > 0 {
		limit = min(limit, opts.MaxResults)
	}

	lctx, cancel := context.WithTimeout(ctx, s.cfg.LocalTimeout)
	defer cancel()

	failures := 0
	games, err := s.store.SearchByText(lctx, trimmed, limit)
	if err != nil {
		failures = 1
		s.logger.Warn("fast search failed", zap.String("query", trimmed), zap.Error(err))
	}

	results := make([]domain.ScoredGame, 0, min(len(games), limit))
	for _, g := range games {
		if g == nil || len(results) == limit {
			continue
		}
		results = append(results, domain.ScoredGame{Game: g})
	}

	intent := query.Classify(trimmed)
	res := &domain.SearchResult{
		Results: results,
		Context: domain.SearchContext{
			OriginalQuery:    trimmed,
			ExpandedQueries:  []string{trimmed},
			Intent:           intent,
			QualityThreshold: intent.QualityThreshold(),
			MaxResults:       limit,
		},
	}
	if opts.IncludeMetrics {
		res.Metrics = &domain.SearchMetrics{
			RequestID:           uuid.NewString(),
			TotalDuration:       s.now().Sub(start),
			ResultCount:         len(results),
			LocalResults:        len(games),
			ExpandedQueriesUsed: 1,
			LocalFailures:       failures,
			ExternalSkipReason:  "fast mode",
		}
	}
	return res
}
