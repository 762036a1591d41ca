package ranking

import (
	"sort"
	"time"

	"game-search-service/internal/domain"
)

// Scorer computes sub-scores and the composite score of candidates.
// A Scorer holds no per-candidate state and is safe for concurrent use.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock sets the clock used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

// NewScorer creates a Scorer. Negative weights are treated as zero; an all-zero
// blend falls back to DefaultWeights.
func NewScorer(w Weights, opts ...Option) *Scorer {
	w = Weights{
		Relevance:  max(w.Relevance, 0),
		Legitimacy: max(w.Legitimacy, 0),
		Canonical:  max(w.Canonical, 0),
		Quality:    max(w.Quality, 0),
		Popularity: max(w.Popularity, 0),
		Recency:    max(w.Recency, 0),
	}
	if w.sum() == 0 {
		w = DefaultWeights()
	}

	s := &Scorer{weights: w, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes every sub-score of g for the given context.
func (s *Scorer) Score(g *domain.Game, sctx *domain.SearchContext) domain.Score {
	return s.score(g, analyze(sctx.OriginalQuery), s.now())
}

// ScoreAll scores each game, preserving input order. The query is analyzed once.
func (s *Scorer) ScoreAll(games []*domain.Game, sctx *domain.SearchContext) []domain.ScoredGame {
	q := analyze(sctx.OriginalQuery)
	now := s.now()

	out := make([]domain.ScoredGame, 0, len(games))
	for _, g := range games {
		if g == nil {
			continue
		}
		out = append(out, domain.ScoredGame{Game: g, Score: s.score(g, q, now)})
	}
	return out
}

// score computes the composite score.
//
// Formula:
//
//	Composite = Σ(weight_i * subscore_i) / Σ(weight_i), clamped to [0,1]
//
// Sub-scores: relevance, legitimacy, canonical, quality, popularity, recency.
func (s *Scorer) score(g *domain.Game, q *analyzedQuery, now time.Time) domain.Score {
	sc := domain.Score{
		Relevance:  relevance(g, q),
		Quality:    quality(g),
		Legitimacy: legitimacy(g, q),
		Canonical:  canonical(g, q),
		Popularity: popularity(g),
		Recency:    recency(g, now),
	}

	w := s.weights
	total := w.Relevance*sc.Relevance +
		w.Legitimacy*sc.Legitimacy +
		w.Canonical*sc.Canonical +
		w.Quality*sc.Quality +
		w.Popularity*sc.Popularity +
		w.Recency*sc.Recency
	sc.Composite = clamp01(total / w.sum())

	return sc
}

// Sort orders scored games by composite score, descending. Ties keep input order.
func Sort(scored []domain.ScoredGame) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Composite > scored[j].Score.Composite
	})
}
