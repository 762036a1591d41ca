package dto

import (
	"time"

	"game-search-service/internal/app/service"
	"game-search-service/internal/domain"
)

// GameResponse is one ranked game.
type GameResponse struct {
	ID              string   `json:"id,omitempty"`
	ExternalID      int64    `json:"external_id,omitempty"`
	Name            string   `json:"name"`
	Summary         string   `json:"summary,omitempty"`
	Developer       string   `json:"developer,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	Category        string   `json:"category"`
	Genres          []string `json:"genres,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	ReleaseDate     string   `json:"release_date,omitempty"`
	CriticRating    *float64 `json:"critic_rating,omitempty"`
	UserRatingCount *int     `json:"user_rating_count,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Source          string   `json:"source"`
	Score           Score    `json:"score"`
}

// Score mirrors domain.Score.
type Score struct {
	Composite  float64 `json:"composite"`
	Relevance  float64 `json:"relevance"`
	Legitimacy float64 `json:"legitimacy"`
	Canonical  float64 `json:"canonical"`
	Quality    float64 `json:"quality"`
	Popularity float64 `json:"popularity"`
	Recency    float64 `json:"recency"`
}

// FromScoredGame converts a ranked candidate.
func FromScoredGame(sg domain.ScoredGame) GameResponse {
	g := sg.Game
	resp := GameResponse{
		ID:              g.ID,
		ExternalID:      g.ExternalID,
		Name:            g.Name,
		Summary:         g.Summary,
		Developer:       g.Developer,
		Publisher:       g.Publisher,
		Category:        g.Category.String(),
		Genres:          g.Genres,
		Platforms:       g.Platforms,
		CriticRating:    g.CriticRating,
		UserRatingCount: g.UserRatingCount,
		CoverURL:        g.CoverURL,
		Source:          string(g.Source),
		Score: Score{
			Composite:  sg.Score.Composite,
			Relevance:  sg.Score.Relevance,
			Legitimacy: sg.Score.Legitimacy,
			Canonical:  sg.Score.Canonical,
			Quality:    sg.Score.Quality,
			Popularity: sg.Score.Popularity,
			Recency:    sg.Score.Recency,
		},
	}
	if g.ReleaseDate != nil {
		resp.ReleaseDate = g.ReleaseDate.Format(time.DateOnly)
	}
	return resp
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Query           string           `json:"query"`
	Intent          string           `json:"intent"`
	ExpandedQueries []string         `json:"expanded_queries"`
	MaxResults      int              `json:"max_results"`
	Count           int              `json:"count"`
	Results         []GameResponse   `json:"results"`
	Metrics         *MetricsResponse `json:"metrics,omitempty"`
}

// MetricsResponse renders search metrics with durations in milliseconds.
type MetricsResponse struct {
	RequestID           string             `json:"request_id"`
	TotalMs             float64            `json:"total_ms"`
	PhaseMs             map[string]float64 `json:"phase_ms,omitempty"`
	CacheHit            bool               `json:"cache_hit"`
	ResultCount         int                `json:"result_count"`
	LocalResults        int                `json:"local_results"`
	ExternalResults     *int               `json:"external_results,omitempty"`
	FilteredByQuality   int                `json:"filtered_by_quality"`
	FilteredByPolicy    int                `json:"filtered_by_policy"`
	ExpandedQueriesUsed int                `json:"expanded_queries_used"`
	LocalFailures       int                `json:"local_failures"`
	ExternalSkipReason  string             `json:"external_skip_reason,omitempty"`
}

// FromSearchResult converts a search result.
func FromSearchResult(res *domain.SearchResult) SearchResponse {
	results := make([]GameResponse, len(res.Results))
	for i, sg := range res.Results {
		results[i] = FromScoredGame(sg)
	}

	resp := SearchResponse{
		Query:           res.Context.OriginalQuery,
		Intent:          res.Context.Intent.String(),
		ExpandedQueries: res.Context.ExpandedQueries,
		MaxResults:      res.Context.MaxResults,
		Count:           len(results),
		Results:         results,
	}
	if m := res.Metrics; m != nil {
		resp.Metrics = &MetricsResponse{
			RequestID:           m.RequestID,
			TotalMs:             millis(m.TotalDuration),
			CacheHit:            m.CacheHit,
			ResultCount:         m.ResultCount,
			LocalResults:        m.LocalResults,
			ExternalResults:     m.ExternalResults,
			FilteredByQuality:   m.FilteredByQuality,
			FilteredByPolicy:    m.FilteredByPolicy,
			ExpandedQueriesUsed: m.ExpandedQueriesUsed,
			LocalFailures:       m.LocalFailures,
			ExternalSkipReason:  m.ExternalSkipReason,
		}
		if len(m.PhaseDurations) > 0 {
			resp.Metrics.PhaseMs = make(map[string]float64, len(m.PhaseDurations))
			for phase, d := range m.PhaseDurations {
				resp.Metrics.PhaseMs[phase] = millis(d)
			}
		}
	}
	return resp
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// SyncResponse reports a manual enrichment sync.
type SyncResponse struct {
	Candidates   int    `json:"candidates"`
	Fetched      int    `json:"fetched"`
	Updated      int    `json:"updated"`
	Chunks       int    `json:"chunks"`
	FailedChunks int    `json:"failed_chunks"`
	Duration     string `json:"duration"`
	Error        string `json:"error,omitempty"`
}

// FromSyncResult converts a sync result.
func FromSyncResult(r service.SyncResult) SyncResponse {
	return SyncResponse{
		Candidates:   r.Candidates,
		Fetched:      r.Fetched,
		Updated:      r.Updated,
		Chunks:       r.Chunks,
		FailedChunks: r.FailedChunks,
		Duration:     r.Duration.String(),
		Error:        r.ErrorMessage,
	}
}

// PolicyResponse is one company policy.
type PolicyResponse struct {
	Company string `json:"company"`
	Level   string `json:"level"`
	Reason  string `json:"reason,omitempty"`
}

// FromPolicy converts a company policy.
func FromPolicy(p domain.CompanyPolicy) PolicyResponse {
	return PolicyResponse{Company: p.Company, Level: p.Level.String(), Reason: p.Reason}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
