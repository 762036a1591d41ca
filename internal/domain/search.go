package domain

import (
	"errors"
	"fmt"
	"time"
)

// MaxQueryLength bounds the accepted raw query length.
const MaxQueryLength = 200

// ErrInvalidQuery is returned by Search for empty or oversized queries.
var ErrInvalidQuery = errors.New("invalid search query")

// SearchOptions holds caller-controlled search switches.
type SearchOptions struct {
	MaxResults     int  // 0 = intent default
	UseAggressive  bool // enforce company policy even for franchise browsing
	BypassCache    bool
	IncludeMetrics bool
	FastMode       bool // raw local matches only, for type-ahead
}

// SearchContext is built once per search call and never mutated afterwards.
type SearchContext struct {
	OriginalQuery    string       `json:"original_query"`
	ExpandedQueries  []string     `json:"expanded_queries"`
	Intent           SearchIntent `json:"intent"`
	QualityThreshold float64      `json:"quality_threshold"`
	MaxResults       int          `json:"max_results"`
	CacheKey         string       `json:"cache_key"`
}

// BuildCacheKey returns the deterministic cache key for a normalized query and options.
func BuildCacheKey(normalizedQuery string, intent SearchIntent, maxResults int, aggressive bool) string {
	return fmt.Sprintf("search:v1:%s|%s|%d|%t", normalizedQuery, intent, maxResults, aggressive)
}

// Score holds every sub-score of a candidate; all values are in [0,1].
type Score struct {
	Relevance  float64 `json:"relevance"`
	Quality    float64 `json:"quality"`
	Legitimacy float64 `json:"legitimacy"`
	Canonical  float64 `json:"canonical"`
	Popularity float64 `json:"popularity"`
	Recency    float64 `json:"recency"`
	Composite  float64 `json:"composite"`
}

// ScoredGame pairs a candidate with its scores.
type ScoredGame struct {
	Game  *Game `json:"game"`
	Score Score `json:"score"`
}

// SearchMetrics describes how a search was executed.
type SearchMetrics struct {
	RequestID           string                   `json:"request_id"`
	TotalDuration       time.Duration            `json:"total_duration"`
	PhaseDurations      map[string]time.Duration `json:"phase_durations,omitempty"`
	CacheHit            bool                     `json:"cache_hit"`
	ResultCount         int                      `json:"result_count"`
	LocalResults        int                      `json:"local_results"`
	ExternalResults     *int                     `json:"external_results,omitempty"` // nil when the external source was not consulted
	FilteredByQuality   int                      `json:"filtered_by_quality"`
	FilteredByPolicy    int                      `json:"filtered_by_policy"`
	ExpandedQueriesUsed int                      `json:"expanded_queries_used"`
	LocalFailures       int                      `json:"local_failures"`
	ExternalSkipReason  string                   `json:"external_skip_reason,omitempty"`
}

// SearchResult is the caller-facing output of a search.
type SearchResult struct {
	Results []ScoredGame   `json:"results"`
	Context SearchContext  `json:"context"`
	Metrics *SearchMetrics `json:"metrics,omitempty"`
}
