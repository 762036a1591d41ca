// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strings"

	"game-search-service/internal/domain"
)

// SearchRequest holds the query parameters of GET /api/v1/games/search.
type SearchRequest struct {
	Query       string `query:"q" validate:"required,notblank,max=200"`
	MaxResults  int    `query:"max_results" validate:"omitempty,min=1,max=200"`
	Aggressive  bool   `query:"aggressive"`
	BypassCache bool   `query:"bypass_cache"`
	Metrics     bool   `query:"metrics"`
	Fast        bool   `query:"fast"`
}

// ToOptions converts the request into search options.
func (r *SearchRequest) ToOptions() domain.SearchOptions {
	return domain.SearchOptions{
		MaxResults:     r.MaxResults,
		UseAggressive:  r.Aggressive,
		BypassCache:    r.BypassCache,
		IncludeMetrics: r.Metrics,
		FastMode:       r.Fast,
	}
}

// SyncRequest is the optional body of POST /api/v1/admin/sync.
type SyncRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=50000"`
}

// PolicyRequest is the body of PUT /api/v1/admin/policies.
type PolicyRequest struct {
	Company string `json:"company" validate:"required,notblank,max=100"`
	Level   string `json:"level" validate:"required,oneof=none mod_friendly moderate aggressive block_all"`
	Reason  string `json:"reason" validate:"max=500"`
}

// ToDomain converts a validated request. Company names are stored lowercased.
func (r *PolicyRequest) ToDomain() domain.CompanyPolicy {
	level, _ := domain.ParseCopyrightLevel(r.Level)
	return domain.CompanyPolicy{
		Company: strings.ToLower(strings.TrimSpace(r.Company)),
		Level:   level,
		Reason:  r.Reason,
	}
}
