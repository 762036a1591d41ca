package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-search-service/internal/app/service"
	"game-search-service/internal/domain"
	"game-search-service/internal/validator"
)

func TestSearchRequest_Validation(t *testing.T) {
	v := validator.New()

	valid := []SearchRequest{
		{Query: "celeste"},
		{Query: "zelda", MaxResults: 1},
		{Query: "pokemon", MaxResults: 200, Aggressive: true, Metrics: true},
		{Query: strings.Repeat("é", 200)},
	}
	for _, req := range valid {
		assert.NoError(t, v.Validate(&req), req.Query)
	}

	invalid := []SearchRequest{
		{},
		{Query: "\t "},
		{Query: strings.Repeat("a", 201)},
		{Query: "zelda", MaxResults: 201},
		{Query: "zelda", MaxResults: -1},
	}
	for _, req := range invalid {
		assert.Error(t, v.Validate(&req), req.Query)
	}
}

func TestSearchRequest_ToOptions(t *testing.T) {
	req := SearchRequest{Query: "mario", MaxResults: 30, Aggressive: true, Fast: true}

	assert.Equal(t, domain.SearchOptions{MaxResults: 30, UseAggressive: true, FastMode: true}, req.ToOptions())
}

func TestPolicyRequest(t *testing.T) {
	v := validator.New()

	req := PolicyRequest{Company: " Square Enix ", Level: "moderate", Reason: "case by case"}
	require.NoError(t, v.Validate(&req))
	assert.Equal(t, domain.CompanyPolicy{
		Company: "square enix",
		Level:   domain.CopyrightModerate,
		Reason:  "case by case",
	}, req.ToDomain())

	assert.Error(t, v.Validate(&PolicyRequest{Company: "x", Level: "strict"}))
	assert.Error(t, v.Validate(&PolicyRequest{Level: "none"}))
}

func TestSyncRequest_Validation(t *testing.T) {
	v := validator.New()

	assert.NoError(t, v.Validate(&SyncRequest{}))
	assert.NoError(t, v.Validate(&SyncRequest{Limit: 100}))
	assert.Error(t, v.Validate(&SyncRequest{Limit: 100000}))
}

func TestFromSearchResult_NoMetrics(t *testing.T) {
	res := &domain.SearchResult{
		Results: []domain.ScoredGame{{
			Game: &domain.Game{Name: "Hades", Category: domain.CategoryMainGame, Source: domain.SourceExternal, ExternalID: 113112},
		}},
		Context: domain.SearchContext{OriginalQuery: "hades", Intent: domain.IntentSpecificGame, MaxResults: 50},
	}

	resp := FromSearchResult(res)
	assert.Equal(t, 1, resp.Count)
	assert.Nil(t, resp.Metrics)
	assert.Equal(t, "external", resp.Results[0].Source)
	assert.Equal(t, "main_game", resp.Results[0].Category)
	assert.Empty(t, resp.Results[0].ReleaseDate)
}

func TestFromSyncResult(t *testing.T) {
	resp := FromSyncResult(service.SyncResult{Candidates: 3, Updated: 2, Duration: 1500 * time.Millisecond, ErrorMessage: "partial"})

	assert.Equal(t, 3, resp.Candidates)
	assert.Equal(t, "1.5s", resp.Duration)
	assert.Equal(t, "partial", resp.Error)
}
