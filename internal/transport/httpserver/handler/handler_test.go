package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game-search-service/internal/app/service"
	"game-search-service/internal/domain"
	"game-search-service/internal/policy"
	"game-search-service/internal/resilience"
	"game-search-service/internal/transport/httpserver/dto"
	"game-search-service/internal/validator"
)

type stubSearcher struct {
	query string
	opts  domain.SearchOptions
	res   *domain.SearchResult
	err   error
}

func (s *stubSearcher) Search(_ context.Context, q string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	s.query, s.opts = q, opts
	return s.res, s.err
}

type stubSyncer struct {
	limit int
	res   service.SyncResult
}

func (s *stubSyncer) SyncLimit(_ context.Context, limit int) service.SyncResult {
	s.limit = limit
	return s.res
}

type stubPolicyWriter struct {
	saved []domain.CompanyPolicy
	err   error
}

func (w *stubPolicyWriter) Save(_ context.Context, p domain.CompanyPolicy) error {
	w.saved = append(w.saved, p)
	return w.err
}

// writerSource serves whatever the writer saved, like the policy table would.
type writerSource struct{ w *stubPolicyWriter }

func (s writerSource) CompanyPolicies(context.Context) ([]domain.CompanyPolicy, error) {
	return s.w.saved, nil
}

type stubCache struct {
	cleared int
	err     error
}

func (c *stubCache) Clear(context.Context) error {
	c.cleared++
	return c.err
}

func newApp(search *SearchHandler, admin *AdminHandler) *fiber.App {
	app := fiber.New()
	if search != nil {
		app.Get("/search", search.Search)
	}
	if admin != nil {
		app.Get("/resilience", admin.Resilience)
		app.Post("/resilience/reset", admin.ResetResilience)
		app.Post("/sync", admin.Sync)
		app.Get("/policies", admin.Policies)
		app.Put("/policies", admin.SavePolicy)
		app.Post("/policies/reload", admin.ReloadPolicies)
		app.Delete("/cache", admin.ClearCache)
	}
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func celesteResult() *domain.SearchResult {
	release := time.Date(2018, 1, 25, 0, 0, 0, 0, time.UTC)
	rating := 92.0
	ext := 1
	return &domain.SearchResult{
		Results: []domain.ScoredGame{{
			Game: &domain.Game{
				ID: "celeste", Name: "Celeste", Developer: "Maddy Makes Games",
				ReleaseDate: &release, CriticRating: &rating, Source: domain.SourceLocal,
			},
			Score: domain.Score{Relevance: 1, Composite: 0.87},
		}},
		Context: domain.SearchContext{
			OriginalQuery:   "celeste",
			ExpandedQueries: []string{"celeste"},
			Intent:          domain.IntentSpecificGame,
			MaxResults:      50,
		},
		Metrics: &domain.SearchMetrics{
			RequestID:       "req-1",
			TotalDuration:   1500 * time.Microsecond,
			PhaseDurations:  map[string]time.Duration{"local_search": time.Millisecond},
			ResultCount:     1,
			LocalResults:    1,
			ExternalResults: &ext,
		},
	}
}

func TestSearch_OK(t *testing.T) {
	s := &stubSearcher{res: celesteResult()}
	app := newApp(NewSearchHandler(s, validator.New(), zap.NewNop()), nil)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet,
		"/search?q=celeste&max_results=20&aggressive=true&metrics=true&bypass_cache=true", nil))
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "celeste", s.query)
	assert.Equal(t, domain.SearchOptions{MaxResults: 20, UseAggressive: true, BypassCache: true, IncludeMetrics: true}, s.opts)

	var resp dto.SearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "specific_game", resp.Intent)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Celeste", resp.Results[0].Name)
	assert.Equal(t, "2018-01-25", resp.Results[0].ReleaseDate)
	assert.InDelta(t, 0.87, resp.Results[0].Score.Composite, 1e-9)
	require.NotNil(t, resp.Metrics)
	assert.InDelta(t, 1.5, resp.Metrics.TotalMs, 1e-9)
	assert.InDelta(t, 1.0, resp.Metrics.PhaseMs["local_search"], 1e-9)
	assert.Equal(t, 1, *resp.Metrics.ExternalResults)
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing q", "/search"},
		{"blank q", "/search?q=%20%20"},
		{"too long", "/search?q=" + strings.Repeat("a", 201)},
		{"max_results too high", "/search?q=zelda&max_results=500"},
		{"bad int", "/search?q=zelda&max_results=lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSearcher{res: celesteResult()}
			app := newApp(NewSearchHandler(s, validator.New(), zap.NewNop()), nil)

			status, _ := do(t, app, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Empty(t, s.query, "service must not be called")
		})
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid query", domain.ErrInvalidQuery, http.StatusBadRequest, "INVALID_QUERY"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "ABORTED"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(NewSearchHandler(&stubSearcher{err: tt.err}, validator.New(), zap.NewNop()), nil)

			status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/search?q=zelda", nil))
			assert.Equal(t, tt.status, status)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestAdmin_Resilience(t *testing.T) {
	guard := resilience.NewGuard(resilience.DefaultConfig(), zap.NewNop())
	app := newApp(nil, NewAdminHandler(AdminDeps{Guard: guard}, validator.New(), zap.NewNop()))

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/resilience", nil))
	require.Equal(t, http.StatusOK, status)

	var snap resilience.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "closed", snap.Breaker.State)

	status, _ = do(t, app, httptest.NewRequest(http.MethodPost, "/resilience/reset", nil))
	assert.Equal(t, http.StatusOK, status)
}

func TestAdmin_Unconfigured(t *testing.T) {
	app := newApp(nil, NewAdminHandler(AdminDeps{}, validator.New(), zap.NewNop()))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/resilience", nil),
		httptest.NewRequest(http.MethodPost, "/sync", nil),
		httptest.NewRequest(http.MethodDelete, "/cache", nil),
		httptest.NewRequest(http.MethodPost, "/policies/reload", nil),
	} {
		status, _ := do(t, app, req)
		assert.Equal(t, http.StatusServiceUnavailable, status, req.URL.Path)
	}
}

func TestAdmin_Sync(t *testing.T) {
	syncer := &stubSyncer{res: service.SyncResult{Candidates: 4, Updated: 3, Chunks: 1}}
	app := newApp(nil, NewAdminHandler(AdminDeps{Syncer: syncer}, validator.New(), zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"limit":10}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, app, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10, syncer.limit)

	var resp dto.SyncResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 3, resp.Updated)

	status, _ = do(t, app, httptest.NewRequest(http.MethodPost, "/sync", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, syncer.limit)
}

func TestAdmin_SyncFailure(t *testing.T) {
	err := errors.New("db down")
	syncer := &stubSyncer{res: service.SyncResult{Error: err, ErrorMessage: err.Error()}}
	app := newApp(nil, NewAdminHandler(AdminDeps{Syncer: syncer}, validator.New(), zap.NewNop()))

	status, body := do(t, app, httptest.NewRequest(http.MethodPost, "/sync", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "db down")
}

func TestAdmin_SavePolicy(t *testing.T) {
	writer := &stubPolicyWriter{}
	filter := policy.NewFilter(writerSource{writer}, zap.NewNop())
	app := newApp(nil, NewAdminHandler(AdminDeps{Policies: filter, Writer: writer}, validator.New(), zap.NewNop()))

	req := httptest.NewRequest(http.MethodPut, "/policies",
		strings.NewReader(`{"company":"  Acme Interactive ","level":"aggressive","reason":"takedowns"}`))
	req.Header.Set("Content-Type", "application/json")
	status, _ := do(t, app, req)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, writer.saved, 1)
	assert.Equal(t, "acme interactive", writer.saved[0].Company)
	assert.Equal(t, domain.CopyrightAggressive, writer.saved[0].Level)

	p, ok := filter.Book().Lookup("Acme Interactive")
	require.True(t, ok, "saved policy is live after reload")
	assert.Equal(t, domain.CopyrightAggressive, p.Level)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/policies", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"company":"acme interactive"`)
}

func TestAdmin_SavePolicyValidation(t *testing.T) {
	writer := &stubPolicyWriter{}
	filter := policy.NewFilter(nil, zap.NewNop())
	app := newApp(nil, NewAdminHandler(AdminDeps{Policies: filter, Writer: writer}, validator.New(), zap.NewNop()))

	for _, body := range []string{
		`{"company":"Acme","level":"strict"}`,
		`{"company":"","level":"none"}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPut, "/policies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		status, _ := do(t, app, req)
		assert.Equal(t, http.StatusBadRequest, status, body)
	}
	assert.Empty(t, writer.saved)
}

func TestAdmin_ReloadPolicies(t *testing.T) {
	filter := policy.NewFilter(nil, zap.NewNop())
	app := newApp(nil, NewAdminHandler(AdminDeps{Policies: filter}, validator.New(), zap.NewNop()))

	status, body := do(t, app, httptest.NewRequest(http.MethodPost, "/policies/reload", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"policies"`)
}

func TestAdmin_ClearCache(t *testing.T) {
	cache := &stubCache{}
	app := newApp(nil, NewAdminHandler(AdminDeps{Cache: cache}, validator.New(), zap.NewNop()))

	status, _ := do(t, app, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 1, cache.cleared)

	cache.err = errors.New("redis down")
	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/cache", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
}
