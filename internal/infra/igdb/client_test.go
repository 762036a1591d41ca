package igdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game-search-service/internal/domain"
)

const testEndpoint = "https://api.igdb.example.com/v4/games"

func newTestClient(t *testing.T, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:      "https://api.igdb.example.com/v4",
		ClientID:     "client-id",
		AccessToken:  "token",
		Timeout:      5 * time.Second,
		RetryCount:   2,
		RetryWait:    10 * time.Millisecond,
		RetryMaxWait: 50 * time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	client := New(cfg, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func celesteItem() GameItem {
	rating := 91.5
	total := 93.2
	count := 1800
	return GameItem{
		ID:               26226,
		Name:             "Celeste",
		Summary:          "Help Madeline survive her inner demons.",
		Cover:            &Image{URL: "//images.igdb.com/igdb/image/upload/t_thumb/co3byy.jpg"},
		FirstReleaseDate: 1516838400,
		Genres:           []Named{{Name: "Platform"}, {Name: "Indie"}},
		Platforms:        []Named{{Name: "PC (Microsoft Windows)"}, {Name: "Nintendo Switch"}},
		InvolvedCompanies: []InvolvedCompany{
			{Company: Named{Name: "Maddy Makes Games"}, Developer: true},
			{Company: Named{Name: "Matt Makes Games"}, Publisher: true},
			{Company: Named{Name: "Other Studio"}, Developer: true},
		},
		AggregatedRating: &rating,
		TotalRating:      &total,
		TotalRatingCount: &count,
		Category:         0,
	}
}

func TestSearchByText_Success(t *testing.T) {
	client := newTestClient(t)

	var gotBody string
	httpmock.RegisterResponder("POST", testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "client-id", req.Header.Get("Client-ID"))
			assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
			return httpmock.NewJsonResponse(200, []GameItem{celesteItem()})
		})

	games, err := client.SearchByText(context.Background(), "celeste", 10)
	require.NoError(t, err)
	require.Len(t, games, 1)

	assert.True(t, strings.HasPrefix(gotBody, `search "celeste";`), gotBody)
	assert.Contains(t, gotBody, "fields "+gameFields+";")
	assert.Contains(t, gotBody, "limit 10;")

	g := games[0]
	assert.Equal(t, int64(26226), g.ExternalID)
	assert.Equal(t, "Celeste", g.Name)
	assert.Equal(t, domain.SourceExternal, g.Source)
	assert.Equal(t, "Maddy Makes Games", g.Developer)
	assert.Equal(t, "Matt Makes Games", g.Publisher)
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_1080p/co3byy.jpg", g.CoverURL)
	assert.Equal(t, []string{"Platform", "Indie"}, g.Genres)
	require.NotNil(t, g.ReleaseDate)
	assert.Equal(t, time.Date(2018, 1, 25, 0, 0, 0, 0, time.UTC), *g.ReleaseDate)
	assert.InDelta(t, 91.5, *g.CriticRating, 1e-9)
	assert.Equal(t, 1800, *g.UserRatingCount)
	assert.Equal(t, domain.CategoryMainGame, g.Category)
}

func TestSearchByText_QuotesQuery(t *testing.T) {
	client := newTestClient(t)

	var gotBody string
	httpmock.RegisterResponder("POST", testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
			return httpmock.NewJsonResponse(200, []GameItem{})
		})

	_, err := client.SearchByText(context.Background(), `say "hi" \o/`, 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotBody, `search "say \"hi\" \\o/";`), gotBody)
}

func TestSearchByText_EmptyQuery(t *testing.T) {
	client := newTestClient(t)

	games, err := client.SearchByText(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Nil(t, games)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestSearchByText_SkipsNamelessRecords(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, []GameItem{{ID: 1}, celesteItem()}))

	games, err := client.SearchByText(context.Background(), "celeste", 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Celeste", games[0].Name)
}

func TestSearchByText_HTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantCalls  int
	}{
		{"400 Bad Request", 400, 1},
		{"401 Unauthorized", 401, 1},
		{"429 Too Many Requests", 429, 3},
		{"500 Internal Server Error", 500, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t)
			httpmock.RegisterResponder("POST", testEndpoint,
				httpmock.NewStringResponder(tt.statusCode, "Error"))

			games, err := client.SearchByText(context.Background(), "celeste", 10)

			require.Error(t, err)
			assert.Nil(t, games)
			assert.True(t, errors.Is(err, ErrUnexpectedStatus))
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.statusCode))
			assert.Equal(t, tt.wantCalls, httpmock.GetTotalCallCount())
		})
	}
}

func TestSearchByText_WithoutRetries(t *testing.T) {
	client := newTestClient(t, func(c *Config) { *c = c.WithoutRetries() })
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(503, "Unavailable"))

	_, err := client.SearchByText(context.Background(), "celeste", 10)
	require.Error(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSearchByText_NetworkError(t *testing.T) {
	client := newTestClient(t, func(c *Config) { c.RetryCount = 0 })
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewErrorResponder(fmt.Errorf("network error: connection refused")))

	games, err := client.SearchByText(context.Background(), "celeste", 10)
	require.Error(t, err)
	assert.Nil(t, games)
	assert.Contains(t, err.Error(), "searching igdb")
}

func TestSearchByText_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(c *Config) { c.RetryCount = 0 })
	httpmock.RegisterResponder("POST", testEndpoint,
		func(_ *http.Request) (*http.Response, error) {
			time.Sleep(200 * time.Millisecond)
			return httpmock.NewJsonResponse(200, []GameItem{celesteItem()})
		})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	games, err := client.SearchByText(ctx, "celeste", 10)
	require.Error(t, err)
	assert.Nil(t, games)
}

func TestFetchByIDs_Chunks(t *testing.T) {
	client := newTestClient(t, func(c *Config) { c.BatchSize = 2 })

	var bodies []string
	httpmock.RegisterResponder("POST", testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(req.Body)
			bodies = append(bodies, string(b))
			return httpmock.NewJsonResponse(200, []GameItem{celesteItem()})
		})

	games, err := client.FetchByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, games, 2)
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], "where id = (1,2); limit 2;")
	assert.Contains(t, bodies[1], "where id = (3); limit 1;")
}

func TestFetchByIDs_PartialFailure(t *testing.T) {
	client := newTestClient(t, func(c *Config) {
		c.BatchSize = 1
		c.RetryCount = 0
	})

	calls := 0
	httpmock.RegisterResponder("POST", testEndpoint,
		func(_ *http.Request) (*http.Response, error) {
			calls++
			if calls == 2 {
				return httpmock.NewStringResponse(500, "boom"), nil
			}
			return httpmock.NewJsonResponse(200, []GameItem{celesteItem()})
		})

	games, err := client.FetchByIDs(context.Background(), []int64{1, 2, 3})
	require.Error(t, err)
	assert.Len(t, games, 1, "records fetched before the failure are returned")
	assert.Contains(t, err.Error(), "fetching igdb ids 2..2")
}

func TestNew_ClampsBatchSize(t *testing.T) {
	assert.Equal(t, MaxBatchSize, New(Config{BatchSize: 10000}, zap.NewNop()).BatchSize())
	assert.Equal(t, MaxBatchSize, New(Config{}, zap.NewNop()).BatchSize())
	assert.Equal(t, 50, New(Config{BatchSize: 50}, zap.NewNop()).BatchSize())
}

func TestRateLimiter_Paces(t *testing.T) {
	client := newTestClient(t, func(c *Config) {
		c.RequestsPerSecond = 20
		c.Burst = 1
	})
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, []GameItem{}))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.SearchByText(context.Background(), "celeste", 1)
		require.NoError(t, err)
	}

	// 3 requests at 20/s with burst 1 need at least two 50ms waits.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestCoverURL(t *testing.T) {
	assert.Equal(t, "", CoverURL(""))
	assert.Equal(t, "https://images.igdb.com/a/t_1080p/x.jpg", CoverURL("//images.igdb.com/a/t_thumb/x.jpg"))
	assert.Equal(t, "https://cdn.example.com/t_1080p/x.jpg", CoverURL("https://cdn.example.com/t_thumb/x.jpg"))
}

func TestToDomain_Minimal(t *testing.T) {
	item := GameItem{ID: 7, Name: "Obscuria", Category: 8}
	g := item.ToDomain()

	assert.Equal(t, domain.CategoryRemake, g.Category)
	assert.Nil(t, g.ReleaseDate)
	assert.Empty(t, g.CoverURL)
	assert.Nil(t, g.Genres)
	assert.False(t, g.HasCompany())
}
