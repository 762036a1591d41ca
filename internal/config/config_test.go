package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-search-service/internal/app/service"
	"game-search-service/internal/ranking"
	"game-search-service/internal/resilience"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "game-search-service", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 5, cfg.Search.MaxExecutedQueries)
	assert.Equal(t, 2, cfg.Search.FallbackThreshold)
	assert.Equal(t, 3*time.Second, cfg.Search.ExternalTimeout)
	assert.InDelta(t, 0.30, cfg.Ranking.Relevance, 1e-9)
	assert.Equal(t, uint32(3), cfg.Resilience.Breaker.MinRequests)
	assert.Equal(t, 5*time.Minute, cfg.Resilience.FailureCooldown)
	assert.Equal(t, 15*time.Minute, cfg.Cache.SearchTTL)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 500, cfg.IGDB.BatchSize)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9090
search:
  fallback_threshold: 4
  external_timeout: 1500ms
cache:
  enabled: true
`), 0o600))

	t.Setenv("APP_SEARCH_FALLBACK_THRESHOLD", "6")
	t.Setenv("APP_IGDB_CLIENT_ID", "abc")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 6, cfg.Search.FallbackThreshold, "env wins over file")
	assert.Equal(t, 1500*time.Millisecond, cfg.Search.ExternalTimeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "abc", cfg.IGDB.ClientID)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("APP_IGDB_BATCH_SIZE", "900")
	t.Setenv("APP_RANKING_RELEVANCE", "0")
	t.Setenv("APP_RANKING_LEGITIMACY", "0")
	t.Setenv("APP_RANKING_CANONICAL", "0")
	t.Setenv("APP_RANKING_QUALITY", "0")
	t.Setenv("APP_RANKING_POPULARITY", "0")
	t.Setenv("APP_RANKING_RECENCY", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "igdb.batch_size")
	assert.Contains(t, err.Error(), "ranking weights")
}

func TestConversions_MatchPackageDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, service.DefaultSearchConfig(), cfg.SearchConfig())
	assert.Equal(t, ranking.DefaultWeights(), cfg.Weights())
	assert.Equal(t, resilience.DefaultConfig(), cfg.GuardConfig())

	sc := cfg.SyncConfig()
	assert.Equal(t, 5000, sc.BatchLimit)
	assert.Equal(t, 500, sc.ChunkSize)

	assert.Equal(t, "localhost:6379", cfg.RedisOptions().Addr)
	assert.Equal(t, "games", cfg.PostgresConfig().Name)
	assert.Equal(t, 500, cfg.IGDBConfig().BatchSize)
}
