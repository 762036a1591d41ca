package config

import (
	"game-search-service/internal/app/service"
	"game-search-service/internal/infra/igdb"
	"game-search-service/internal/infra/postgres"
	rediscache "game-search-service/internal/infra/redis"
	"game-search-service/internal/ranking"
	"game-search-service/internal/resilience"
)

// PostgresConfig converts the database section.
func (c *Config) PostgresConfig() postgres.Config {
	d := c.Database
	return postgres.Config{
		Host:          d.Host,
		Port:          d.Port,
		Name:          d.Name,
		User:          d.User,
		Password:      d.Password,
		SSLMode:       d.SSLMode,
		MaxOpenConns:  d.MaxOpenConns,
		MaxIdleConns:  d.MaxIdleConns,
		MaxLifetime:   d.MaxLifetime,
		LogLevel:      d.LogLevel,
		SlowThreshold: d.SlowThreshold,
	}
}

// IGDBConfig converts the igdb section.
func (c *Config) IGDBConfig() igdb.Config {
	g := c.IGDB
	return igdb.Config{
		BaseURL:           g.BaseURL,
		ClientID:          g.ClientID,
		AccessToken:       g.AccessToken,
		Timeout:           g.Timeout,
		RetryCount:        g.RetryCount,
		RetryWait:         g.RetryWait,
		RetryMaxWait:      g.RetryMaxWait,
		RequestsPerSecond: g.RequestsPerSecond,
		Burst:             g.Burst,
		BatchSize:         g.BatchSize,
	}
}

// RedisOptions converts the redis section.
func (c *Config) RedisOptions() rediscache.Options {
	return rediscache.Options{
		Addr:     c.Redis.Addr(),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		PoolSize: c.Redis.PoolSize,
	}
}

// SearchConfig converts the search section.
func (c *Config) SearchConfig() service.SearchConfig {
	s := c.Search
	return service.SearchConfig{
		MaxExecutedQueries:          s.MaxExecutedQueries,
		LocalConcurrency:            s.LocalConcurrency,
		LocalLimit:                  s.LocalLimit,
		LocalTimeout:                s.LocalTimeout,
		EarlyStopThreshold:          s.EarlyStopThreshold,
		FranchiseEarlyStopThreshold: s.FranchiseEarlyStopThreshold,
		FallbackThreshold:           s.FallbackThreshold,
		ExternalLimit:               s.ExternalLimit,
		ExternalTimeout:             s.ExternalTimeout,
		FastModeLimit:               s.FastModeLimit,
		PersistExternal:             s.PersistExternal,
	}
}

// SyncConfig converts the sync section. Chunks follow the IGDB batch size.
func (c *Config) SyncConfig() service.SyncConfig {
	return service.SyncConfig{
		BatchLimit: c.Sync.BatchLimit,
		ChunkSize:  c.IGDB.BatchSize,
	}
}

// Weights converts the ranking section.
func (c *Config) Weights() ranking.Weights {
	r := c.Ranking
	return ranking.Weights{
		Relevance:  r.Relevance,
		Legitimacy: r.Legitimacy,
		Canonical:  r.Canonical,
		Quality:    r.Quality,
		Popularity: r.Popularity,
		Recency:    r.Recency,
	}
}

// GuardConfig converts the resilience section.
func (c *Config) GuardConfig() resilience.Config {
	r := c.Resilience
	return resilience.Config{
		Breaker: resilience.BreakerConfig{
			MaxRequests:  r.Breaker.MaxRequests,
			Interval:     r.Breaker.Interval,
			Timeout:      r.Breaker.Timeout,
			FailureRatio: r.Breaker.FailureRatio,
			MinRequests:  r.Breaker.MinRequests,
		},
		Health: resilience.HealthConfig{
			Window:          r.Health.Window,
			MinSamples:      r.Health.MinSamples,
			DegradedRatio:   r.Health.DegradedRatio,
			UnhealthyRatio:  r.Health.UnhealthyRatio,
			MaxObservations: r.Health.MaxObservations,
		},
		Telemetry: resilience.TelemetryConfig{
			Capacity:         r.Telemetry.Capacity,
			Window:           r.Telemetry.Window,
			MinSamples:       r.Telemetry.MinSamples,
			DisableThreshold: r.Telemetry.DisableThreshold,
		},
		FailureCooldown: r.FailureCooldown,
		FailureCacheMax: r.FailureCacheMax,
	}
}
