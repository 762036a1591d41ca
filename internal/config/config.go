// Package config loads application configuration with Viper from an optional
// YAML file and APP_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	IGDB       IGDBConfig       `mapstructure:"igdb"`
	Search     SearchConfig     `mapstructure:"search"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"` // development, staging, production
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Name          string        `mapstructure:"name"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	SSLMode       string        `mapstructure:"ssl_mode"`
	MaxOpenConns  int           `mapstructure:"max_open_conns"`
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
	MaxLifetime   time.Duration `mapstructure:"max_lifetime"`
	LogLevel      string        `mapstructure:"log_level"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

// IGDBConfig holds external catalog settings.
type IGDBConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	ClientID          string        `mapstructure:"client_id"`
	AccessToken       string        `mapstructure:"access_token"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryCount        int           `mapstructure:"retry_count"` // sync only; search never retries
	RetryWait         time.Duration `mapstructure:"retry_wait"`
	RetryMaxWait      time.Duration `mapstructure:"retry_max_wait"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	BatchSize         int           `mapstructure:"batch_size"`
}

// SearchConfig holds coordinator tunables.
type SearchConfig struct {
	MaxExecutedQueries          int           `mapstructure:"max_executed_queries"`
	LocalConcurrency            int           `mapstructure:"local_concurrency"`
	LocalLimit                  int           `mapstructure:"local_limit"`
	LocalTimeout                time.Duration `mapstructure:"local_timeout"`
	EarlyStopThreshold          int           `mapstructure:"early_stop_threshold"`
	FranchiseEarlyStopThreshold int           `mapstructure:"franchise_early_stop_threshold"`
	FallbackThreshold           int           `mapstructure:"fallback_threshold"`
	ExternalLimit               int           `mapstructure:"external_limit"`
	ExternalTimeout             time.Duration `mapstructure:"external_timeout"`
	FastModeLimit               int           `mapstructure:"fast_mode_limit"`
	PersistExternal             bool          `mapstructure:"persist_external"`
}

// RankingConfig holds the composite score weights.
type RankingConfig struct {
	Relevance  float64 `mapstructure:"relevance"`
	Legitimacy float64 `mapstructure:"legitimacy"`
	Canonical  float64 `mapstructure:"canonical"`
	Quality    float64 `mapstructure:"quality"`
	Popularity float64 `mapstructure:"popularity"`
	Recency    float64 `mapstructure:"recency"`
}

// ResilienceConfig holds external-call guard settings.
type ResilienceConfig struct {
	Breaker         BreakerConfig   `mapstructure:"circuit_breaker"`
	Health          HealthConfig    `mapstructure:"health"`
	Telemetry       TelemetryConfig `mapstructure:"telemetry"`
	FailureCooldown time.Duration   `mapstructure:"failure_cooldown"`
	FailureCacheMax int             `mapstructure:"failure_cache_max"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

// HealthConfig holds health monitor settings.
type HealthConfig struct {
	Window          time.Duration `mapstructure:"window"`
	MinSamples      int           `mapstructure:"min_samples"`
	DegradedRatio   float64       `mapstructure:"degraded_ratio"`
	UnhealthyRatio  float64       `mapstructure:"unhealthy_ratio"`
	MaxObservations int           `mapstructure:"max_observations"`
}

// TelemetryConfig holds call telemetry settings.
type TelemetryConfig struct {
	Capacity         int           `mapstructure:"capacity"`
	Window           time.Duration `mapstructure:"window"`
	MinSamples       int           `mapstructure:"min_samples"`
	DisableThreshold float64       `mapstructure:"disable_threshold"`
}

// CacheConfig holds result cache settings. Enabled switches on the Redis level.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SearchTTL  time.Duration `mapstructure:"search_ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

// RedisConfig holds Redis connection settings, used by the cache and the sync lock.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SyncConfig holds enrichment sync settings.
type SyncConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	OnStartup  bool          `mapstructure:"on_startup"`
	Timeout    time.Duration `mapstructure:"timeout"`
	BatchLimit int           `mapstructure:"batch_limit"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults. An empty configPath looks for
// config.yaml in ./config and the working directory; a missing file is fine.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port %d out of range", c.App.Port))
	}
	if c.IGDB.BatchSize > 500 {
		errs = append(errs, fmt.Errorf("igdb.batch_size %d exceeds 500", c.IGDB.BatchSize))
	}
	r := c.Ranking
	if r.Relevance+r.Legitimacy+r.Canonical+r.Quality+r.Popularity+r.Recency <= 0 {
		errs = append(errs, errors.New("ranking weights must sum to a positive value"))
	}
	if c.Search.MaxExecutedQueries <= 0 {
		errs = append(errs, errors.New("search.max_executed_queries must be positive"))
	}
	if c.Sync.Enabled && c.Sync.Interval <= 0 {
		errs = append(errs, errors.New("sync.interval must be positive when sync is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "game-search-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "games")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_threshold", "200ms")

	v.SetDefault("igdb.base_url", "http://localhost:8081/v4")
	v.SetDefault("igdb.client_id", "")
	v.SetDefault("igdb.access_token", "")
	v.SetDefault("igdb.timeout", "10s")
	v.SetDefault("igdb.retry_count", 3)
	v.SetDefault("igdb.retry_wait", "1s")
	v.SetDefault("igdb.retry_max_wait", "5s")
	v.SetDefault("igdb.requests_per_second", 4)
	v.SetDefault("igdb.burst", 1)
	v.SetDefault("igdb.batch_size", 500)

	v.SetDefault("search.max_executed_queries", 5)
	v.SetDefault("search.local_concurrency", 2)
	v.SetDefault("search.local_limit", 100)
	v.SetDefault("search.local_timeout", "5s")
	v.SetDefault("search.early_stop_threshold", 150)
	v.SetDefault("search.franchise_early_stop_threshold", 250)
	v.SetDefault("search.fallback_threshold", 2)
	v.SetDefault("search.external_limit", 50)
	v.SetDefault("search.external_timeout", "3s")
	v.SetDefault("search.fast_mode_limit", 8)
	v.SetDefault("search.persist_external", false)

	v.SetDefault("ranking.relevance", 0.30)
	v.SetDefault("ranking.legitimacy", 0.25)
	v.SetDefault("ranking.canonical", 0.15)
	v.SetDefault("ranking.quality", 0.20)
	v.SetDefault("ranking.popularity", 0.06)
	v.SetDefault("ranking.recency", 0.04)

	v.SetDefault("resilience.circuit_breaker.max_requests", 1)
	v.SetDefault("resilience.circuit_breaker.interval", "60s")
	v.SetDefault("resilience.circuit_breaker.timeout", "30s")
	v.SetDefault("resilience.circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("resilience.circuit_breaker.min_requests", 3)
	v.SetDefault("resilience.health.window", "2m")
	v.SetDefault("resilience.health.min_samples", 5)
	v.SetDefault("resilience.health.degraded_ratio", 0.3)
	v.SetDefault("resilience.health.unhealthy_ratio", 0.8)
	v.SetDefault("resilience.health.max_observations", 100)
	v.SetDefault("resilience.telemetry.capacity", 100)
	v.SetDefault("resilience.telemetry.window", "5m")
	v.SetDefault("resilience.telemetry.min_samples", 10)
	v.SetDefault("resilience.telemetry.disable_threshold", 0.7)
	v.SetDefault("resilience.failure_cooldown", "5m")
	v.SetDefault("resilience.failure_cache_max", 1000)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.search_ttl", "15m")
	v.SetDefault("cache.max_entries", 500)
	v.SetDefault("cache.key_prefix", "game-search")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.interval", "1h")
	v.SetDefault("sync.on_startup", false)
	v.SetDefault("sync.timeout", "30m")
	v.SetDefault("sync.batch_limit", 5000)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
