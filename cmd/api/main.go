// Package main is the entry point for the game-search-service API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"game-search-service/internal/app/service"
	"game-search-service/internal/config"
	"game-search-service/internal/domain"
	"game-search-service/internal/infra/igdb"
	"game-search-service/internal/infra/postgres"
	"game-search-service/internal/infra/postgres/migrations"
	rediscache "game-search-service/internal/infra/redis"
	"game-search-service/internal/job"
	"game-search-service/internal/logger"
	"game-search-service/internal/policy"
	"game-search-service/internal/ranking"
	"game-search-service/internal/resilience"
	"game-search-service/internal/transport/httpserver"
	"game-search-service/internal/transport/httpserver/handler"
	"game-search-service/internal/transport/httpserver/middleware"
	"game-search-service/internal/validator"
	"game-search-service/pkg/locker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
		Sentry: logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting game-search-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(ctx, cfg.PostgresConfig(), log.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")

	repo := postgres.NewRepository(db)
	policyRepo := postgres.NewPolicyRepository(db, log.Logger)

	filter := policy.NewFilter(policyRepo, log.Logger)
	if err := filter.Reload(ctx); err != nil {
		log.Warn("using built-in company policies", zap.Error(err))
	}

	probes := []middleware.Probe{func(ctx context.Context) error { return postgres.Ping(ctx, db) }}

	// Redis backs the L2 cache and the sync lock; both are optional.
	var (
		l2         domain.Cache
		distLocker locker.DistributedLocker
	)
	if cfg.Cache.Enabled || cfg.Sync.Enabled {
		redisClient, err := rediscache.NewClient(ctx, cfg.RedisOptions())
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr()))

		probes = append(probes, func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		if cfg.Cache.Enabled {
			l2 = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		}
		distLocker = locker.NewRedisLocker(redisClient, cfg.Cache.KeyPrefix, log.Logger)
	}

	resultCache := service.NewResultCache(cfg.Cache.MaxEntries, cfg.Cache.SearchTTL, l2, log.Logger)
	scorer := ranking.NewScorer(cfg.Weights())

	adminDeps := handler.AdminDeps{Policies: filter, Writer: policyRepo}

	var searchSvc *service.SearchService
	var syncSvc *service.SyncService
	if cfg.IGDB.ClientID != "" {
		guard := resilience.NewGuard(cfg.GuardConfig(), log.Logger)
		catalog := igdb.New(cfg.IGDBConfig().WithoutRetries(), log.Logger)
		fetcher := igdb.New(cfg.IGDBConfig(), log.Logger)

		searchSvc = service.NewSearchService(repo, catalog, guard, filter, scorer, resultCache,
			cfg.SearchConfig(), log.Logger, service.WithCatalogWriter(repo))
		syncCfg := cfg.SyncConfig()
		syncCfg.ChunkSize = fetcher.BatchSize()
		syncSvc = service.NewSyncService(repo, fetcher, syncCfg, log.Logger)

		adminDeps.Guard = guard
		adminDeps.Syncer = syncSvc
	} else {
		log.Warn("igdb.client_id not set, external fallback and sync disabled")
		searchSvc = service.NewSearchService(repo, nil, nil, filter, scorer, resultCache,
			cfg.SearchConfig(), log.Logger)
	}
	adminDeps.Cache = searchSvc

	v := validator.New()
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			AppName:   cfg.App.Name,
			BodyLimit: 1024 * 1024,
			Probes:    probes,
		},
		handler.NewSearchHandler(searchSvc, v, log.Logger),
		handler.NewAdminHandler(adminDeps, v, log.Logger),
		log.Logger,
	)

	scheduler := startScheduler(cfg, syncSvc, distLocker, log.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.App.Port) }()

	select {
	case err := <-errCh:
		if scheduler != nil {
			scheduler.Stop()
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	return nil
}

func startScheduler(cfg *config.Config, syncSvc *service.SyncService, l locker.DistributedLocker, log *zap.Logger) *job.SyncScheduler {
	if !cfg.Sync.Enabled {
		return nil
	}
	if syncSvc == nil || l == nil {
		log.Warn("sync enabled but igdb or redis is not configured, scheduler not started")
		return nil
	}

	s := job.NewSyncScheduler(syncSvc, job.SyncConfig{
		Interval:  cfg.Sync.Interval,
		Timeout:   cfg.Sync.Timeout,
		OnStartup: cfg.Sync.OnStartup,
	}, l, log)
	s.Start(cfg.Sync.OnStartup)
	return s
}
