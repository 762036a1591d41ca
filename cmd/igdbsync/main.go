// Package main is a one-shot CLI that fills missing local game metadata from IGDB.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"game-search-service/internal/app/service"
	"game-search-service/internal/config"
	"game-search-service/internal/infra/igdb"
	"game-search-service/internal/infra/postgres"
	"game-search-service/internal/infra/postgres/migrations"
	"game-search-service/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "igdbsync",
		Short:        "Enrich the local game catalog from IGDB",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newMigrateCmd())
	return root
}

type migrateOptions struct {
	configPath string
	rollbackTo string
}

func newMigrateCmd() *cobra.Command {
	var opts migrateOptions

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations, or roll back to a given migration id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	cmd.Flags().StringVar(&opts.rollbackTo, "rollback-to", "", "roll back down to (excluding) this migration id")
	return cmd
}

func runMigrate(ctx context.Context, opts migrateOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := postgres.NewConnection(ctx, cfg.PostgresConfig(), log.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = postgres.Close(db) }()

	if opts.rollbackTo != "" {
		if err := migrations.RollbackTo(db, opts.rollbackTo); err != nil {
			return err
		}
		log.Info("migrations rolled back", zap.String("to", opts.rollbackTo))
		return nil
	}

	if err := migrations.Run(db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

type runOptions struct {
	configPath string
	limit      int
	migrate    bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one enrichment pass and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSync(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "max games to examine (0 = sync.batch_limit)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply database migrations first")
	return cmd
}

func runSync(ctx context.Context, opts runOptions, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if cfg.IGDB.ClientID == "" {
		return errors.New("igdb.client_id is required")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := postgres.NewConnection(ctx, cfg.PostgresConfig(), log.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = postgres.Close(db) }()

	if opts.migrate {
		if err := migrations.Run(db); err != nil {
			return err
		}
	}

	fetcher := igdb.New(cfg.IGDBConfig(), log.Logger)
	syncCfg := cfg.SyncConfig()
	syncCfg.ChunkSize = fetcher.BatchSize()
	svc := service.NewSyncService(postgres.NewRepository(db), fetcher, syncCfg, log.Logger)

	res := svc.SyncLimit(ctx, opts.limit)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if res.Error != nil {
		log.Error("sync failed", zap.Error(res.Error))
		return res.Error
	}
	return nil
}

// newLogger writes to stderr so stdout carries only the JSON result.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: "stderr",
		Sentry: logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	})
}
