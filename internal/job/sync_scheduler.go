// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"game-search-service/internal/app/service"
	"game-search-service/pkg/locker"
)

// lockKey guards the enrichment sync across instances.
const lockKey = "sync:enrichment"

// Syncer runs one enrichment pass.
// Implementations: internal/app/service/sync_service.go
type Syncer interface {
	SyncAll(ctx context.Context) service.SyncResult
}

// SyncScheduler runs the enrichment sync periodically. Only one instance runs
// it per interval: the lock is held for the whole interval after a successful
// run and released straight away after a failed one.
type SyncScheduler struct {
	syncer   Syncer
	locker   locker.DistributedLocker
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SyncConfig holds sync scheduler configuration.
type SyncConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewSyncScheduler creates a new SyncScheduler.
func NewSyncScheduler(syncer Syncer, cfg SyncConfig, l locker.DistributedLocker, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		syncer:   syncer,
		locker:   l,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Start begins the background loop.
func (s *SyncScheduler) Start(runOnStartup bool) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.logger.Info("starting sync scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(ctx, runOnStartup)
}

// Stop cancels a running sync and waits for the loop to exit.
func (s *SyncScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.logger.Info("stopping sync scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("sync scheduler stopped")
}

func (s *SyncScheduler) run(ctx context.Context, runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one locked sync. It reports whether this instance ran it.
func (s *SyncScheduler) RunOnce(ctx context.Context) bool {
	acquired, err := s.locker.Acquire(ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire sync lock", zap.Error(err))
		return false
	}
	if !acquired {
		s.logger.Debug("sync ran elsewhere this interval, skipping")
		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := s.syncer.SyncAll(runCtx)

	if res.Error != nil || (res.Chunks > 0 && res.FailedChunks == res.Chunks) {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Error("failed to release sync lock", zap.Error(err))
		}
		s.logger.Warn("sync failed, lock released for retry",
			zap.Int("failed_chunks", res.FailedChunks),
			zap.String("error", res.ErrorMessage),
		)
		return true
	}

	s.logger.Info("sync completed, lock held for cooldown",
		zap.Int("updated", res.Updated),
		zap.Int("failed_chunks", res.FailedChunks),
		zap.Duration("cooldown", s.interval),
	)
	return true
}
