package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"game-search-service/internal/domain"
)

// SyncConfig holds the tunables of the enrichment sync.
type SyncConfig struct {
	BatchLimit int // games examined per run
	ChunkSize  int // ids per catalog request
}

// SyncService fills missing local metadata from the external catalog.
type SyncService struct {
	store   domain.EnrichmentStore
	fetcher domain.CatalogFetcher
	cfg     SyncConfig
	logger  *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(store domain.EnrichmentStore, fetcher domain.CatalogFetcher, cfg SyncConfig, logger *zap.Logger) *SyncService {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 5000
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	return &SyncService{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// SyncResult holds the result of a sync run.
type SyncResult struct {
	Candidates   int           `json:"candidates"`
	Fetched      int           `json:"fetched"`
	Updated      int           `json:"updated"`
	Chunks       int           `json:"chunks"`
	FailedChunks int           `json:"failed_chunks"`
	Duration     time.Duration `json:"duration"`
	Error        error         `json:"-"`
	ErrorMessage string        `json:"error,omitempty"`
}

// SyncAll enriches up to BatchLimit games, most-rated first. A failing chunk is
// counted and skipped; only failing to list candidates fails the run.
func (s *SyncService) SyncAll(ctx context.Context) SyncResult {
	return s.sync(ctx, s.cfg.BatchLimit)
}

// SyncLimit is SyncAll with an explicit candidate limit.
func (s *SyncService) SyncLimit(ctx context.Context, limit int) SyncResult {
	if limit <= 0 {
		limit = s.cfg.BatchLimit
	}
	return s.sync(ctx, limit)
}

func (s *SyncService) sync(ctx context.Context, limit int) SyncResult {
	start := time.Now()
	var result SyncResult

	games, err := s.store.ListNeedingSync(ctx, limit)
	if err != nil {
		result.Error = err
		result.ErrorMessage = err.Error()
		result.Duration = time.Since(start)
		s.logger.Error("listing games needing sync failed", zap.Error(err))
		return result
	}
	result.Candidates = len(games)

	s.logger.Info("starting enrichment sync",
		zap.Int("candidates", len(games)),
		zap.Int("chunk_size", s.cfg.ChunkSize),
	)

	ids := make([]int64, 0, len(games))
	for _, g := range games {
		if g.ExternalID != 0 {
			ids = append(ids, g.ExternalID)
		}
	}

	for i := 0; i < len(ids); i += s.cfg.ChunkSize {
		if ctx.Err() != nil {
			result.Error = ctx.Err()
			result.ErrorMessage = ctx.Err().Error()
			break
		}
		chunk := ids[i:min(i+s.cfg.ChunkSize, len(ids))]
		result.Chunks++

		fetched, err := s.fetcher.FetchByIDs(ctx, chunk)
		if err != nil {
			result.FailedChunks++
			s.logger.Warn("catalog fetch failed",
				zap.Int("chunk", result.Chunks),
				zap.Int("ids", len(chunk)),
				zap.Error(err),
			)
			continue
		}
		result.Fetched += len(fetched)

		updated, err := s.store.ApplyEnrichment(ctx, fetched)
		if err != nil {
			result.FailedChunks++
			s.logger.Error("applying enrichment failed",
				zap.Int("chunk", result.Chunks),
				zap.Error(err),
			)
			continue
		}
		result.Updated += updated
	}

	result.Duration = time.Since(start)

	s.logger.Info("enrichment sync completed",
		zap.Int("candidates", result.Candidates),
		zap.Int("fetched", result.Fetched),
		zap.Int("updated", result.Updated),
		zap.Int("failed_chunks", result.FailedChunks),
		zap.Duration("duration", result.Duration),
	)

	return result
}
