package domain

import (
	"context"
	"time"
)

// GameStore is the local store queried by substring match.
// Implementations: internal/infra/postgres/repository.go
type GameStore interface {
	// SearchByText returns games whose name (or, when few names match, summary)
	// contains the query. Zero results is not an error.
	SearchByText(ctx context.Context, query string, limit int) ([]*Game, error)
}

// Catalog is the external game catalog.
// Implementations: internal/infra/igdb/client.go
type Catalog interface {
	// SearchByText returns up to limit candidate records for the query.
	SearchByText(ctx context.Context, query string, limit int) ([]*Game, error)
}

// CatalogFetcher loads catalog records by external id.
type CatalogFetcher interface {
	FetchByIDs(ctx context.Context, ids []int64) ([]*Game, error)
}

// EnrichmentStore lists local games missing metadata and applies catalog data to them.
// Implementations: internal/infra/postgres/repository.go
type EnrichmentStore interface {
	// ListNeedingSync returns games with an external id and incomplete metadata,
	// most-rated first.
	ListNeedingSync(ctx context.Context, limit int) ([]*Game, error)

	// ApplyEnrichment fills missing columns of the local rows matching each
	// game's external id. Returns the number of rows updated.
	ApplyEnrichment(ctx context.Context, games []*Game) (int, error)
}

// PolicySource provides per-company copyright levels.
// Implementations: internal/infra/postgres/policy_repository.go
type PolicySource interface {
	CompanyPolicies(ctx context.Context) ([]CompanyPolicy, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
