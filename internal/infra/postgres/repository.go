package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"game-search-service/internal/domain"
)

// summaryTopUpDivisor triggers the summary pass when name matches are fewer
// than limit/summaryTopUpDivisor.
const summaryTopUpDivisor = 4

// Repository implements domain.GameStore and domain.EnrichmentStore on PostgreSQL.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SearchByText returns games whose name contains query, case-insensitively,
// most-rated first. When fewer than limit/4 names match, games whose summary
// contains query top up the result.
func (r *Repository) SearchByText(ctx context.Context, query string, limit int) ([]*domain.Game, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	pattern := "%" + escapeLike(query) + "%"

	var models []GameModel
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", pattern).
		Order("user_rating_count DESC NULLS LAST").
		Order("id").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("searching games by name: %w", err)
	}

	if len(models) < limit/summaryTopUpDivisor {
		var extra []GameModel
		err := r.db.WithContext(ctx).
			Where("summary ILIKE ? AND name NOT ILIKE ?", pattern, pattern).
			Order("user_rating_count DESC NULLS LAST").
			Order("id").
			Limit(limit - len(models)).
			Find(&extra).Error
		if err != nil {
			return nil, fmt.Errorf("searching games by summary: %w", err)
		}
		models = append(models, extra...)
	}

	games := make([]*domain.Game, len(models))
	for i := range models {
		games[i] = models[i].ToDomain()
	}
	return games, nil
}

// ListNeedingSync returns games with an external id whose cover, summary,
// developer or release date is missing, or that were never synced.
func (r *Repository) ListNeedingSync(ctx context.Context, limit int) ([]*domain.Game, error) {
	var models []GameModel
	err := r.db.WithContext(ctx).
		Where("external_id IS NOT NULL").
		Where("cover_url IS NULL OR summary IS NULL OR developer IS NULL OR release_date IS NULL OR last_synced IS NULL").
		Order("user_rating_count DESC NULLS LAST").
		Order("id").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing games needing sync: %w", err)
	}

	games := make([]*domain.Game, len(models))
	for i := range models {
		games[i] = models[i].ToDomain()
	}
	return games, nil
}

// enrichSQL fills only missing columns. Ratings keep the larger value and
// last_synced is always stamped.
const enrichSQL = `
UPDATE games SET
	summary           = COALESCE(summary, ?),
	developer         = COALESCE(developer, ?),
	publisher         = COALESCE(publisher, ?),
	cover_url         = COALESCE(cover_url, ?),
	release_date      = COALESCE(release_date, ?),
	genres            = CASE WHEN genres IS NULL OR cardinality(genres) = 0 THEN ?::text[] ELSE genres END,
	platforms         = CASE WHEN platforms IS NULL OR cardinality(platforms) = 0 THEN ?::text[] ELSE platforms END,
	critic_rating     = GREATEST(critic_rating, ?),
	user_rating_count = GREATEST(user_rating_count, ?),
	popularity_score  = COALESCE(?, popularity_score),
	last_synced       = ?,
	updated_at        = ?
WHERE external_id = ?`

// ApplyEnrichment fills the missing columns of the rows matching each game's
// external id, in one transaction. Returns the number of rows updated.
func (r *Repository) ApplyEnrichment(ctx context.Context, games []*domain.Game) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	now := r.now()
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range games {
			if g.ExternalID == 0 {
				continue
			}
			res := tx.Exec(enrichSQL,
				nullString(g.Summary),
				nullString(g.Developer),
				nullString(g.Publisher),
				nullString(g.CoverURL),
				g.ReleaseDate,
				pq.StringArray(g.Genres),
				pq.StringArray(g.Platforms),
				g.CriticRating,
				g.UserRatingCount,
				g.PopularityScore,
				now,
				now,
				g.ExternalID,
			)
			if res.Error != nil {
				return fmt.Errorf("enriching game %d: %w", g.ExternalID, res.Error)
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

// UpsertCatalog inserts catalog records that are not stored yet and refreshes
// the rating signals of those that are. Records without an external id are skipped.
func (r *Repository) UpsertCatalog(ctx context.Context, games []*domain.Game) error {
	models := make([]*GameModel, 0, len(games))
	for _, g := range games {
		if g.ExternalID == 0 || g.Name == "" {
			continue
		}
		models = append(models, FromCatalog(g))
	}
	if len(models) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"critic_rating", "user_rating_count", "popularity_score", "updated_at",
		}),
	}).CreateInBatches(models, 100).Error
	if err != nil {
		return fmt.Errorf("upserting catalog games: %w", err)
	}

	return nil
}

// escapeLike escapes the LIKE wildcards in s so they match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
