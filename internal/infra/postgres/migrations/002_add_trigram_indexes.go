package migrations

import (
	"context"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addTrigramIndexes speeds up the substring (ILIKE '%q%') lookups on name and
// summary with pg_trgm GIN indexes. Without the extension the lookups still
// work as sequential scans, so a missing extension is not fatal.
func addTrigramIndexes() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_trigram_indexes",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error; err != nil {
				tx.Logger.Warn(context.Background(), "pg_trgm unavailable, skipping trigram indexes: %v", err)
				return nil
			}

			if err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_games_name_trgm
				ON games USING GIN (name gin_trgm_ops)
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_games_summary_trgm
				ON games USING GIN (summary gin_trgm_ops)
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_games_summary_trgm`).Error
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_games_name_trgm`).Error
			return nil
		},
	}
}
