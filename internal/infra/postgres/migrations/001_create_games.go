package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createGamesTable creates the games table and its lookup indexes.
func createGamesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_games",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS games (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					external_id BIGINT UNIQUE,
					name VARCHAR(500) NOT NULL,
					summary TEXT,
					developer VARCHAR(255),
					publisher VARCHAR(255),
					category SMALLINT NOT NULL DEFAULT 0,
					genres TEXT[],
					platforms TEXT[],

					-- Catalog signals
					release_date TIMESTAMPTZ,
					critic_rating DOUBLE PRECISION,
					user_rating_count INTEGER,
					popularity_score DOUBLE PRECISION,
					cover_url TEXT,

					-- Manual moderation
					greenlight BOOLEAN NOT NULL DEFAULT FALSE,
					redlight BOOLEAN NOT NULL DEFAULT FALSE,
					flag_reason TEXT,

					last_synced TIMESTAMPTZ,
					created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_games_user_rating_count ON games(user_rating_count DESC NULLS LAST);",
				"CREATE INDEX IF NOT EXISTS idx_games_last_synced ON games(last_synced) WHERE external_id IS NOT NULL;",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS games;").Error
		},
	}
}
