package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createCompanyPoliciesTable stores per-company copyright levels. The level
// column holds the names accepted by domain.ParseCopyrightLevel.
func createCompanyPoliciesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_create_company_policies",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS company_policies (
					company VARCHAR(255) PRIMARY KEY,
					level VARCHAR(20) NOT NULL CHECK (level IN ('none', 'mod_friendly', 'moderate', 'aggressive', 'block_all')),
					reason TEXT,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS company_policies;").Error
		},
	}
}
