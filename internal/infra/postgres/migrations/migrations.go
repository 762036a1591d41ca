// Package migrations holds the versioned schema of the local game store.
package migrations

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// options keeps each migration outside a transaction: CREATE EXTENSION may fail
// on managed databases and must not abort the rest of the migration.
var options = &gormigrate.Options{
	TableName:                 "schema_migrations",
	IDColumnName:              "id",
	IDColumnSize:              255,
	UseTransaction:            false,
	ValidateUnknownMigrations: true,
}

// Migrations returns all database migrations in apply order.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		createGamesTable(),
		addTrigramIndexes(),
		createCompanyPoliciesTable(),
	}
}

// Run applies every pending migration.
func Run(db *gorm.DB) error {
	if err := gormigrate.New(db, options, Migrations()).Migrate(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// RollbackTo reverts migrations down to, and excluding, the given id.
func RollbackTo(db *gorm.DB, id string) error {
	if err := gormigrate.New(db, options, Migrations()).RollbackTo(id); err != nil {
		return fmt.Errorf("rolling back to %s: %w", id, err)
	}
	return nil
}
