// Package migrations holds the schema migrations, registered in init by each
// timestamped file.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// NewMigrator returns a migrator for the registered migrations.
func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}

// BringUpToDate creates the bookkeeping tables if needed and applies every
// pending migration as one group. The returned group has ID 0 when nothing
// was pending.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	m := NewMigrator(db)
	if err := m.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := m.Migrate(ctx)
	return group, errors.WithStack(err)
}

// Rollback reverts the most recently applied group.
func Rollback(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	group, err := NewMigrator(db).Rollback(ctx)
	return group, errors.WithStack(err)
}

// Pending lists the registered migrations that haven't been applied.
func Pending(ctx context.Context, db *bun.DB) (migrate.MigrationSlice, error) {
	ms, err := NewMigrator(db).MigrationsWithStatus(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ms.Unapplied(), nil
}
