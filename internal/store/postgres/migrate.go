package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the embedded schema migrations.
func Migrations() (*migrate.Migrations, error) {
	m := migrate.NewMigrations()
	if err := m.Discover(migrationFS); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}
	return m, nil
}

func NewMigrator(ctx context.Context, db *bun.DB) (*migrate.Migrator, error) {
	m, err := Migrations()
	if err != nil {
		return nil, err
	}
	migrator := migrate.NewMigrator(db, m)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migration tables: %w", err)
	}
	return migrator, nil
}

// MigrateUp applies every pending migration under the migrator lock.
func MigrateUp(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator, err := NewMigrator(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = migrator.Unlock(ctx) }()

	return migrator.Migrate(ctx)
}

// MigrateDown rolls back the last applied group.
func MigrateDown(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator, err := NewMigrator(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = migrator.Unlock(ctx) }()

	return migrator.Rollback(ctx)
}

func MigrationStatus(ctx context.Context, db *bun.DB) (migrate.MigrationSlice, error) {
	migrator, err := NewMigrator(ctx, db)
	if err != nil {
		return nil, err
	}
	return migrator.MigrationsWithStatus(ctx)
}
