package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"wanderlog/internal/middleware"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func newMigrationProvider(db *gorm.DB) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	fsys, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return goose.NewProvider(goose.DialectSQLite3, sqlDB, fsys)
}

// RunMigrations applies all pending embedded SQL migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		middleware.Logger.InfoContext(ctx, "Migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// RollbackMigration reverts applied migrations down to, and excluding, version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int64) error {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.DownTo(ctx, version)
	if err != nil {
		return fmt.Errorf("roll back to version %d: %w", version, err)
	}
	for _, r := range results {
		middleware.Logger.InfoContext(ctx, "Migration rolled back",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
		)
	}
	return nil
}

// MigrationState describes one embedded migration.
type MigrationState struct {
	Version int64
	Path    string
	Applied bool
}

func migrationStates(ctx context.Context, db *gorm.DB) ([]MigrationState, error) {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("read migration status: %w", err)
	}
	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationState{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}
