package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"wanderlog/internal/config"
	"wanderlog/internal/middleware"

	"gorm.io/gorm"
)

const (
	// SchemaModeHybrid applies SQL migrations, then checks every model has a table.
	SchemaModeHybrid = "hybrid"
	// SchemaModeSQL applies SQL migrations only.
	SchemaModeSQL = "sql"
	// SchemaModeAuto lets GORM derive the schema from the models.
	SchemaModeAuto = "auto"
)

type SchemaStatus struct {
	Mode              string
	Environment       string
	WillRunSQL        bool
	WillCheckModels   bool
	WillAutoMigrate   bool
	AppliedVersions   []int64
	PendingMigrations []MigrationState
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

type schemaSteps struct {
	runSQL      bool
	checkModels bool
	autoMigrate bool
}

func schemaPolicy(cfg *config.Config) (schemaSteps, error) {
	switch mode := normalizedSchemaMode(cfg); mode {
	case SchemaModeSQL:
		return schemaSteps{runSQL: true}, nil
	case SchemaModeHybrid:
		return schemaSteps{runSQL: true, checkModels: !cfg.IsProduction()}, nil
	case SchemaModeAuto:
		if cfg.IsProduction() {
			return schemaSteps{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return schemaSteps{autoMigrate: true}, nil
	default:
		return schemaSteps{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema brings the database schema up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	steps, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if steps.runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if steps.checkModels {
		if missing := missingTables(db); len(missing) > 0 {
			return fmt.Errorf("schema drift: no table for models %s", strings.Join(missing, ", "))
		}
	}

	if steps.autoMigrate {
		middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

func missingTables(db *gorm.DB) []string {
	var missing []string
	for _, model := range PersistentModels() {
		if !db.Migrator().HasTable(model) {
			missing = append(missing, fmt.Sprintf("%T", model))
		}
	}
	return missing
}

// GetSchemaStatus reports the configured schema policy and migration state.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	steps, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:            normalizedSchemaMode(cfg),
		Environment:     cfg.Env,
		WillRunSQL:      steps.runSQL,
		WillCheckModels: steps.checkModels,
		WillAutoMigrate: steps.autoMigrate,
	}
	if !steps.runSQL {
		return status, nil
	}

	states, err := migrationStates(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, s := range states {
		if s.Applied {
			status.AppliedVersions = append(status.AppliedVersions, s.Version)
		} else {
			status.PendingMigrations = append(status.PendingMigrations, s)
		}
	}
	return status, nil
}
