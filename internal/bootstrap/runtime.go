// Package bootstrap wires the process-wide runtime: database, Redis and
// optional development seeding.
package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"wanderlog/internal/cache"
	"wanderlog/internal/config"
	"wanderlog/internal/database"
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis, then seeds an empty
// development database when cfg.SeedPreset names a preset.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when Redis is unreachable; the API runs without cache.
	rdb := cache.NewClient(cfg.RedisURL)

	if err := seedDevelopment(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to seed development database: %w", err)
	}

	return db, rdb, nil
}

func seedDevelopment(cfg *config.Config, db *gorm.DB) error {
	preset := strings.TrimSpace(cfg.SeedPreset)
	if preset == "" || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	profile, ok := seed.Presets[preset]
	if !ok {
		return fmt.Errorf("unknown SEED_PRESET %q (have %s)", preset, strings.Join(seed.PresetNames(), ", "))
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	seeder, err := seed.NewSeeder(db, seed.Options{FastHash: true})
	if err != nil {
		return err
	}
	result, err := seeder.Run(profile)
	if err != nil {
		return err
	}
	middleware.Logger.Info("development database seeded",
		slog.String("preset", preset),
		slog.Int("users", len(result.Users)),
		slog.Int("posts", len(result.Posts)),
	)
	return nil
}
