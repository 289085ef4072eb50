package bootstrap

import (
	"testing"

	"wanderlog/internal/config"
	"wanderlog/internal/models"
	"wanderlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countUsers(t *testing.T, cfg *config.Config) int64 {
	t.Helper()
	db := testutil.NewTestDB(t)
	require.NoError(t, seedDevelopment(cfg, db))
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestSeedDevelopment(t *testing.T) {
	assert.Equal(t, int64(5), countUsers(t, &config.Config{Env: "development", SeedPreset: "tiny"}))
	assert.Zero(t, countUsers(t, &config.Config{Env: "development"}))
	assert.Zero(t, countUsers(t, &config.Config{Env: "production", SeedPreset: "tiny"}))
}

func TestSeedDevelopment_SkipsPopulatedDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "alice")

	require.NoError(t, seedDevelopment(&config.Config{Env: "development", SeedPreset: "tiny"}, db))
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSeedDevelopment_UnknownPreset(t *testing.T) {
	db := testutil.NewTestDB(t)
	err := seedDevelopment(&config.Config{Env: "development", SeedPreset: "huge"}, db)
	assert.ErrorContains(t, err, "unknown SEED_PRESET")
}
