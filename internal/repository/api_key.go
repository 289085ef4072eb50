package repository

import (
	"context"
	"errors"

	"wanderlog/internal/models"

	"gorm.io/gorm"
)

// APIKeyRepository persists API keys and their usage log.
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	// GetByKey returns the active key with this value, or nil.
	GetByKey(ctx context.Context, key string) (*models.APIKey, error)
	ListByUser(ctx context.Context, userID uint) ([]models.APIKey, error)
	// LatestActive returns the user's newest active key, or nil.
	LatestActive(ctx context.Context, userID uint) (*models.APIKey, error)
	// DeleteForUser removes key if userID owns it and reports whether it did.
	DeleteForUser(ctx context.Context, key string, userID uint) (bool, error)
	// LogUsage appends a usage row and bumps the key's counter atomically.
	LogUsage(ctx context.Context, keyID uint, endpoint string, success bool) error
	UsageLogs(ctx context.Context, keyID uint) ([]models.APIKeyUsageLog, error)
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository.
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	if err := r.db.WithContext(ctx).Create(key).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("User", key.UserID)
		}
		if isUniqueConstraintError(err) {
			return models.NewConflictError("API key already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *apiKeyRepository) GetByKey(ctx context.Context, key string) (*models.APIKey, error) {
	var k models.APIKey
	err := r.db.WithContext(ctx).Where("key = ? AND is_active = ?", key, true).First(&k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &k, nil
}

func (r *apiKeyRepository) ListByUser(ctx context.Context, userID uint) ([]models.APIKey, error) {
	keys := []models.APIKey{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&keys).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return keys, nil
}

func (r *apiKeyRepository) LatestActive(ctx context.Context, userID uint) (*models.APIKey, error) {
	var k models.APIKey
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id DESC").
		First(&k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &k, nil
}

func (r *apiKeyRepository) DeleteForUser(ctx context.Context, key string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("key = ? AND user_id = ?", key, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *apiKeyRepository) LogUsage(ctx context.Context, keyID uint, endpoint string, success bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.APIKeyUsageLog{APIKeyID: keyID, Endpoint: endpoint, Success: success}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		res := tx.Model(&models.APIKey{}).
			Where("id = ?", keyID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isForeignKeyError(err) {
			return models.NewNotFoundError("API key", keyID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *apiKeyRepository) UsageLogs(ctx context.Context, keyID uint) ([]models.APIKeyUsageLog, error) {
	logs := []models.APIKeyUsageLog{}
	if err := r.db.WithContext(ctx).
		Where("api_key_id = ?", keyID).
		Order("request_time ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return logs, nil
}
