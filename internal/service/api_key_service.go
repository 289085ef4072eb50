package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"

	"wanderlog/internal/models"
	"wanderlog/internal/observability"
	"wanderlog/internal/repository"
)

const apiKeyBytes = 32

// APIKeyService manages the secondary credential used by sessionless endpoints.
type APIKeyService struct {
	repo repository.APIKeyRepository
}

func NewAPIKeyService(repo repository.APIKeyRepository) *APIKeyService {
	return &APIKeyService{repo: repo}
}

// Generate mints a random key for userID with a zero usage count.
func (s *APIKeyService) Generate(ctx context.Context, userID uint) (*models.APIKey, error) {
	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, models.NewInternalError(err)
	}
	key := &models.APIKey{
		Key:      hex.EncodeToString(raw),
		UserID:   userID,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// EnsureKey returns the user's newest active key, generating one if needed.
func (s *APIKeyService) EnsureKey(ctx context.Context, userID uint) (*models.APIKey, error) {
	key, err := s.repo.LatestActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if key != nil {
		return key, nil
	}
	return s.Generate(ctx, userID)
}

// Validate returns the active key record for raw, or nil when none exists.
func (s *APIKeyService) Validate(ctx context.Context, raw string) (*models.APIKey, error) {
	if raw == "" {
		return nil, nil
	}
	return s.repo.GetByKey(ctx, raw)
}

// LogUsage records one guarded request against keyID.
func (s *APIKeyService) LogUsage(ctx context.Context, keyID uint, endpoint string, success bool) error {
	if err := s.repo.LogUsage(ctx, keyID, endpoint, success); err != nil {
		return err
	}
	observability.APIKeyUsage.WithLabelValues(strconv.FormatBool(success)).Inc()
	return nil
}

func (s *APIKeyService) List(ctx context.Context, userID uint) ([]models.APIKey, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Revoke deletes key when userID owns it. A key owned by someone else is
// reported as not found.
func (s *APIKeyService) Revoke(ctx context.Context, userID uint, key string) error {
	if key == "" {
		return models.NewValidationError("apiKey is required")
	}
	deleted, err := s.repo.DeleteForUser(ctx, key, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return &models.AppError{Code: models.CodeNotFound, Message: "API key not found"}
	}
	return nil
}
