package middleware

import (
	"context"
	"log/slog"

	"wanderlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeaderName carries the caller's API key on sessionless endpoints.
const APIKeyHeaderName = "x-api-key"

// APIKeyAuthority validates keys and records their usage.
type APIKeyAuthority interface {
	Validate(ctx context.Context, key string) (*models.APIKey, error)
	LogUsage(ctx context.Context, keyID uint, endpoint string, success bool) error
}

// APIKeyRequired authorizes a request by its x-api-key header and appends a
// usage log entry once the handler has produced a response.
func APIKeyRequired(authority APIKeyAuthority) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(APIKeyHeaderName)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("API key required"))
		}

		ctx := c.UserContext()
		key, err := authority.Validate(ctx, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if key == nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Invalid API key"))
		}

		c.Locals("apiKeyID", key.ID)
		// Copied: fiber reuses the URI buffer once the handler returns.
		endpoint := string([]byte(c.OriginalURL()))

		handlerErr := c.Next()

		success := handlerErr == nil && c.Response().StatusCode() < fiber.StatusBadRequest
		if logErr := authority.LogUsage(ctx, key.ID, endpoint, success); logErr != nil {
			Logger.ErrorContext(ctx, "failed to record api key usage",
				slog.Uint64("api_key_id", uint64(key.ID)),
				slog.String("endpoint", endpoint),
				slog.String("error", logErr.Error()),
			)
		}

		return handlerErr
	}
}
