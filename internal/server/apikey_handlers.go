package server

import (
	"wanderlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

type deleteAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ListAPIKeys handles GET /api/apikeys
func (s *Server) ListAPIKeys(c *fiber.Ctx) error {
	keys, err := s.apiKeyService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(keys)
}

// GenerateAPIKey handles POST /api/apikeys/generate
func (s *Server) GenerateAPIKey(c *fiber.Ctx) error {
	key, err := s.apiKeyService.Generate(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"apiKey": key.Key})
}

// DeleteAPIKey handles DELETE /api/apikeys/delete
func (s *Server) DeleteAPIKey(c *fiber.Ctx) error {
	var req deleteAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.apiKeyService.Revoke(c.UserContext(), currentUserID(c), req.APIKey); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "API key deleted successfully"})
}
