package server

import (
	"time"

	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/service"
	"wanderlog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(&req); err != nil {
		return respondError(c, err)
	}

	result, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// Existing clients expect a duplicate account to surface as 500.
		if models.ErrorCode(err) == models.CodeConflict {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		return respondError(c, err)
	}

	s.setSessionCookies(c, result)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"accessToken": result.Tokens.SessionToken,
		"csrfToken":   result.Tokens.CSRFToken,
		"apiKey":      result.APIKey,
		"user":        result.User,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(&req); err != nil {
		return respondError(c, err)
	}

	result, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	s.setSessionCookies(c, result)
	return c.JSON(fiber.Map{
		"user":      result.User,
		"csrfToken": result.Tokens.CSRFToken,
		"apiKey":    result.APIKey,
	})
}

// Logout handles POST /api/auth/logout. Tokens stay valid until they expire;
// the client simply loses its cookies.
func (s *Server) Logout(c *fiber.Ctx) error {
	for _, name := range []string{middleware.SessionCookieName, middleware.CSRFCookieName} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: name == middleware.SessionCookieName,
			Secure:   s.config.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// ResetPassword handles POST /api/auth/reset-password
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(&req); err != nil {
		return respondError(c, err)
	}

	if err := s.authService.ResetPassword(c.UserContext(), req.Email, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// setSessionCookies sets the httpOnly session cookie and the script-readable
// anti-forgery cookie, both living as long as the session.
func (s *Server) setSessionCookies(c *fiber.Ctx, result *service.AuthResult) {
	expires := result.Tokens.ExpiresAt
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Tokens.SessionToken,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    result.Tokens.CSRFToken,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: false,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
