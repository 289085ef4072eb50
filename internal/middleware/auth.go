// Package middleware provides authentication, logging and protection middleware for the application.
package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"wanderlog/internal/models"
	"wanderlog/internal/security"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookieName holds the signed session token (httpOnly).
	SessionCookieName = "jwt"
	// CSRFCookieName holds the anti-forgery token readable by the client.
	CSRFCookieName = "csrf-token"
	// CSRFHeaderName must echo the CSRF cookie on mutating requests.
	CSRFHeaderName = "x-csrf-token"

	claimsLocal = "sessionClaims"
)

// SessionVerifier validates a session token and returns its claims.
type SessionVerifier interface {
	VerifySession(token string) (*security.SessionClaims, error)
}

// CSRFVerifier checks the internal signature of an anti-forgery token.
type CSRFVerifier interface {
	Verify(token string) bool
}

// SessionRequired rejects requests without a valid session credential and
// attaches the decoded identity to the request.
func SessionRequired(verifier SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authentication required"))
		}

		claims, err := verifier.VerifySession(token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewInvalidSessionError())
		}

		c.Locals("userID", claims.UserID)
		c.Locals(claimsLocal, claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// sessionToken reads the session cookie, falling back to a Bearer header for API clients.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// CSRFProtection enforces the double-submit check on state-mutating methods.
// The header and cookie must both be present, equal, and carry a valid signature.
func CSRFProtection(verifier CSRFVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		header := c.Get(CSRFHeaderName)
		cookie := c.Cookies(CSRFCookieName)
		if header == "" || cookie == "" ||
			subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 ||
			!verifier.Verify(header) {
			return models.RespondWithError(c, fiber.StatusForbidden, models.NewForgeryCheckFailedError())
		}

		return c.Next()
	}
}

// UserID returns the authenticated user ID set by SessionRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// Claims returns the session claims set by SessionRequired.
func Claims(c *fiber.Ctx) (*security.SessionClaims, bool) {
	claims, ok := c.Locals(claimsLocal).(*security.SessionClaims)
	return claims, ok
}
