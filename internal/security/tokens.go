// Package security issues and verifies session credentials and anti-forgery tokens.
package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"wanderlog/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "wanderlog-api"
	tokenAudience = "wanderlog-client"
)

// ErrInvalidSession covers every verification failure: bad signature, expiry,
// malformed claims. Callers must not tell them apart.
var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims is the identity recovered from a verified session token.
type SessionClaims struct {
	UserID    uint
	Email     string
	Username  string
	ExpiresAt time.Time
}

// TokenPair is the credential set handed out at login and registration.
type TokenPair struct {
	SessionToken string
	CSRFToken    string
	ExpiresAt    time.Time
}

// TokenIssuer mints signed session tokens plus an independent anti-forgery token.
type TokenIssuer struct {
	secret []byte
	csrf   *CSRFTokens
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret for ttl.
func NewTokenIssuer(secret string, csrf *CSRFTokens, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	if csrf == nil {
		return nil, fmt.Errorf("csrf token generator not configured")
	}
	return &TokenIssuer{secret: []byte(secret), csrf: csrf, ttl: ttl, now: time.Now}, nil
}

// TTL is the validity window of issued session tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// CSRF exposes the anti-forgery verifier used by the session middleware.
func (t *TokenIssuer) CSRF() *CSRFTokens {
	return t.csrf
}

// Issue creates a session token for user and a fresh anti-forgery token.
func (t *TokenIssuer) Issue(user *models.User) (*TokenPair, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"email":    user.Email,
		"username": user.Username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	csrfToken, err := t.csrf.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}

	return &TokenPair{SessionToken: signed, CSRFToken: csrfToken, ExpiresAt: expiresAt}, nil
}

// VerifySession checks signature, expiry, issuer and audience of token.
func (t *TokenIssuer) VerifySession(token string) (*SessionClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidSession
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidSession
	}

	out := &SessionClaims{UserID: uint(userID)}
	out.Email, _ = claims["email"].(string)
	out.Username, _ = claims["username"].(string)
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// generateJTI creates a unique token ID.
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
