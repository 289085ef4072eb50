package service

import (
	"context"
	"errors"
	"strings"

	"wanderlog/internal/models"
	"wanderlog/internal/repository"
	"wanderlog/internal/security"
	"wanderlog/internal/validation"
)

// AuthService registers users and exchanges credentials for a session.
type AuthService struct {
	users  repository.UserRepository
	keys   *APIKeyService
	tokens *security.TokenIssuer
	hash   func(string) (string, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is everything a client receives at login or registration.
type AuthResult struct {
	User   *models.User
	Tokens *security.TokenPair
	APIKey string
}

func NewAuthService(users repository.UserRepository, keys *APIKeyService, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{users: users, keys: keys, tokens: tokens, hash: security.HashPassword}
}

// Register creates the user, their first API key and a session.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	key, err := s.keys.Generate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.session(user, key.Key)
}

// Login verifies username and password. Unknown users and wrong passwords
// produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalidCredentials()
	}
	if err := security.CheckPassword(user.Password, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, invalidCredentials()
		}
		return nil, models.NewInternalError(err)
	}

	key, err := s.keys.EnsureKey(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.session(user, key.Key)
}

// ResetPassword replaces the password of the account registered to email.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || newPassword == "" {
		return models.NewValidationError("Email and new password are required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return &models.AppError{Code: models.CodeNotFound, Message: "No account is registered with that email"}
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// VerifySession validates a session token.
func (s *AuthService) VerifySession(token string) (*security.SessionClaims, error) {
	return s.tokens.VerifySession(token)
}

func (s *AuthService) session(user *models.User, apiKey string) (*AuthResult, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Tokens: pair, APIKey: apiKey}, nil
}

func invalidCredentials() *models.AppError {
	return models.NewUnauthenticatedError("Invalid username or password")
}
