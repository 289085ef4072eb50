package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Handlers map them to HTTP statuses.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeInvalidSession      = "INVALID_SESSION"
	CodeForgeryCheckFailed  = "FORGERY_CHECK_FAILED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeDuplicateEngagement = "DUPLICATE_ENGAGEMENT"
	CodeSelfFollow          = "SELF_FOLLOW"
	CodeAlreadyFollowing    = "ALREADY_FOLLOWING"
	CodeUpstream            = "UPSTREAM_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports an absent entity.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewValidationError reports missing or malformed input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewUnauthenticatedError reports a request without a session credential.
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NewInvalidSessionError reports a session credential that failed verification.
// The message never says whether signature or expiry was the cause.
func NewInvalidSessionError() *AppError {
	return &AppError{
		Code:    CodeInvalidSession,
		Message: "Invalid or expired session",
	}
}

// NewForgeryCheckFailedError reports a failed double-submit check.
func NewForgeryCheckFailedError() *AppError {
	return &AppError{
		Code:    CodeForgeryCheckFailed,
		Message: "Invalid CSRF token",
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewConflictError reports a uniqueness violation such as a taken username.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewDuplicateEngagementError(liked bool) *AppError {
	verb := "disliked"
	if liked {
		verb = "liked"
	}
	return &AppError{
		Code:    CodeDuplicateEngagement,
		Message: fmt.Sprintf("You have already %s this post", verb),
	}
}

func NewSelfFollowError() *AppError {
	return &AppError{
		Code:    CodeSelfFollow,
		Message: "You cannot follow yourself",
	}
}

func NewAlreadyFollowingError() *AppError {
	return &AppError{
		Code:    CodeAlreadyFollowing,
		Message: "You are already following this user",
	}
}

// NewUpstreamError wraps a failure of a third-party dependency.
func NewUpstreamError(service string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstream,
		Message: fmt.Sprintf("%s is unavailable", service),
		Err:     err,
	}
}

// NewInternalError wraps a storage or other unexpected failure.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code found in err's chain, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// RespondWithError creates a standardized error response.
// Wrapped causes of internal and upstream errors are never serialized.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal && appErr.Code != CodeUpstream {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: "Internal server error",
			Code:  CodeInternal,
		}
	}

	return c.Status(status).JSON(response)
}
