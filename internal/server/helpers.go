package server

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/pageSize query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts page and pageSize query parameters with the given default size.
func parsePagination(c *fiber.Ctx, defaultSize int) Pagination {
	size := c.QueryInt("pageSize", defaultSize)
	if size <= 0 {
		size = defaultSize
	}
	if size > maxPaginationLimit {
		size = maxPaginationLimit
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	return Pagination{
		Page:     page,
		PageSize: size,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "postId" -> "Invalid post ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "followingId" -> "following ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	// Split on camelCase boundary before the trailing "Id" suffix.
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// statusFor maps an error's AppError code to the HTTP status returned to clients.
func statusFor(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeValidation, models.CodeSelfFollow, models.CodeAlreadyFollowing:
		return fiber.StatusBadRequest
	case models.CodeUnauthenticated, models.CodeInvalidSession:
		return fiber.StatusUnauthorized
	case models.CodeForgeryCheckFailed, models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		// Duplicate engagement, upstream and storage failures.
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Server-side failures are
// logged with their cause; the cause is never sent to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("code", models.ErrorCode(err)),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// currentUserID returns the session user. Routes using it sit behind SessionRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

// formUpload reads an optional multipart file. It returns nil when the field is absent.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Invalid file upload")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewValidationError("Invalid file upload")
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}
