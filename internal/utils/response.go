package utils

import (
	"errors"
	"time"

	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int         `json:"status"`
	Errors    interface{} `json:"errors"`
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	Timestamp string      `json:"timestamp"`
	URL       string      `json:"url"`
	Type      string      `json:"type,omitempty"`
}

// Paginated is the body of every paginated list.
type Paginated struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

var errorKinds = []struct {
	kind   error
	status int
	name   string
}{
	{types.ErrValidation, fiber.StatusBadRequest, "validation"},
	{types.ErrUnauthorized, fiber.StatusUnauthorized, "unauthorized"},
	{types.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{types.ErrNotFound, fiber.StatusNotFound, "notfound"},
	{types.ErrConflict, fiber.StatusBadRequest, "conflict"},
	{types.ErrInvalidOperation, fiber.StatusBadRequest, "invalid"},
}

// StatusFor maps an error to its HTTP status and error type name.
func StatusFor(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.status, k.name
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, "http"
	}
	return fiber.StatusInternalServerError, "internal"
}

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response. Only application errors and
// fiber errors expose their message.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status, errorType := StatusFor(err)

	var detail interface{}
	message := fiber.ErrInternalServerError.Message
	var appErr *types.AppError
	var fe *fiber.Error
	switch {
	case errors.As(err, &appErr):
		detail = appErr.Detail()
		message = appErr.Message
	case errors.As(err, &fe):
		detail = fe.Message
		message = fe.Message
	default:
		detail = message
	}

	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Errors:    detail,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, types.NotFound(message))
}
