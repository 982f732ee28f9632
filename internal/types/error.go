package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Services wrap one of these so handlers can map the failure
// to a status code with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("authentication required")
	ErrForbidden        = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
)

// FieldErrors maps a request field name to its messages.
type FieldErrors map[string][]string

// Add appends a message for the field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Merge copies every message of other into f.
func (f FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		f[field] = append(f[field], messages...)
	}
}

// AppError is the error value returned by the service layer.
type AppError struct {
	Kind    error
	Message string
	Fields  FieldErrors
}

func (e *AppError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, ", "))
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Detail is the value rendered under "errors" in a response body.
func (e *AppError) Detail() interface{} {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return e.Message
}

func Validation(fields FieldErrors) *AppError {
	return &AppError{Kind: ErrValidation, Message: "Ошибка валидации данных.", Fields: fields}
}

// FieldError is a validation error for a single field.
func FieldError(field, message string) *AppError {
	return Validation(FieldErrors{field: {message}})
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: ErrForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Message: message}
}

func InvalidOperation(message string) *AppError {
	return &AppError{Kind: ErrInvalidOperation, Message: message}
}
