package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_ERROR"
)

// Validation and conflict reasons. They let callers branch on the exact rule
// that failed without parsing messages.
const (
	ReasonMissingField        = "missing_field"
	ReasonNoTags              = "no_tags"
	ReasonNoIngredients       = "no_ingredients"
	ReasonDuplicateIngredient = "duplicate_ingredient"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonUnknownReference    = "unknown_reference"
	ReasonSelfSubscription    = "self_subscription"
	ReasonAlreadyExists       = "already_exists"
	ReasonInvalidField        = "invalid_field"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Reason  string              `json:"reason,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Details string              `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Reason  string
	Message string
	Fields  map[string][]string
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

// Status maps the error code onto an HTTP status.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeValidation, CodeConflict:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Reason:  ReasonInvalidField,
		Message: message,
	}
}

// NewFieldError builds a validation error keyed by the offending field.
func NewFieldError(field, reason, message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Reason:  reason,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// NewConflictError reports a uniqueness violation with a fixed, human-readable message.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Reason:  ReasonAlreadyExists,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HasReason reports whether err is an AppError with the given reason.
func HasReason(err error, reason string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Reason == reason
}

// ShowErrorDetails controls whether wrapped causes of internal errors are echoed
// back to clients. It is switched off in production.
var ShowErrorDetails = true

// RespondWithError creates a standardized error response. The status is taken
// from the AppError code; plain errors become 500s.
func RespondWithError(c *fiber.Ctx, err error) error {
	var response ErrorResponse
	status := fiber.StatusInternalServerError

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status()
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Reason: appErr.Reason,
			Fields: appErr.Fields,
		}
		if appErr.Err != nil && ShowErrorDetails {
			response.Details = appErr.Err.Error()
		}
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		response = ErrorResponse{Error: fiberErr.Message}
	default:
		response = ErrorResponse{
			Error: "Internal server error",
			Code:  CodeInternal,
		}
		if ShowErrorDetails {
			response.Details = err.Error()
		}
	}

	return c.Status(status).JSON(response)
}
