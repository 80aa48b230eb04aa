package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies a failure so the API boundary can map it to a
// status code and response shape in one place.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindUnauthorized   ErrorKind = "unauthorized"
	KindNotFound       ErrorKind = "not_found"
	KindForbidden      ErrorKind = "forbidden"
	KindInvalidState   ErrorKind = "invalid_state"
	KindAuthRequired   ErrorKind = "authorization_required"
	KindReauthRequired ErrorKind = "reauthorization_required"
	KindExternal       ErrorKind = "external_service"
)

// Error is the single error type surfaced by controllers and models.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func AuthRequired(message string) *Error {
	return &Error{Kind: KindAuthRequired, Message: message}
}

func ReauthRequired(message string) *Error {
	return &Error{Kind: KindReauthRequired, Message: message}
}

func External(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

// Internal wraps an unexpected failure (datastore errors and the like).
func Internal(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

// Respond writes the uniform failure body for err and returns the fiber error.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Unexpected error",
			"error":   err.Error(),
		})
	}

	body := fiber.Map{
		"success": false,
		"message": appErr.Message,
	}
	if appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}

	status := fiber.StatusInternalServerError
	switch appErr.Kind {
	case KindValidation, KindInvalidState:
		status = fiber.StatusBadRequest
	case KindUnauthorized:
		status = fiber.StatusUnauthorized
	case KindNotFound:
		status = fiber.StatusNotFound
	case KindForbidden:
		status = fiber.StatusForbidden
	case KindAuthRequired:
		status = fiber.StatusBadRequest
		body["requiresAuth"] = true
	case KindReauthRequired:
		status = fiber.StatusUnauthorized
		body["requiresReauth"] = true
	case KindExternal:
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(body)
}
