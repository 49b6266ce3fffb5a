// Package httpx holds the application error taxonomy and its HTTP rendering.
package httpx

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
)

// Error is returned by services; the error handler turns it into a response.
type Error struct {
	Kind    Kind
	Message string
	// Code is an optional machine readable reason sent as "error".
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg, Code: "validation_error"} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg, Code: "conflict"} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg, Code: "not_found"} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg, Code: "unauthorized"} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg, Code: "forbidden"} }

// Internal wraps an unexpected failure. msg is shown to the caller, err only logged.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *Error
		if errors.As(err, &appErr) {
			if appErr.Kind == KindInternal {
				log.Error(appErr.Message,
					slog.String("method", c.Method()),
					slog.String("path", c.Path()),
					slog.Any("error", appErr.Err))
			}
			return c.Status(appErr.Status()).JSON(ErrorResponse{Message: appErr.Message, Error: appErr.Code})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{Message: fe.Message})
		}

		log.Error("unexpected error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: "Internal server error"})
	}
}
