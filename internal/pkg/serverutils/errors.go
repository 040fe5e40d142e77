package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// AppError is returned by services when the failure maps to a specific HTTP
// status and machine-readable code.
type AppError struct {
	Status    int
	ErrorCode string
	Message   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, errorCode, message string) *AppError {
	return &AppError{Status: status, ErrorCode: errorCode, Message: message}
}

func NotFound(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, "not_found", message)
}

func Forbidden(message string) *AppError {
	return NewAppError(fiber.StatusForbidden, "forbidden", message)
}

func BadRequest(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, "bad_request", message)
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope. Unknown errors become 500 without leaking their text.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(ErrorResponseWithCode(appErr.Status, appErr.ErrorCode, appErr.Message))
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(&Response[map[string]string]{
				Success:   false,
				Code:      fiber.StatusBadRequest,
				Message:   "Validation failed",
				ErrorCode: "validation_failed",
				Data:      validationErr.Fields,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
