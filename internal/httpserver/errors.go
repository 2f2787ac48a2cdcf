package httpserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// statusFromError maps rich error categories onto HTTP statuses at the
// route boundary. Anything unmapped is an internal error.
func statusFromError(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.Category {
		case errors.CategoryNotFound:
			return fiber.StatusNotFound
		case errors.CategoryConflict:
			return fiber.StatusConflict
		case errors.CategoryAuth:
			return fiber.StatusUnauthorized
		case errors.CategoryValidation, errors.CategoryBadInput:
			return fiber.StatusBadRequest
		case errors.CategoryExternal:
			return fiber.StatusBadGateway
		}
	}
	return fiber.StatusInternalServerError
}

// publicMessage is the error text safe to put on the wire. Rich errors
// carry operator-curated messages; anything else is collapsed so internals
// never leak.
func publicMessage(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return "internal server error"
}
