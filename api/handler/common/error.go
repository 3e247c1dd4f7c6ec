package common

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSONError writes {error: msg} with the given status.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// StatusFromError maps the error taxonomy onto HTTP status codes.
func StatusFromError(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var se *types.StandardError
	if !errors.As(err, &se) {
		return fiber.StatusInternalServerError
	}
	switch se.Type {
	case types.ErrTypeValidation, types.ErrTypeInvalidValue, types.ErrTypeBadRequest:
		return fiber.StatusBadRequest
	case types.ErrTypeUnauthorized:
		return fiber.StatusUnauthorized
	case types.ErrTypeNotFound:
		return fiber.StatusNotFound
	case types.ErrTypeRateLimit:
		return fiber.StatusTooManyRequests
	case types.ErrTypeTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
