package auth

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

const addressLocal = "auth_address"

// Middleware requires a valid bearer token when auth is enabled and stores
// the caller's address in the request locals.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.Enabled() {
			return c.Next()
		}
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		address, err := s.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		c.Locals(addressLocal, address)
		return c.Next()
	}
}

// Address returns the authenticated caller, if any.
func Address(c *fiber.Ctx) (common.Address, bool) {
	address, ok := c.Locals(addressLocal).(common.Address)
	return address, ok
}
