// Package handlers wires the HTTP surface: Fiber handlers over the domain
// services, returning {status, message, data} envelopes.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/appdever01/pilox-backend/internal/metered"
)

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// failCredits is the shared insufficient-balance response. low_balance lets
// clients route straight to the top-up screen.
func failCredits(c *fiber.Ctx) error {
	return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
		"status":      "error",
		"message":     "Insufficient credits",
		"low_balance": true,
	})
}

func isLowBalance(err error) bool {
	return errors.Is(err, metered.ErrInsufficientCredits)
}

func userIDFromCtx(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("userID").(uuid.UUID)
	return id, ok
}
