package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/appdever01/pilox-backend/internal/ledger"
)

// CreditHandler exposes the user's balance and transaction history.
type CreditHandler struct {
	ledger *ledger.Ledger
}

// NewCreditHandler creates the credit handler.
func NewCreditHandler(l *ledger.Ledger) *CreditHandler {
	return &CreditHandler{ledger: l}
}

// Balance handles GET /api/credits/balance.
func (h *CreditHandler) Balance(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	balance, err := h.ledger.Balance(c.Context(), userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to compute balance")
	}

	return ok(c, "", fiber.Map{"balance": balance})
}

// History handles GET /api/credits/history.
func (h *CreditHandler) History(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	limit := c.QueryInt("limit", 50)
	transactions, err := h.ledger.History(c.Context(), userID, limit)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load history")
	}

	return ok(c, "", fiber.Map{"transactions": transactions})
}
