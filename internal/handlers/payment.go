package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/appdever01/pilox-backend/internal/payment"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// PaymentHandler serves rates, webhooks and the wallet QR.
type PaymentHandler struct {
	service *payment.Service
}

// NewPaymentHandler creates the payment handler.
func NewPaymentHandler(service *payment.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Rates handles GET /api/payments/rates.
func (h *PaymentHandler) Rates(c *fiber.Ctx) error {
	rates := h.service.GetRates()
	return ok(c, "", fiber.Map{
		"default_rate": rates.Default,
		"ngn_rate":     rates.Nigeria,
	})
}

// Webhook handles POST /api/payments/webhook. Always replies 200 for
// processable events so the gateway stops retrying; signature failures are
// the one hard reject.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("x-paystack-signature")
	body := c.Body()

	if err := h.service.HandleWebhook(c.Context(), body, signature); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return fail(c, fiber.StatusUnauthorized, "Invalid signature")
		}
		utils.LogError("webhook processing failed", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Webhook processing failed")
	}

	return ok(c, "Processed", nil)
}

// WalletQR handles GET /api/payments/wallet-qr.
func (h *PaymentHandler) WalletQR(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	png, err := h.service.WalletQR(c.Context(), userID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
