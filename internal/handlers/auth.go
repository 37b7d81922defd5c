package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/appdever01/pilox-backend/internal/auth"
)

// AuthHandler serves registration, login and verification.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input auth.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.service.Register(c.Context(), input)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return fail(c, fiber.StatusConflict, "Email already registered")
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	return ok(c, "Account created. Check your email to verify and unlock your welcome credits.", result)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.service.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return fail(c, fiber.StatusInternalServerError, "Login failed")
	}

	return ok(c, "Logged in", result)
}

// Verify handles GET /api/auth/verify?token=...
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fail(c, fiber.StatusBadRequest, "Missing verification token")
	}

	user, err := h.service.VerifyEmail(c.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return fail(c, fiber.StatusBadRequest, "Invalid or expired verification token")
		}
		return fail(c, fiber.StatusInternalServerError, "Verification failed")
	}

	return ok(c, "Email verified", user)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.service.GetUser(c.Context(), userID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "User not found")
	}

	return ok(c, "", user)
}
