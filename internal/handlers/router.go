package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/appdever01/pilox-backend/internal/auth"
)

// Router groups all HTTP handlers and mounts them on the app.
type Router struct {
	jwt      *auth.JWTService
	auth     *AuthHandler
	credits  *CreditHandler
	pdfs     *PDFHandler
	youtube  *YouTubeHandler
	payments *PaymentHandler
}

// NewRouter creates the router.
func NewRouter(jwt *auth.JWTService, authH *AuthHandler, credits *CreditHandler, pdfs *PDFHandler, yt *YouTubeHandler, payments *PaymentHandler) *Router {
	return &Router{
		jwt:      jwt,
		auth:     authH,
		credits:  credits,
		pdfs:     pdfs,
		youtube:  yt,
		payments: payments,
	}
}

// Register mounts all routes.
func (r *Router) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public
	authGroup := api.Group("/auth")
	authGroup.Post("/register", r.auth.Register)
	authGroup.Post("/login", r.auth.Login)
	authGroup.Get("/verify", r.auth.Verify)

	api.Post("/payments/webhook", r.payments.Webhook)
	api.Get("/payments/rates", r.payments.Rates)

	// Authenticated
	protected := api.Use(auth.Middleware(r.jwt))

	protected.Get("/auth/me", r.auth.Me)

	protected.Get("/credits/balance", r.credits.Balance)
	protected.Get("/credits/history", r.credits.History)

	protected.Post("/pdf/analyze", r.pdfs.Analyze)
	protected.Post("/pdf/generate", r.pdfs.GenerateDocument)
	protected.Post("/pdf/verify-answer", r.pdfs.VerifyAnswer)
	protected.Get("/pdf/history", r.pdfs.History)
	protected.Get("/pdf/history/:id", r.pdfs.History)
	protected.Post("/pdf/:id/quiz", r.pdfs.Quiz)
	protected.Post("/pdf/:id/flashcards", r.pdfs.Flashcards)
	protected.Post("/pdf/:id/theory", r.pdfs.Theory)
	protected.Post("/pdf/:id/video", r.pdfs.GenerateVideo)
	protected.Get("/pdf/progress/:generationID", r.pdfs.Progress)

	protected.Post("/youtube/ask", r.youtube.Ask)
	protected.Get("/youtube/progress/:videoID", r.youtube.Progress)
	protected.Post("/youtube/chats/:id/limit", r.youtube.IncreaseLimit)

	protected.Get("/payments/wallet-qr", r.payments.WalletQR)
}
