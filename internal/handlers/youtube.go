package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/appdever01/pilox-backend/internal/youtube"
)

// YouTubeHandler serves the transcript chat endpoints.
type YouTubeHandler struct {
	service *youtube.Service
}

// NewYouTubeHandler creates the YouTube handler.
func NewYouTubeHandler(service *youtube.Service) *YouTubeHandler {
	return &YouTubeHandler{service: service}
}

// Ask handles POST /api/youtube/ask.
func (h *YouTubeHandler) Ask(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var input struct {
		VideoURL string `json:"video_url"`
		Question string `json:"question"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if input.VideoURL == "" || input.Question == "" {
		return fail(c, fiber.StatusBadRequest, "video_url and question are required")
	}

	answer, err := h.service.AskQuestion(c.Context(), userID, input.VideoURL, input.Question)
	if err != nil {
		switch {
		case isLowBalance(err):
			return failCredits(c)
		case errors.Is(err, youtube.ErrTranscriptUnavailable):
			return fail(c, fiber.StatusUnprocessableEntity, "This video has no transcript available")
		case errors.Is(err, youtube.ErrQuestionLimitReached):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"status":        "error",
				"message":       "Question limit reached for this chat",
				"limit_reached": true,
			})
		default:
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
	}

	return ok(c, "", answer)
}

// Progress handles GET /api/youtube/progress/:videoID.
func (h *YouTubeHandler) Progress(c *fiber.Ctx) error {
	if _, okID := userIDFromCtx(c); !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	progress, err := h.service.IngestionProgress(c.Context(), c.Params("videoID"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown video")
	}

	return ok(c, "", fiber.Map{"progress": progress})
}

// IncreaseLimit handles POST /api/youtube/chats/:id/limit.
func (h *YouTubeHandler) IncreaseLimit(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid chat id")
	}

	newLimit, err := h.service.IncreaseChatLimit(c.Context(), userID, chatID)
	if err != nil {
		if isLowBalance(err) {
			return failCredits(c)
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	return ok(c, "Question limit increased", fiber.Map{"limit": newLimit})
}
