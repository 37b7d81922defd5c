package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/appdever01/pilox-backend/internal/ai"
	"github.com/appdever01/pilox-backend/internal/pdf"
	"github.com/appdever01/pilox-backend/internal/progress"
	"github.com/appdever01/pilox-backend/internal/video"
)

// PDFHandler serves the document study endpoints.
type PDFHandler struct {
	pdfs    *pdf.Service
	videos  *video.Service
	tracker *progress.Tracker
}

// NewPDFHandler creates the PDF handler.
func NewPDFHandler(pdfs *pdf.Service, videos *video.Service, tracker *progress.Tracker) *PDFHandler {
	return &PDFHandler{pdfs: pdfs, videos: videos, tracker: tracker}
}

// Analyze handles POST /api/pdf/analyze (multipart upload).
func (h *PDFHandler) Analyze(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Missing PDF file")
	}

	history, err := h.pdfs.Analyze(c.Context(), userID, fileHeader)
	if err != nil {
		if isLowBalance(err) {
			return failCredits(c)
		}
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return ok(c, "Document analyzed", history)
}

// Quiz handles POST /api/pdf/:id/quiz.
func (h *PDFHandler) Quiz(c *fiber.Ctx) error {
	return h.generate(c, func(userID, chatID uuid.UUID, n int) (ai.Result, error) {
		return h.pdfs.GenerateQuiz(c.Context(), userID, chatID, n)
	})
}

// Flashcards handles POST /api/pdf/:id/flashcards.
func (h *PDFHandler) Flashcards(c *fiber.Ctx) error {
	return h.generate(c, func(userID, chatID uuid.UUID, n int) (ai.Result, error) {
		return h.pdfs.GenerateFlashcards(c.Context(), userID, chatID, n)
	})
}

// Theory handles POST /api/pdf/:id/theory.
func (h *PDFHandler) Theory(c *fiber.Ctx) error {
	return h.generate(c, func(userID, chatID uuid.UUID, n int) (ai.Result, error) {
		return h.pdfs.GenerateTheory(c.Context(), userID, chatID, n)
	})
}

func (h *PDFHandler) generate(c *fiber.Ctx, run func(userID, chatID uuid.UUID, n int) (ai.Result, error)) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid chat id")
	}

	var input struct {
		NumQuestions int `json:"num_questions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := run(userID, chatID, input.NumQuestions)
	if err != nil {
		if isLowBalance(err) {
			return failCredits(c)
		}
		if errors.Is(err, pdf.ErrInvalidQuestionCount) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return resultResponse(c, result)
}

// VerifyAnswer handles POST /api/pdf/verify-answer.
func (h *PDFHandler) VerifyAnswer(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var input pdf.VerificationRequest
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.pdfs.VerifyAnswer(c.Context(), userID, input)
	if err != nil {
		if isLowBalance(err) {
			return failCredits(c)
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	return resultResponse(c, result)
}

// GenerateDocument handles POST /api/pdf/generate.
func (h *PDFHandler) GenerateDocument(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var input struct {
		Topic string `json:"topic"`
		Style string `json:"style"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.pdfs.GenerateDocument(c.Context(), userID, input.Topic, input.Style)
	if err != nil {
		if isLowBalance(err) {
			return failCredits(c)
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	return resultResponse(c, result)
}

// GenerateVideo handles POST /api/pdf/:id/video.
func (h *PDFHandler) GenerateVideo(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid chat id")
	}

	generationID, err := h.videos.RequestGeneration(c.Context(), userID, chatID)
	if err != nil {
		if isLowBalance(err) {
			return failCredits(c)
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	return ok(c, "Video generation started", fiber.Map{"generation_id": generationID})
}

// Progress handles GET /api/pdf/progress/:generationID.
func (h *PDFHandler) Progress(c *fiber.Ctx) error {
	if _, okID := userIDFromCtx(c); !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	record, err := h.tracker.Get(c.Context(), c.Params("generationID"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load progress")
	}
	if record == nil {
		return fail(c, fiber.StatusNotFound, "Unknown generation id")
	}

	return ok(c, "", record)
}

// History handles GET /api/pdf/history and GET /api/pdf/history/:id.
func (h *PDFHandler) History(c *fiber.Ctx) error {
	userID, okID := userIDFromCtx(c)
	if !okID {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if raw := c.Params("id"); raw != "" {
		chatID, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid chat id")
		}
		history, err := h.pdfs.GetHistory(c.Context(), userID, chatID)
		if err != nil {
			return fail(c, fiber.StatusNotFound, "Chat history not found")
		}
		return ok(c, "", history)
	}

	histories, err := h.pdfs.ListHistories(c.Context(), userID, c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load histories")
	}
	return ok(c, "", fiber.Map{"histories": histories})
}

// resultResponse maps the tagged AI result onto the envelope: parsed JSON
// goes out as data, unparsed text is surfaced as-is with its reason.
func resultResponse(c *fiber.Ctx, result ai.Result) error {
	if result.Parsed {
		return ok(c, "", result.Data)
	}
	return c.JSON(fiber.Map{
		"status":  "partial",
		"message": result.Reason,
		"data":    fiber.Map{"raw": result.Raw},
	})
}
