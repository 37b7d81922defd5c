package video

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/jobs"
	"github.com/appdever01/pilox-backend/internal/metered"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/pricing"
	"github.com/appdever01/pilox-backend/internal/progress"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// JobPayload is persisted with the queued job. The reservation reference
// travels here so a worker on any process can settle the charge.
type JobPayload struct {
	GenerationID  string    `json:"generation_id"`
	ChatHistoryID uuid.UUID `json:"chat_history_id"`
	UserID        uuid.UUID `json:"user_id"`
	PdfName       string    `json:"pdf_name"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Reference     string    `json:"reference"`
	Pages         []Page    `json:"pages"`
}

// Service accepts video generation requests: price the job, reserve
// credits, enqueue, reply. Rendering happens in the worker.
type Service struct {
	db      *gorm.DB
	runner  *metered.Runner
	prices  *pricing.Table
	queue   *jobs.Queue
	tracker *progress.Tracker
}

// NewService creates the request-side video service.
func NewService(db *gorm.DB, runner *metered.Runner, prices *pricing.Table, queue *jobs.Queue, tracker *progress.Tracker) *Service {
	return &Service{db: db, runner: runner, prices: prices, queue: queue, tracker: tracker}
}

// RequestGeneration reserves credits and enqueues the render job. Returns
// the generation id clients poll for progress. Insufficient balance surfaces
// as metered.ErrInsufficientCredits with nothing enqueued.
func (s *Service) RequestGeneration(ctx context.Context, userID uuid.UUID, chatHistoryID uuid.UUID) (string, error) {
	var history models.ChatHistory
	if err := s.db.WithContext(ctx).First(&history, "id = ? AND user_id = ?", chatHistoryID, userID).Error; err != nil {
		return "", fmt.Errorf("chat history not found: %w", err)
	}
	if history.VideoGenerationCompleted && history.VideoURL != "" {
		return "", fmt.Errorf("video already generated for this document")
	}

	pages, err := pagesFromHistory(&history)
	if err != nil {
		return "", err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", fmt.Errorf("user not found: %w", err)
	}

	cost := s.prices.Cost(pricing.KindVideoGeneration, 0)
	res, err := s.runner.Begin(ctx, userID, cost, "Video generation: "+history.Title)
	if err != nil {
		return "", err
	}

	generationID := uuid.New().String()
	payload := JobPayload{
		GenerationID:  generationID,
		ChatHistoryID: history.ID,
		UserID:        userID,
		PdfName:       history.Title,
		Email:         user.Email,
		Name:          user.Name,
		Reference:     res.Reference,
		Pages:         pages,
	}

	if _, err := s.queue.Enqueue(ctx, userID, jobs.TypeVideoGeneration, payload); err != nil {
		// The job never existed, release the hold now.
		if failErr := res.Fail(ctx); failErr != nil {
			utils.LogError("failed to release reservation after enqueue failure", failErr, map[string]interface{}{
				"reference": res.Reference,
			})
		}
		return "", fmt.Errorf("failed to enqueue video job: %w", err)
	}

	if err := s.tracker.Init(ctx, generationID); err != nil {
		utils.LogWarn("failed to initialize progress record", map[string]interface{}{
			"generation_id": generationID,
			"error":         err.Error(),
		})
	}

	return generationID, nil
}

func pagesFromHistory(history *models.ChatHistory) ([]Page, error) {
	if len(history.Explanations) == 0 {
		return nil, fmt.Errorf("document has no explanations to narrate")
	}

	var pages []Page
	if err := json.Unmarshal(history.Explanations, &pages); err != nil {
		return nil, fmt.Errorf("failed to decode explanations: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("document has no explanations to narrate")
	}
	return pages, nil
}
