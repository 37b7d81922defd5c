package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/email"
	"github.com/appdever01/pilox-backend/internal/jobs"
	"github.com/appdever01/pilox-backend/internal/metered"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/progress"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
	"github.com/appdever01/pilox-backend/internal/upload"
)

// JobHandler runs queued video jobs. Settlement is terminal-only: a failed
// attempt with retries left leaves the reservation pending so the retry can
// still complete it.
type JobHandler struct {
	db        *gorm.DB
	generator *Generator
	uploads   *upload.Service
	runner    *metered.Runner
	emails    *email.Service
	tracker   *progress.Tracker
}

// NewJobHandler creates the worker-side handler.
func NewJobHandler(db *gorm.DB, generator *Generator, uploads *upload.Service, runner *metered.Runner, emails *email.Service, tracker *progress.Tracker) *JobHandler {
	return &JobHandler{
		db:        db,
		generator: generator,
		uploads:   uploads,
		runner:    runner,
		emails:    emails,
		tracker:   tracker,
	}
}

// Type implements jobs.Handler.
func (h *JobHandler) Type() string {
	return jobs.TypeVideoGeneration
}

// Handle implements jobs.Handler.
func (h *JobHandler) Handle(ctx context.Context, job *jobs.Job) error {
	var payload JobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// Unparseable payload never improves with retries.
		return fmt.Errorf("invalid video job payload: %w", err)
	}

	err := h.process(ctx, &payload)
	if err == nil {
		return nil
	}

	if job.Attempts >= job.MaxRetries {
		h.finishFailed(ctx, &payload, err)
	}
	return err
}

func (h *JobHandler) process(ctx context.Context, payload *JobPayload) error {
	videoPath, err := h.generator.Generate(ctx, payload.GenerationID, payload.Pages)
	if err != nil {
		return err
	}
	defer os.Remove(videoPath)

	file, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("failed to open rendered video: %w", err)
	}
	defer file.Close()

	opts := upload.VideoOptions()
	opts.PublicID = payload.GenerationID
	result, err := h.uploads.Upload(ctx, file, filepath.Base(videoPath), opts)
	if err != nil {
		return fmt.Errorf("failed to upload video: %w", err)
	}

	updates := map[string]interface{}{
		"video_url":                  result.SecureURL,
		"video_generation_completed": true,
		"video_generation_error":     "",
	}
	if err := h.db.WithContext(ctx).Model(&models.ChatHistory{}).
		Where("id = ?", payload.ChatHistoryID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to store video url: %w", err)
	}

	if err := h.runner.Resume(payload.Reference).Complete(ctx); err != nil {
		utils.LogError("failed to settle video reservation", err, map[string]interface{}{
			"reference": payload.Reference,
		})
	}

	phase := progress.PhaseCompleted
	message := "Video ready"
	done := 1
	h.tracker.Update(ctx, payload.GenerationID, progress.Update{
		Phase:          &phase,
		Message:        &message,
		CompletedSteps: &done,
		TotalSteps:     &done,
	})

	subject, body := email.VideoReadyEmail(payload.Name, payload.PdfName, result.SecureURL)
	if err := h.emails.SendEmail(payload.Email, subject, body); err != nil {
		utils.LogWarn("failed to send video ready email", map[string]interface{}{
			"email": payload.Email,
			"error": err.Error(),
		})
	}

	return nil
}

// finishFailed runs once, on the last attempt: reverse the charge, record
// the error, tell the user.
func (h *JobHandler) finishFailed(ctx context.Context, payload *JobPayload, jobErr error) {
	if err := h.runner.Resume(payload.Reference).Fail(ctx); err != nil {
		utils.LogError("failed to reverse video reservation", err, map[string]interface{}{
			"reference": payload.Reference,
		})
	}

	if err := h.db.WithContext(ctx).Model(&models.ChatHistory{}).
		Where("id = ?", payload.ChatHistoryID).
		Update("video_generation_error", jobErr.Error()).Error; err != nil {
		utils.LogError("failed to record video generation error", err, map[string]interface{}{
			"chat_history_id": payload.ChatHistoryID.String(),
		})
	}

	phase := progress.PhaseError
	message := "Video generation failed"
	errText := jobErr.Error()
	h.tracker.Update(ctx, payload.GenerationID, progress.Update{
		Phase:   &phase,
		Message: &message,
		Error:   &errText,
	})

	subject, body := email.VideoFailedEmail(payload.Name, payload.PdfName)
	if err := h.emails.SendEmail(payload.Email, subject, body); err != nil {
		utils.LogWarn("failed to send video failure email", map[string]interface{}{
			"email": payload.Email,
			"error": err.Error(),
		})
	}
}
