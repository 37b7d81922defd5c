package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/ai"
	"github.com/appdever01/pilox-backend/internal/metered"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/pricing"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// ErrQuestionLimitReached marks a chat that used up its question budget.
var ErrQuestionLimitReached = errors.New("question limit reached for this chat")

// questionsPerTopUp is how many questions one limit purchase adds.
const questionsPerTopUp = 10

// Answer is the outcome of AskQuestion. While ingestion is still running
// the state is "analyzing" and Reply is empty.
type Answer struct {
	State     string    `json:"state"` // analyzing | answered
	Progress  int       `json:"progress,omitempty"`
	Reply     string    `json:"reply,omitempty"`
	ChatID    uuid.UUID `json:"chat_id,omitempty"`
	Remaining int       `json:"remaining_questions,omitempty"`
}

// Service owns transcript ingestion and the metered chat.
type Service struct {
	db     *gorm.DB
	source TranscriptSource
	ai     *ai.Service
	runner *metered.Runner
	prices *pricing.Table

	httpClient *http.Client
}

// NewService creates the YouTube service.
func NewService(db *gorm.DB, source TranscriptSource, aiService *ai.Service, runner *metered.Runner, prices *pricing.Table) *Service {
	return &Service{
		db:         db,
		source:     source,
		ai:         aiService,
		runner:     runner,
		prices:     prices,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureTranscript returns the cached transcript row, starting ingestion
// when the video is unseen or a previous fetch failed.
func (s *Service) EnsureTranscript(ctx context.Context, videoID string) (*models.YoutubeTranscript, error) {
	var transcript models.YoutubeTranscript
	err := s.db.WithContext(ctx).First(&transcript, "video_id = ?", videoID).Error

	switch {
	case err == nil:
		if transcript.Progress == models.TranscriptFailed {
			// Retry failed ingestions on demand.
			transcript.Progress = 0
			if err := s.db.WithContext(ctx).Save(&transcript).Error; err != nil {
				return nil, err
			}
			go s.ingest(videoID)
		}
		return &transcript, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		transcript = models.YoutubeTranscript{VideoID: videoID, Progress: 0}
		if err := s.db.WithContext(ctx).Create(&transcript).Error; err != nil {
			return nil, err
		}
		go s.ingest(videoID)
		return &transcript, nil

	default:
		return nil, err
	}
}

// ingest fetches and stores the transcript. Runs detached from the request;
// progress lands in the row for pollers.
func (s *Service) ingest(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	segments, err := s.source.Fetch(ctx, videoID)
	if err != nil {
		utils.LogWarn("transcript ingestion failed", map[string]interface{}{
			"video_id": videoID,
			"error":    err.Error(),
		})
		s.setProgress(ctx, videoID, models.TranscriptFailed, nil)
		return
	}

	raw, err := json.Marshal(segments)
	if err != nil {
		s.setProgress(ctx, videoID, models.TranscriptFailed, nil)
		return
	}

	s.setProgress(ctx, videoID, models.TranscriptComplete, raw)
}

func (s *Service) setProgress(ctx context.Context, videoID string, progress int, transcript []byte) {
	updates := map[string]interface{}{"progress": progress}
	if transcript != nil {
		updates["transcript"] = transcript
	}
	if err := s.db.WithContext(ctx).Model(&models.YoutubeTranscript{}).
		Where("video_id = ?", videoID).Updates(updates).Error; err != nil {
		utils.LogError("failed to update transcript progress", err, map[string]interface{}{
			"video_id": videoID,
		})
	}
}

// IngestionProgress reports 0..100, or -1 after a failed fetch.
func (s *Service) IngestionProgress(ctx context.Context, videoID string) (int, error) {
	var transcript models.YoutubeTranscript
	if err := s.db.WithContext(ctx).First(&transcript, "video_id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("unknown video")
		}
		return 0, err
	}
	return transcript.Progress, nil
}

// AskQuestion answers a question over the video transcript. Opening a new
// chat charges the flat chat price; questions inside an open chat draw from
// its question limit instead.
func (s *Service) AskQuestion(ctx context.Context, userID uuid.UUID, videoURL, question string) (*Answer, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	transcript, err := s.EnsureTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if transcript.Progress == models.TranscriptFailed {
		return nil, ErrTranscriptUnavailable
	}
	if transcript.Progress < models.TranscriptComplete {
		return &Answer{State: "analyzing", Progress: transcript.Progress}, nil
	}

	var chat models.YoutubeChatHistory
	err = s.db.WithContext(ctx).First(&chat, "user_id = ? AND video_id = ?", userID, videoID).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.startChat(ctx, userID, videoID, transcript, question)
	case err != nil:
		return nil, err
	}

	return s.continueChat(ctx, &chat, transcript, question)
}

// startChat is the charged path: the flat chat price buys the chat and its
// initial question budget. An AI failure reverses the charge.
func (s *Service) startChat(ctx context.Context, userID uuid.UUID, videoID string, transcript *models.YoutubeTranscript, question string) (*Answer, error) {
	title, titleErr := FetchTitle(ctx, s.httpClient, videoID)
	if titleErr != nil || title == "" {
		title = videoID
	}

	cost := s.prices.Cost(pricing.KindYouTubeChat, 0)

	var answer *Answer
	err := s.runner.Run(ctx, userID, cost, "YouTube chat: "+title, func(ctx context.Context) error {
		reply, err := s.answer(ctx, transcript, nil, question)
		if err != nil {
			return err
		}

		messages := []models.ChatMessage{
			{Role: "user", Content: question},
			{Role: "model", Content: reply},
		}
		raw, err := json.Marshal(messages)
		if err != nil {
			return err
		}

		chat := models.YoutubeChatHistory{
			UserID:   userID,
			VideoID:  videoID,
			Title:    title,
			Messages: raw,
			Limit:    questionsPerTopUp,
		}
		if err := s.db.WithContext(ctx).Create(&chat).Error; err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}

		answer = &Answer{
			State:     "answered",
			Reply:     reply,
			ChatID:    chat.ID,
			Remaining: chat.Limit - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// continueChat is the free path, bounded by the chat's question limit.
func (s *Service) continueChat(ctx context.Context, chat *models.YoutubeChatHistory, transcript *models.YoutubeTranscript, question string) (*Answer, error) {
	var messages []models.ChatMessage
	if len(chat.Messages) > 0 {
		if err := json.Unmarshal(chat.Messages, &messages); err != nil {
			return nil, fmt.Errorf("failed to decode chat history: %w", err)
		}
	}

	asked := 0
	for _, m := range messages {
		if m.Role == "user" {
			asked++
		}
	}
	if asked >= chat.Limit {
		return nil, ErrQuestionLimitReached
	}

	reply, err := s.answer(ctx, transcript, messages, question)
	if err != nil {
		return nil, err
	}

	messages = append(messages,
		models.ChatMessage{Role: "user", Content: question},
		models.ChatMessage{Role: "model", Content: reply},
	)
	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(chat).Update("messages", raw).Error; err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}

	return &Answer{
		State:     "answered",
		Reply:     reply,
		ChatID:    chat.ID,
		Remaining: chat.Limit - asked - 1,
	}, nil
}

// IncreaseChatLimit buys another question batch for an existing chat.
func (s *Service) IncreaseChatLimit(ctx context.Context, userID uuid.UUID, chatID uuid.UUID) (int, error) {
	var chat models.YoutubeChatHistory
	if err := s.db.WithContext(ctx).First(&chat, "id = ? AND user_id = ?", chatID, userID).Error; err != nil {
		return 0, fmt.Errorf("chat not found: %w", err)
	}

	cost := s.prices.Cost(pricing.KindYouTubeChat, 0)
	newLimit := chat.Limit + questionsPerTopUp

	err := s.runner.Run(ctx, userID, cost, "YouTube chat limit top-up: "+chat.Title, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Model(&chat).Update("question_limit", newLimit).Error
	})
	if err != nil {
		return 0, err
	}

	return newLimit, nil
}

// answer prompts the model with the transcript and rolling history.
func (s *Service) answer(ctx context.Context, transcript *models.YoutubeTranscript, history []models.ChatMessage, question string) (string, error) {
	var segments []Segment
	if err := json.Unmarshal(transcript.Transcript, &segments); err != nil {
		return "", fmt.Errorf("failed to decode transcript: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
		sb.WriteString(" ")
	}

	var convo strings.Builder
	for _, m := range history {
		convo.WriteString(m.Role)
		convo.WriteString(": ")
		convo.WriteString(m.Content)
		convo.WriteString("\n")
	}
	convo.WriteString("user: ")
	convo.WriteString(question)

	reply, err := s.ai.Generate(ctx, ai.Request{
		SystemPrompt: "You are a helpful tutor. Answer questions strictly from the provided video transcript. If the transcript does not cover the question, say so.",
		Prompt:       fmt.Sprintf("Transcript:\n%s\n\nConversation so far:\n%s", sb.String(), convo.String()),
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(reply), nil
}
