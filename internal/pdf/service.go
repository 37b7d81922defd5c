// Package pdf implements the document study operations: analysis, quizzes,
// flashcards, theory questions and document generation. Every operation is
// metered; cost comes from the pricing table before any work starts.
package pdf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/ai"
	"github.com/appdever01/pilox-backend/internal/metered"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/pricing"
	"github.com/appdever01/pilox-backend/internal/upload"
)

// Question count bounds for generated sets.
const (
	minQuestions = 1
	maxQuestions = 100
)

// ErrInvalidQuestionCount rejects out-of-bounds requests before charging.
var ErrInvalidQuestionCount = fmt.Errorf("question count must be between %d and %d", minQuestions, maxQuestions)

// PageExplanation mirrors the analysis output stored on the chat history.
type PageExplanation struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Explanation string `json:"explanation"`
}

// VerificationRequest is one theory answer to grade.
type VerificationRequest struct {
	Question  string `json:"question"`
	Guideline string `json:"guideline"`
	Answer    string `json:"answer"`
}

// Service runs the PDF study operations.
type Service struct {
	db      *gorm.DB
	ai      *ai.Service
	runner  *metered.Runner
	prices  *pricing.Table
	uploads *upload.Service
}

// NewService creates the PDF service.
func NewService(db *gorm.DB, aiService *ai.Service, runner *metered.Runner, prices *pricing.Table, uploads *upload.Service) *Service {
	return &Service{db: db, ai: aiService, runner: runner, prices: prices, uploads: uploads}
}

// Analyze uploads the PDF, asks the model for page explanations and stores
// the result as a new chat history. Flat analysis price; an upload or model
// failure reverses the charge.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, fileHeader *multipart.FileHeader) (*models.ChatHistory, error) {
	cost := s.prices.Cost(pricing.KindPDFAnalysis, 0)

	var history *models.ChatHistory
	err := s.runner.Run(ctx, userID, cost, "PDF analysis: "+fileHeader.Filename, func(ctx context.Context) error {
		stored, err := s.uploads.UploadMultipart(ctx, fileHeader, upload.PDFOptions())
		if err != nil {
			return fmt.Errorf("failed to store pdf: %w", err)
		}

		result, err := s.ai.GenerateJSON(ctx, ai.Request{
			SystemPrompt: analyzeSystemPrompt,
			Prompt:       "Explain this document page by page.",
			FileURI:      stored.SecureURL,
			FileMimeType: "application/pdf",
		})
		if err != nil {
			return err
		}

		var pages []PageExplanation
		ok, err := result.Decode(&pages)
		if err != nil || !ok || len(pages) == 0 {
			return fmt.Errorf("model returned unusable analysis: %s", result.Reason)
		}

		explanations, err := json.Marshal(pages)
		if err != nil {
			return err
		}

		history = &models.ChatHistory{
			UserID:       userID,
			PdfID:        stored.PublicID,
			PdfURL:       stored.SecureURL,
			Title:        fileHeader.Filename,
			Explanations: explanations,
		}
		return s.db.WithContext(ctx).Create(history).Error
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// GenerateQuiz produces numQuestions multiple-choice questions from a
// document. Priced per question.
func (s *Service) GenerateQuiz(ctx context.Context, userID uuid.UUID, chatID uuid.UUID, numQuestions int) (ai.Result, error) {
	content, title, err := s.documentContent(ctx, userID, chatID)
	if err != nil {
		return ai.Result{}, err
	}
	return s.generateSet(ctx, userID, pricing.KindQuiz, numQuestions,
		"Quiz ("+title+")", quizPrompt(content, numQuestions))
}

// GenerateFlashcards produces numCards flashcards. Priced per card.
func (s *Service) GenerateFlashcards(ctx context.Context, userID uuid.UUID, chatID uuid.UUID, numCards int) (ai.Result, error) {
	content, title, err := s.documentContent(ctx, userID, chatID)
	if err != nil {
		return ai.Result{}, err
	}
	return s.generateSet(ctx, userID, pricing.KindFlashcard, numCards,
		"Flashcards ("+title+")", flashcardPrompt(content, numCards))
}

// GenerateTheory produces open-ended theory questions. Flat price.
func (s *Service) GenerateTheory(ctx context.Context, userID uuid.UUID, chatID uuid.UUID, numQuestions int) (ai.Result, error) {
	content, title, err := s.documentContent(ctx, userID, chatID)
	if err != nil {
		return ai.Result{}, err
	}
	return s.generateSet(ctx, userID, pricing.KindTheoryQuestions, numQuestions,
		"Theory questions ("+title+")", theoryPrompt(content, numQuestions))
}

// VerifyAnswer grades one theory answer. Flat verification price.
func (s *Service) VerifyAnswer(ctx context.Context, userID uuid.UUID, req VerificationRequest) (ai.Result, error) {
	if strings.TrimSpace(req.Answer) == "" {
		return ai.Result{}, errors.New("answer must not be empty")
	}

	cost := s.prices.Cost(pricing.KindTheoryVerification, 0)

	var result ai.Result
	err := s.runner.Run(ctx, userID, cost, "Theory answer verification", func(ctx context.Context) error {
		var genErr error
		result, genErr = s.ai.GenerateJSON(ctx, ai.Request{
			Prompt: verificationPrompt(req.Question, req.Guideline, req.Answer),
		})
		return genErr
	})
	if err != nil {
		return ai.Result{}, err
	}
	return result, nil
}

// GenerateDocument writes a fresh study document from a topic. Flat
// generation price.
func (s *Service) GenerateDocument(ctx context.Context, userID uuid.UUID, topic, style string) (ai.Result, error) {
	if strings.TrimSpace(topic) == "" {
		return ai.Result{}, errors.New("topic must not be empty")
	}
	if style == "" {
		style = "clear and concise"
	}

	cost := s.prices.Cost(pricing.KindPDFGeneration, 0)

	var result ai.Result
	err := s.runner.Run(ctx, userID, cost, "Document generation: "+topic, func(ctx context.Context) error {
		var genErr error
		result, genErr = s.ai.GenerateJSON(ctx, ai.Request{
			Prompt: documentPrompt(topic, style),
		})
		return genErr
	})
	if err != nil {
		return ai.Result{}, err
	}
	return result, nil
}

// GetHistory returns one of the user's chat histories.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID, chatID uuid.UUID) (*models.ChatHistory, error) {
	var history models.ChatHistory
	if err := s.db.WithContext(ctx).First(&history, "id = ? AND user_id = ?", chatID, userID).Error; err != nil {
		return nil, fmt.Errorf("chat history not found: %w", err)
	}
	return &history, nil
}

// ListHistories returns the user's chat histories, newest first.
func (s *Service) ListHistories(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var histories []models.ChatHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&histories).Error
	return histories, err
}

// generateSet is the shared charge-then-generate path for question sets.
func (s *Service) generateSet(ctx context.Context, userID uuid.UUID, kind pricing.Kind, quantity int, label, prompt string) (ai.Result, error) {
	if quantity < minQuestions || quantity > maxQuestions {
		return ai.Result{}, ErrInvalidQuestionCount
	}

	cost := s.prices.Cost(kind, quantity)

	var result ai.Result
	err := s.runner.Run(ctx, userID, cost, label, func(ctx context.Context) error {
		var genErr error
		result, genErr = s.ai.GenerateJSON(ctx, ai.Request{Prompt: prompt})
		return genErr
	})
	if err != nil {
		return ai.Result{}, err
	}
	return result, nil
}

// documentContent flattens a chat history's explanations into prompt text.
func (s *Service) documentContent(ctx context.Context, userID uuid.UUID, chatID uuid.UUID) (content, title string, err error) {
	history, err := s.GetHistory(ctx, userID, chatID)
	if err != nil {
		return "", "", err
	}

	var pages []PageExplanation
	if len(history.Explanations) > 0 {
		if err := json.Unmarshal(history.Explanations, &pages); err != nil {
			return "", "", fmt.Errorf("failed to decode explanations: %w", err)
		}
	}
	if len(pages) == 0 {
		return "", "", errors.New("document has not been analyzed yet")
	}

	var sb strings.Builder
	for _, page := range pages {
		fmt.Fprintf(&sb, "Page %d: %s\n%s\n\n", page.Number, page.Title, page.Content)
	}
	return sb.String(), history.Title, nil
}
