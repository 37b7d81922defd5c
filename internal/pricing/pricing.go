// Package pricing maps job kinds to credit costs. The table is loaded from
// configuration; nothing here writes it.
package pricing

import (
	"github.com/appdever01/pilox-backend/internal/config"
)

// Kind identifies one metered operation.
type Kind string

const (
	KindPDFGeneration      Kind = "pdf_generation"
	KindPDFAnalysis        Kind = "pdf_analysis"
	KindVideoGeneration    Kind = "video_generation"
	KindQuiz               Kind = "quiz"
	KindFlashcard          Kind = "flashcard"
	KindTheoryQuestions    Kind = "theory_questions"
	KindTheoryVerification Kind = "theory_verification"
	KindYouTubeChat        Kind = "youtube_chat"
)

// Table holds flat and per-unit prices per job kind. A kind is either flat
// or per-unit, never both.
type Table struct {
	flat    map[Kind]float64
	perUnit map[Kind]float64
}

// NewTable builds the pricing table from configuration.
func NewTable(cfg *config.Config) *Table {
	return &Table{
		flat: map[Kind]float64{
			KindPDFGeneration:      cfg.PDFGenerationCredit,
			KindPDFAnalysis:        cfg.PDFAnalysisCredit,
			KindVideoGeneration:    cfg.PDFVideoCredit,
			KindTheoryQuestions:    cfg.TheoryQuestionCredit,
			KindTheoryVerification: cfg.TheoryVerificationCredit,
			KindYouTubeChat:        cfg.YouTubeChatCredit,
		},
		perUnit: map[Kind]float64{
			KindQuiz:      cfg.QuizCreditPerQuestion,
			KindFlashcard: cfg.FlashcardCreditPerQuestion,
		},
	}
}

// Cost returns the credit cost of one job. Quantity only matters for
// per-unit kinds; flat kinds ignore it.
func (t *Table) Cost(kind Kind, quantity int) float64 {
	if unit, ok := t.perUnit[kind]; ok {
		if quantity < 0 {
			quantity = 0
		}
		return unit * float64(quantity)
	}
	return t.flat[kind]
}
