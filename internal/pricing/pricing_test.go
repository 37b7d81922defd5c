package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appdever01/pilox-backend/internal/config"
)

func testTable() *Table {
	return NewTable(&config.Config{
		PDFGenerationCredit:        2,
		PDFAnalysisCredit:          1,
		PDFVideoCredit:             3,
		QuizCreditPerQuestion:      0.01,
		FlashcardCreditPerQuestion: 0.01,
		TheoryQuestionCredit:       1,
		TheoryVerificationCredit:   0.1,
		YouTubeChatCredit:          3,
	})
}

func TestFlatKindsIgnoreQuantity(t *testing.T) {
	table := testTable()

	assert.Equal(t, 1.0, table.Cost(KindPDFAnalysis, 0))
	assert.Equal(t, 1.0, table.Cost(KindPDFAnalysis, 50))
	assert.Equal(t, 3.0, table.Cost(KindVideoGeneration, 0))
	assert.Equal(t, 2.0, table.Cost(KindPDFGeneration, 0))
	assert.Equal(t, 0.1, table.Cost(KindTheoryVerification, 0))
	assert.Equal(t, 3.0, table.Cost(KindYouTubeChat, 0))
}

func TestPerUnitKindsScaleWithQuantity(t *testing.T) {
	table := testTable()

	assert.InDelta(t, 0.2, table.Cost(KindQuiz, 20), 1e-9)
	assert.InDelta(t, 0.01, table.Cost(KindFlashcard, 1), 1e-9)
	assert.Equal(t, 0.0, table.Cost(KindQuiz, 0))
}

func TestPerUnitNegativeQuantityClampsToZero(t *testing.T) {
	table := testTable()
	assert.Equal(t, 0.0, table.Cost(KindQuiz, -5))
}

func TestUnknownKindCostsNothing(t *testing.T) {
	table := testTable()
	assert.Equal(t, 0.0, table.Cost(Kind("unknown"), 10))
}
