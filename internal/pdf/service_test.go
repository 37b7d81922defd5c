package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdever01/pilox-backend/internal/ai"
	"github.com/appdever01/pilox-backend/internal/config"
	"github.com/appdever01/pilox-backend/internal/ledger"
	"github.com/appdever01/pilox-backend/internal/metered"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/pricing"
)

type fakeLedger struct {
	reserveFn func(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error)

	reserved []float64
	settled  []models.TransactionStatus
}

func (f *fakeLedger) Reserve(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
	if f.reserveFn != nil {
		return f.reserveFn(ctx, userID, amount, description)
	}
	f.reserved = append(f.reserved, amount)
	return "ABC1234", nil
}

func (f *fakeLedger) Settle(ctx context.Context, reference string, outcome models.TransactionStatus) error {
	f.settled = append(f.settled, outcome)
	return nil
}

type fakeProvider struct {
	generateFn func(ctx context.Context, apiKey string, req ai.Request) (string, error)
}

func (f *fakeProvider) Generate(ctx context.Context, apiKey string, req ai.Request) (string, error) {
	return f.generateFn(ctx, apiKey, req)
}

func (f *fakeProvider) GetProviderName() string { return "fake" }

func testService(t *testing.T, l *fakeLedger, p *fakeProvider) *Service {
	t.Helper()

	ring, err := ai.NewKeyRing([]string{"key-1"})
	require.NoError(t, err)

	cfg := &config.Config{
		PDFGenerationCredit:        2,
		PDFAnalysisCredit:          1,
		PDFVideoCredit:             3,
		QuizCreditPerQuestion:      0.01,
		FlashcardCreditPerQuestion: 0.01,
		TheoryQuestionCredit:       1,
		TheoryVerificationCredit:   0.1,
		YouTubeChatCredit:          3,
	}

	return NewService(nil, ai.NewServiceWithProvider(p, ring), metered.NewRunner(l), pricing.NewTable(cfg), nil)
}

func TestGenerateSetChargesPerQuestion(t *testing.T) {
	l := &fakeLedger{}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			return `[{"question":"q","options":["a","b","c","d"],"answer":0,"explanation":"e"}]`, nil
		},
	}
	svc := testService(t, l, p)

	result, err := svc.generateSet(context.Background(), uuid.New(), pricing.KindQuiz, 20, "Quiz", "prompt")
	require.NoError(t, err)
	assert.True(t, result.Parsed)

	// 20 questions at 0.01 each
	require.Len(t, l.reserved, 1)
	assert.InDelta(t, 0.2, l.reserved[0], 1e-9)
	require.Len(t, l.settled, 1)
	assert.Equal(t, models.StatusCompleted, l.settled[0])
}

func TestGenerateSetReversesChargeOnModelFailure(t *testing.T) {
	l := &fakeLedger{}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	svc := testService(t, l, p)

	_, err := svc.generateSet(context.Background(), uuid.New(), pricing.KindQuiz, 10, "Quiz", "prompt")
	require.Error(t, err)

	require.Len(t, l.settled, 1)
	assert.Equal(t, models.StatusFailed, l.settled[0])
}

func TestGenerateSetRejectsInvalidCountBeforeCharging(t *testing.T) {
	l := &fakeLedger{}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			t.Fatal("model should not be called")
			return "", nil
		},
	}
	svc := testService(t, l, p)

	for _, n := range []int{0, -5, 101} {
		_, err := svc.generateSet(context.Background(), uuid.New(), pricing.KindQuiz, n, "Quiz", "prompt")
		require.ErrorIs(t, err, ErrInvalidQuestionCount)
	}
	assert.Empty(t, l.reserved)
}

func TestGenerateSetSurfacesInsufficientCredits(t *testing.T) {
	l := &fakeLedger{
		reserveFn: func(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
			return "", ledger.ErrInsufficientCredits
		},
	}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			t.Fatal("model should not be called without a reservation")
			return "", nil
		},
	}
	svc := testService(t, l, p)

	_, err := svc.generateSet(context.Background(), uuid.New(), pricing.KindQuiz, 5, "Quiz", "prompt")
	require.ErrorIs(t, err, metered.ErrInsufficientCredits)
	assert.Empty(t, l.settled)
}

func TestGenerateSetKeepsChargeForUnparsedResponse(t *testing.T) {
	l := &fakeLedger{}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			return "Sure! Here are your questions: 1) ...", nil
		},
	}
	svc := testService(t, l, p)

	// The model did respond; callers get the raw text and decide what to do.
	result, err := svc.generateSet(context.Background(), uuid.New(), pricing.KindQuiz, 5, "Quiz", "prompt")
	require.NoError(t, err)
	assert.False(t, result.Parsed)
	assert.NotEmpty(t, result.Raw)

	require.Len(t, l.settled, 1)
	assert.Equal(t, models.StatusCompleted, l.settled[0])
}

func TestVerifyAnswerRejectsEmptyAnswer(t *testing.T) {
	l := &fakeLedger{}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			return `{"score":7,"max_score":10,"feedback":"good"}`, nil
		},
	}
	svc := testService(t, l, p)

	_, err := svc.VerifyAnswer(context.Background(), uuid.New(), VerificationRequest{Question: "q", Answer: "  "})
	require.Error(t, err)
	assert.Empty(t, l.reserved)
}

func TestVerifyAnswerChargesFlatPrice(t *testing.T) {
	l := &fakeLedger{}
	p := &fakeProvider{
		generateFn: func(ctx context.Context, apiKey string, req ai.Request) (string, error) {
			return `{"score":7,"max_score":10,"feedback":"good"}`, nil
		},
	}
	svc := testService(t, l, p)

	result, err := svc.VerifyAnswer(context.Background(), uuid.New(), VerificationRequest{
		Question: "Define entropy", Guideline: "mentions disorder", Answer: "A measure of disorder",
	})
	require.NoError(t, err)
	assert.True(t, result.Parsed)

	require.Len(t, l.reserved, 1)
	assert.InDelta(t, 0.1, l.reserved[0], 1e-9)
}
