package metered

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdever01/pilox-backend/internal/ledger"
	"github.com/appdever01/pilox-backend/internal/models"
)

type fakeLedger struct {
	reserveFn func(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error)

	reserved []float64
	settled  map[string]models.TransactionStatus
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{settled: make(map[string]models.TransactionStatus)}
}

func (f *fakeLedger) Reserve(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
	if f.reserveFn != nil {
		return f.reserveFn(ctx, userID, amount, description)
	}
	f.reserved = append(f.reserved, amount)
	return "ABC1234", nil
}

func (f *fakeLedger) Settle(_ context.Context, reference string, outcome models.TransactionStatus) error {
	f.settled[reference] = outcome
	return nil
}

func TestRunSettlesCompletedOnSuccess(t *testing.T) {
	fl := newFakeLedger()
	runner := NewRunner(fl)

	ran := false
	err := runner.Run(context.Background(), uuid.New(), 2, "PDF analysis", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []float64{2}, fl.reserved)
	assert.Equal(t, models.StatusCompleted, fl.settled["ABC1234"])
}

func TestRunSettlesFailedOnWorkError(t *testing.T) {
	fl := newFakeLedger()
	runner := NewRunner(fl)

	workErr := errors.New("model unreachable")
	err := runner.Run(context.Background(), uuid.New(), 2, "PDF analysis", func(ctx context.Context) error {
		return workErr
	})
	require.ErrorIs(t, err, workErr)
	assert.Equal(t, models.StatusFailed, fl.settled["ABC1234"])
}

func TestRunInsufficientCreditsHasNoSideEffects(t *testing.T) {
	fl := newFakeLedger()
	fl.reserveFn = func(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
		return "", ledger.ErrInsufficientCredits
	}
	runner := NewRunner(fl)

	ran := false
	err := runner.Run(context.Background(), uuid.New(), 5, "video generation", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, ErrInsufficientCredits)
	assert.False(t, ran)
	assert.Empty(t, fl.settled)
}

func TestBeginReturnsReservationHandle(t *testing.T) {
	fl := newFakeLedger()
	runner := NewRunner(fl)
	userID := uuid.New()

	res, err := runner.Begin(context.Background(), userID, 3, "video generation")
	require.NoError(t, err)
	assert.Equal(t, "ABC1234", res.Reference)
	assert.Equal(t, userID, res.UserID)
	assert.Equal(t, 3.0, res.Amount)
	assert.Empty(t, fl.settled)

	require.NoError(t, res.Complete(context.Background()))
	assert.Equal(t, models.StatusCompleted, fl.settled["ABC1234"])
}

func TestResumeSettlesByReference(t *testing.T) {
	fl := newFakeLedger()
	runner := NewRunner(fl)

	res := runner.Resume("FEED001")
	require.NoError(t, res.Fail(context.Background()))
	assert.Equal(t, models.StatusFailed, fl.settled["FEED001"])
}

func TestBeginWrapsUnexpectedReserveError(t *testing.T) {
	fl := newFakeLedger()
	boom := errors.New("connection reset")
	fl.reserveFn = func(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
		return "", boom
	}
	runner := NewRunner(fl)

	_, err := runner.Begin(context.Background(), uuid.New(), 1, "quiz")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInsufficientCredits)
}
