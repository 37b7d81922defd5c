package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// ErrInsufficientCredits is the expected negative outcome of Reserve. It is
// a business result, not a failure: callers branch on it and must not log it
// as an error.
var ErrInsufficientCredits = errors.New("ledger: insufficient credits")

// balanceStatuses are the statuses that count toward a user's balance.
// Pending debits are held against the balance immediately so concurrent
// operations cannot spend the same credits twice; failed transactions drop
// out, which is what reverses a failed reservation.
var balanceStatuses = []models.TransactionStatus{models.StatusCompleted, models.StatusPending}

// Ledger owns reservation, settlement and top-up semantics over the
// append-only credit transaction log.
type Ledger struct {
	store Store
}

// New creates a ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Balance sums completed and pending transactions for the user. The log is
// the source of truth; this is a read-time projection with no clamping.
func (l *Ledger) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	return l.store.SumByUserAndStatuses(ctx, userID, balanceStatuses)
}

// Reserve provisionally debits amount from the user and returns the
// reservation reference. The balance check and the pending insert run under
// the per-user lock so two concurrent reservations cannot both pass against
// a balance that covers only one.
func (l *Ledger) Reserve(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("ledger: reserve amount must be non-negative, got %v", amount)
	}

	var reference string
	err := l.store.WithUserLock(ctx, userID, func(s Store) error {
		balance, err := s.SumByUserAndStatuses(ctx, userID, balanceStatuses)
		if err != nil {
			return fmt.Errorf("failed to compute balance: %w", err)
		}
		if balance < amount {
			return ErrInsufficientCredits
		}

		reference, err = newReference(ctx, s)
		if err != nil {
			return err
		}

		txn := &models.CreditTransaction{
			UserID:      userID,
			Credits:     amount,
			Type:        models.TypeDebit,
			Status:      models.StatusPending,
			Description: description,
			Reference:   reference,
		}
		if err := s.Insert(ctx, txn); err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		return s.AdjustUserCredits(ctx, userID, -amount)
	})
	if err != nil {
		return "", err
	}

	return reference, nil
}

// Settle moves a reservation to completed or failed. Settling an unknown or
// already-settled reference is a loud no-op: the ledger never double-adjusts
// a balance, and the request path must never crash over a settlement
// anomaly.
func (l *Ledger) Settle(ctx context.Context, reference string, outcome models.TransactionStatus) error {
	if outcome != models.StatusCompleted && outcome != models.StatusFailed {
		return fmt.Errorf("ledger: invalid settlement outcome %q", outcome)
	}

	txn, err := l.store.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			utils.LogWarn("settlement anomaly: unknown reference", map[string]interface{}{
				"reference": reference,
				"outcome":   outcome,
			})
			return nil
		}
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	return l.store.WithUserLock(ctx, txn.UserID, func(s Store) error {
		// Re-read under the lock; another settlement may have won the race.
		current, err := s.FindByReference(ctx, reference)
		if err != nil {
			return fmt.Errorf("failed to re-load transaction: %w", err)
		}
		if current.Status != models.StatusPending {
			utils.LogWarn("settlement anomaly: transaction already settled", map[string]interface{}{
				"reference": reference,
				"status":    current.Status,
				"outcome":   outcome,
			})
			return nil
		}

		if err := s.UpdateStatusByReference(ctx, reference, outcome); err != nil {
			return fmt.Errorf("failed to update transaction status: %w", err)
		}

		if outcome == models.StatusFailed {
			// Economically reverse the reservation on the denormalized
			// counter; the log-side reversal happens by the failed row
			// dropping out of the balance sum.
			return s.AdjustUserCredits(ctx, current.UserID, current.Signed()*-1)
		}
		return nil
	})
}

// Credit appends a completed credit transaction: welcome bonuses, referral
// bonuses and verified payment top-ups. No reservation step, the funds are
// already confirmed externally.
func (l *Ledger) Credit(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("ledger: credit amount must be non-negative, got %v", amount)
	}

	var reference string
	err := l.store.WithUserLock(ctx, userID, func(s Store) error {
		var err error
		reference, err = newReference(ctx, s)
		if err != nil {
			return err
		}

		txn := &models.CreditTransaction{
			UserID:      userID,
			Credits:     amount,
			Type:        models.TypeCredit,
			Status:      models.StatusCompleted,
			Description: description,
			Reference:   reference,
		}
		if err := s.Insert(ctx, txn); err != nil {
			return fmt.Errorf("failed to insert credit: %w", err)
		}

		return s.AdjustUserCredits(ctx, userID, amount)
	})
	if err != nil {
		return "", err
	}

	return reference, nil
}

// History lists the user's transactions, newest first.
func (l *Ledger) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	return l.store.ListByUser(ctx, userID, limit)
}

// FailStaleReservations force-fails pending debits older than the given age.
// A reservation whose job lost its reference would otherwise hold the user's
// credits forever; the sweep makes the effective balance self-heal.
func (l *Ledger) FailStaleReservations(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stale, err := l.store.FindPendingDebitsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale reservations: %w", err)
	}

	failed := 0
	for _, txn := range stale {
		if err := l.Settle(ctx, txn.Reference, models.StatusFailed); err != nil {
			utils.LogError("failed to settle stale reservation", err, map[string]interface{}{
				"reference": txn.Reference,
				"user_id":   txn.UserID,
			})
			continue
		}
		utils.LogWarn("force-failed stale reservation", map[string]interface{}{
			"reference": txn.Reference,
			"user_id":   txn.UserID,
			"credits":   txn.Credits,
			"age":       time.Since(txn.CreatedAt).String(),
		})
		failed++
	}

	return failed, nil
}
