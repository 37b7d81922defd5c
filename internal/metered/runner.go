// Package metered wraps long-running operations in the
// reserve → execute → settle protocol against the credit ledger. Every
// credit-gated endpoint goes through here instead of talking to the ledger
// directly.
package metered

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/appdever01/pilox-backend/internal/ledger"
	"github.com/appdever01/pilox-backend/internal/models"
	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// CreditLedger is the slice of the ledger the runner needs.
type CreditLedger interface {
	Reserve(ctx context.Context, userID uuid.UUID, amount float64, description string) (string, error)
	Settle(ctx context.Context, reference string, outcome models.TransactionStatus) error
}

// ErrInsufficientCredits mirrors the ledger sentinel so handler code only
// imports this package.
var ErrInsufficientCredits = ledger.ErrInsufficientCredits

// Runner executes metered work under a credit reservation.
type Runner struct {
	ledger CreditLedger
}

// NewRunner creates a runner over the given ledger.
func NewRunner(l CreditLedger) *Runner {
	return &Runner{ledger: l}
}

// Run reserves cost, executes work and settles the reservation with the
// work's outcome. Insufficient balance returns ErrInsufficientCredits with
// no side effects. A work failure settles failed and is returned unchanged.
func (r *Runner) Run(ctx context.Context, userID uuid.UUID, cost float64, label string, work func(ctx context.Context) error) error {
	res, err := r.Begin(ctx, userID, cost, label)
	if err != nil {
		return err
	}

	if err := work(ctx); err != nil {
		if settleErr := res.Fail(ctx); settleErr != nil {
			utils.LogError("failed to settle reservation after work failure", settleErr, map[string]interface{}{
				"reference": res.Reference,
			})
		}
		return err
	}

	return res.Complete(ctx)
}

// Begin reserves cost and hands back the reservation for jobs that settle
// later, after the caller-visible response has already gone out. The
// Reference is the only part that must survive async hops: persist it with
// the job, never only in memory.
func (r *Runner) Begin(ctx context.Context, userID uuid.UUID, cost float64, label string) (*Reservation, error) {
	reference, err := r.ledger.Reserve(ctx, userID, cost, label)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return nil, ErrInsufficientCredits
		}
		return nil, fmt.Errorf("reservation failed: %w", err)
	}

	return &Reservation{
		Reference: reference,
		UserID:    userID,
		Amount:    cost,
		Label:     label,
		ledger:    r.ledger,
	}, nil
}

// Resume rebuilds a reservation handle from a persisted reference, for
// settlement from a background worker.
func (r *Runner) Resume(reference string) *Reservation {
	return &Reservation{Reference: reference, ledger: r.ledger}
}

// Reservation is a live credit hold. Amount is fixed at reservation time; if
// the work turns out cheaper or dearer that is a pricing decision, not
// something settled here.
type Reservation struct {
	Reference string
	UserID    uuid.UUID
	Amount    float64
	Label     string

	ledger CreditLedger
}

// Complete settles the reservation as consumed.
func (res *Reservation) Complete(ctx context.Context) error {
	return res.ledger.Settle(ctx, res.Reference, models.StatusCompleted)
}

// Fail settles the reservation as reversed; the held credits return to the
// user's balance.
func (res *Reservation) Fail(ctx context.Context) error {
	return res.ledger.Settle(ctx, res.Reference, models.StatusFailed)
}
