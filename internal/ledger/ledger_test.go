package ledger

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/appdever01/pilox-backend/internal/models"
)

// memStore is an in-memory Store. WithUserLock serializes on a single mutex,
// which is stricter than per-user row locks but preserves the property the
// ledger relies on: balance check and insert never interleave.
type memStore struct {
	lockMu sync.Mutex

	mu    sync.Mutex
	txns  []*models.CreditTransaction
	users map[uuid.UUID]float64
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]float64)}
}

func (s *memStore) addUser(credits float64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = credits
	return id
}

func (s *memStore) userCredits(userID uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}

func (s *memStore) Insert(_ context.Context, txn *models.CreditTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *txn
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.txns = append(s.txns, &cp)
	return nil
}

func (s *memStore) FindByReference(_ context.Context, reference string) (*models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.txns {
		if txn.Reference == reference {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, ErrReferenceNotFound
}

func (s *memStore) UpdateStatusByReference(_ context.Context, reference string, status models.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.txns {
		if txn.Reference == reference {
			txn.Status = status
			txn.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *memStore) SumByUserAndStatuses(_ context.Context, userID uuid.UUID, statuses []models.TransactionStatus) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, txn := range s.txns {
		if txn.UserID != userID {
			continue
		}
		for _, status := range statuses {
			if txn.Status == status {
				sum += txn.Signed()
				break
			}
		}
	}
	return sum, nil
}

func (s *memStore) ReferenceExists(_ context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.txns {
		if txn.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CreditTransaction
	for i := len(s.txns) - 1; i >= 0; i-- {
		if s.txns[i].UserID == userID {
			out = append(out, *s.txns[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) FindPendingDebitsOlderThan(_ context.Context, cutoff time.Time) ([]models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CreditTransaction
	for _, txn := range s.txns {
		if txn.Status == models.StatusPending && txn.Type == models.TypeDebit && txn.CreatedAt.Before(cutoff) {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (s *memStore) AdjustUserCredits(_ context.Context, userID uuid.UUID, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.users[userID] += delta
	return nil
}

func (s *memStore) WithUserLock(_ context.Context, userID uuid.UUID, fn func(Store) error) error {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	s.mu.Lock()
	_, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return gorm.ErrRecordNotFound
	}
	return fn(s)
}

var referencePattern = regexp.MustCompile(`^[0-9A-F]{7}$`)

func TestBalanceCountsCompletedAndPendingOnly(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &models.CreditTransaction{
		UserID: userID, Credits: 10, Type: models.TypeCredit, Status: models.StatusCompleted, Reference: "AAAAAA1",
	}))
	require.NoError(t, store.Insert(ctx, &models.CreditTransaction{
		UserID: userID, Credits: 3, Type: models.TypeDebit, Status: models.StatusPending, Reference: "AAAAAA2",
	}))
	require.NoError(t, store.Insert(ctx, &models.CreditTransaction{
		UserID: userID, Credits: 5, Type: models.TypeDebit, Status: models.StatusFailed, Reference: "AAAAAA3",
	}))

	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, balance)
}

func TestReserveCreatesPendingDebit(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 10, "top up")
	require.NoError(t, err)

	ref, err := l.Reserve(ctx, userID, 4, "PDF analysis")
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)

	txn, err := store.FindByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, models.TypeDebit, txn.Type)
	assert.Equal(t, models.StatusPending, txn.Status)
	assert.Equal(t, 4.0, txn.Credits)

	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, balance)
	assert.Equal(t, 6.0, store.userCredits(userID))
}

func TestReserveInsufficientCredits(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 5, "top up")
	require.NoError(t, err)

	_, err = l.Reserve(ctx, userID, 10, "video generation")
	require.ErrorIs(t, err, ErrInsufficientCredits)

	// The failed reserve leaves no trace.
	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, balance)
	assert.Equal(t, 5.0, store.userCredits(userID))

	history, err := l.History(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestReserveRejectsNegativeAmount(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(10)
	l := New(store)

	_, err := l.Reserve(context.Background(), userID, -1, "nope")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientCredits)
}

func TestSettleCompletedKeepsDebit(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 10, "top up")
	require.NoError(t, err)
	ref, err := l.Reserve(ctx, userID, 4, "quiz")
	require.NoError(t, err)

	require.NoError(t, l.Settle(ctx, ref, models.StatusCompleted))

	txn, err := store.FindByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, txn.Status)

	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, balance)
	assert.Equal(t, 6.0, store.userCredits(userID))
}

func TestSettleFailedRestoresBalance(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 10, "top up")
	require.NoError(t, err)
	ref, err := l.Reserve(ctx, userID, 4, "quiz")
	require.NoError(t, err)

	require.NoError(t, l.Settle(ctx, ref, models.StatusFailed))

	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, balance)
	assert.Equal(t, 10.0, store.userCredits(userID))
}

func TestSettleUnknownReferenceIsNoOp(t *testing.T) {
	l := New(newMemStore())
	require.NoError(t, l.Settle(context.Background(), "ZZZZZZZ", models.StatusCompleted))
}

func TestSettleTwiceIsNoOp(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 10, "top up")
	require.NoError(t, err)
	ref, err := l.Reserve(ctx, userID, 4, "quiz")
	require.NoError(t, err)

	require.NoError(t, l.Settle(ctx, ref, models.StatusFailed))
	// A second settle with the opposite outcome must not adjust anything.
	require.NoError(t, l.Settle(ctx, ref, models.StatusCompleted))

	txn, err := store.FindByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, txn.Status)
	assert.Equal(t, 10.0, store.userCredits(userID))
}

func TestSettleRejectsInvalidOutcome(t *testing.T) {
	l := New(newMemStore())
	err := l.Settle(context.Background(), "ABCDEF1", models.StatusPending)
	require.Error(t, err)
}

func TestCreditAppendsCompletedTransaction(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	ref, err := l.Credit(ctx, userID, 15, "Welcome bonus")
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)

	txn, err := store.FindByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, models.TypeCredit, txn.Type)
	assert.Equal(t, models.StatusCompleted, txn.Status)
	assert.Equal(t, "Welcome bonus", txn.Description)

	assert.Equal(t, 15.0, store.userCredits(userID))
}

func TestFailStaleReservations(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 10, "top up")
	require.NoError(t, err)

	staleRef, err := l.Reserve(ctx, userID, 3, "lost job")
	require.NoError(t, err)
	freshRef, err := l.Reserve(ctx, userID, 2, "live job")
	require.NoError(t, err)

	// Age the first reservation past the cutoff.
	store.mu.Lock()
	for _, txn := range store.txns {
		if txn.Reference == staleRef {
			txn.CreatedAt = time.Now().Add(-2 * time.Hour)
		}
	}
	store.mu.Unlock()

	failed, err := l.FailStaleReservations(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	stale, err := store.FindByReference(ctx, staleRef)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stale.Status)

	fresh, err := store.FindByReference(ctx, freshRef)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, fresh.Status)

	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, balance)
	assert.Equal(t, 8.0, store.userCredits(userID))
}

func TestConcurrentReservesCannotOverspend(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	_, err := l.Credit(ctx, userID, 5, "top up")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Reserve(ctx, userID, 5, "race")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientCredits)
		}
	}
	assert.Equal(t, 1, succeeded)

	balance, err := l.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	store := newMemStore()
	userID := store.addUser(0)
	l := New(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Credit(ctx, userID, float64(i+1), "top up")
		require.NoError(t, err)
	}

	history, err := l.History(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 3.0, history[0].Credits)
	assert.Equal(t, 2.0, history[1].Credits)
}
