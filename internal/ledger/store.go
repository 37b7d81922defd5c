package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/appdever01/pilox-backend/internal/models"
)

// ErrReferenceNotFound is returned when no transaction carries the given
// reference.
var ErrReferenceNotFound = errors.New("ledger: reference not found")

// Store is the persistence contract the ledger needs. Any backend works as
// long as it supports insert, lookup by reference, status update by
// reference and sum by user and status set.
type Store interface {
	Insert(ctx context.Context, txn *models.CreditTransaction) error
	FindByReference(ctx context.Context, reference string) (*models.CreditTransaction, error)
	UpdateStatusByReference(ctx context.Context, reference string, status models.TransactionStatus) error
	SumByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []models.TransactionStatus) (float64, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error)
	FindPendingDebitsOlderThan(ctx context.Context, cutoff time.Time) ([]models.CreditTransaction, error)
	AdjustUserCredits(ctx context.Context, userID uuid.UUID, delta float64) error

	// WithUserLock runs fn while holding an exclusive lock on the user row.
	// This is the mandatory serialization point for reserve: the balance
	// check and the pending insert must not interleave between two
	// concurrent reservations for the same user.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates the Postgres-backed ledger store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Insert(ctx context.Context, txn *models.CreditTransaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *gormStore) FindByReference(ctx context.Context, reference string) (*models.CreditTransaction, error) {
	var txn models.CreditTransaction
	err := s.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (s *gormStore) UpdateStatusByReference(ctx context.Context, reference string, status models.TransactionStatus) error {
	return s.db.WithContext(ctx).Model(&models.CreditTransaction{}).
		Where("reference = ?", reference).
		Update("status", status).Error
}

func (s *gormStore) SumByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []models.TransactionStatus) (float64, error) {
	var balance float64
	err := s.db.WithContext(ctx).Model(&models.CreditTransaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN credits ELSE -credits END), 0)", models.TypeCredit).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Scan(&balance).Error
	return balance, err
}

func (s *gormStore) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CreditTransaction{}).
		Where("reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txns []models.CreditTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *gormStore) FindPendingDebitsOlderThan(ctx context.Context, cutoff time.Time) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND type = ? AND created_at < ?", models.StatusPending, models.TypeDebit, cutoff).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *gormStore) AdjustUserCredits(ctx context.Context, userID uuid.UUID, delta float64) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		return fn(&gormStore{db: tx})
	})
}
