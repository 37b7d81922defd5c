package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType is the direction of a ledger movement. Credits magnitude is
// always non-negative; the sign comes from the type.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// TransactionStatus is the settlement state of a ledger movement.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// CreditTransaction is one immutable row in the append-only credit ledger.
// Reference is the only handle that survives process restarts and is how
// background jobs settle their reservations.
type CreditTransaction struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_credit_transactions_user" json:"user_id"`
	Credits     float64           `gorm:"type:decimal(15,4);not null;default:0" json:"credits"`
	Type        TransactionType   `gorm:"type:varchar(10);not null" json:"type"`
	Status      TransactionStatus `gorm:"type:varchar(10);not null;default:'pending';index:idx_credit_transactions_status" json:"status"`
	Description string            `gorm:"type:varchar(255);not null" json:"description"`
	Reference   string            `gorm:"type:varchar(16);not null;uniqueIndex" json:"reference"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// BeforeCreate sets UUID before creating
func (t *CreditTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Signed returns the balance contribution of this transaction.
func (t *CreditTransaction) Signed() float64 {
	if t.Type == TypeDebit {
		return -t.Credits
	}
	return t.Credits
}
