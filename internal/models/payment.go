package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment records one confirmed gateway charge. Reference is the gateway's
// transaction reference and doubles as the idempotency key for webhooks.
type Payment struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Reference    string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`
	Amount       float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency     string         `gorm:"type:varchar(3);not null" json:"currency"`
	Credits      float64        `gorm:"type:decimal(15,4);not null" json:"credits"`
	Method       string         `gorm:"type:varchar(20);not null" json:"method"`
	Status       string         `gorm:"type:varchar(10);not null;default:'completed'" json:"status"`
	Description  string         `gorm:"type:varchar(255)" json:"description"`
	Verification datatypes.JSON `gorm:"type:jsonb" json:"-"` // raw gateway verification response

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationship
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate sets UUID before creating
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
