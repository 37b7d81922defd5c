package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform account. Credits is a denormalized running
// counter kept alongside the transaction log; the log stays authoritative.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email    string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Password string    `gorm:"type:varchar(255)" json:"-"`
	AuthMode string    `gorm:"type:varchar(20);not null;default:'normal'" json:"auth_mode"` // 'normal', 'google', 'facebook'

	Credits float64 `gorm:"type:decimal(15,4);not null;default:0" json:"credits"`

	ReferralCode string     `gorm:"type:varchar(10);uniqueIndex" json:"referral_code"`
	ReferredBy   *uuid.UUID `gorm:"type:uuid" json:"referred_by,omitempty"`

	WalletAddress string `gorm:"type:varchar(128)" json:"wallet_address,omitempty"`
	CurrencyCode  string `gorm:"type:varchar(3);not null;default:'USD'" json:"currency_code"`

	Role       string `gorm:"type:varchar(10);not null;default:'user'" json:"role"`     // 'admin' or 'user'
	Status     string `gorm:"type:varchar(10);not null;default:'active'" json:"status"` // 'active' or 'inactive'
	IsVerified bool   `gorm:"not null;default:false" json:"is_verified"`

	VerificationToken        string     `gorm:"type:varchar(64)" json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID before creating
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
