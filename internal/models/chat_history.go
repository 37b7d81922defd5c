package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatHistory holds one PDF conversation: the analyzed document, its
// per-page explanations and, when generated, the narrated video artifact.
type ChatHistory struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PdfID  string    `gorm:"type:varchar(64);not null;index" json:"pdf_id"`
	PdfURL string    `gorm:"type:text" json:"pdf_url"`
	Title  string    `gorm:"type:varchar(255)" json:"title"`

	Messages     datatypes.JSON `gorm:"type:jsonb" json:"messages,omitempty"`
	Explanations datatypes.JSON `gorm:"type:jsonb" json:"explanations,omitempty"`

	VideoURL                 string `gorm:"type:text" json:"video_url,omitempty"`
	VideoGenerationCompleted bool   `gorm:"not null;default:false" json:"video_generation_completed"`
	VideoGenerationError     string `gorm:"type:text" json:"video_generation_error,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (ChatHistory) TableName() string {
	return "chat_histories"
}

// BeforeCreate sets UUID before creating
func (c *ChatHistory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
