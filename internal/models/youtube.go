package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transcript ingestion progress markers. Progress runs 0..100; -1 marks a
// failed fetch so clients stop polling.
const (
	TranscriptFailed   = -1
	TranscriptComplete = 100
)

// YoutubeTranscript caches one video's transcript with ingestion progress.
type YoutubeTranscript struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	VideoID    string         `gorm:"type:varchar(20);not null;uniqueIndex" json:"video_id"`
	Transcript datatypes.JSON `gorm:"type:jsonb" json:"transcript,omitempty"`
	Progress   int            `gorm:"not null;default:0" json:"progress"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (YoutubeTranscript) TableName() string {
	return "youtube_transcripts"
}

// BeforeCreate sets UUID before creating
func (t *YoutubeTranscript) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// YoutubeChatHistory is one user's Q&A session over a video. Limit caps the
// number of user questions; credits buy more via IncreaseChatLimit.
type YoutubeChatHistory struct {
	ID       uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	VideoID  string         `gorm:"type:varchar(20);not null;index" json:"video_id"`
	Title    string         `gorm:"type:varchar(255)" json:"title"`
	Messages datatypes.JSON `gorm:"type:jsonb" json:"messages,omitempty"`
	Limit    int            `gorm:"column:question_limit;not null;default:10" json:"limit"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (YoutubeChatHistory) TableName() string {
	return "youtube_chat_histories"
}

// BeforeCreate sets UUID before creating
func (c *YoutubeChatHistory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ChatMessage is one entry in a chat's JSONB message array.
type ChatMessage struct {
	Role    string `json:"role"` // 'user' or 'model'
	Content string `json:"content"`
}
