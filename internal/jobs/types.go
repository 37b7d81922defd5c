package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Status represents the lifecycle state of a background job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRetrying   Status = "retrying"
)

// Job types handled by the worker.
const (
	TypeVideoGeneration   = "video_generation"
	TypeYoutubeTranscript = "youtube_transcript"
)

// Job is a persisted unit of background work. Payloads carry everything the
// handler needs to resume, including the credit reservation reference, so a
// restarted process can still settle charges.
type Job struct {
	ID      uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type    string         `gorm:"type:varchar(100);not null;index"`
	Payload datatypes.JSON `gorm:"type:jsonb"`

	Status Status `gorm:"type:varchar(20);not null;default:'pending';index"`

	Attempts   int `gorm:"not null;default:0"`
	MaxRetries int `gorm:"not null;default:3"`

	ScheduledAt *time.Time `gorm:"index"`
	StartedAt   *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time

	Error string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string {
	return "jobs"
}

// Handler processes jobs of one type.
type Handler interface {
	Handle(ctx context.Context, job *Job) error
	Type() string
}

// WorkerConfig tunes the polling worker.
type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	Timeout      time.Duration
}

// DefaultWorkerConfig returns the worker defaults. Video composition is
// slow, so the per-job timeout is generous.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Concurrency:  3,
		PollInterval: 1 * time.Second,
		Timeout:      30 * time.Minute,
	}
}
