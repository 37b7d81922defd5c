// Package progress tracks job phase and percentage for client polling.
// Records are best-effort UX state; billing never reads them.
package progress

import (
	"context"
	"time"
)

// Phase names the stage a job is in.
type Phase string

const (
	PhaseUploading  Phase = "uploading"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseGenerating Phase = "generating_response"
	PhaseProcessing Phase = "processing"
	PhaseCompleted  Phase = "completed"
	PhaseError      Phase = "error"
)

// Record is one job's progress snapshot.
type Record struct {
	Phase          Phase     `json:"phase"`
	Percentage     int       `json:"percentage"`
	Message        string    `json:"message"`
	Error          string    `json:"error,omitempty"`
	CompletedSteps int       `json:"completed_steps"`
	TotalSteps     int       `json:"total_steps"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Update carries the fields to shallow-merge into a record. Nil pointers
// leave the existing value untouched.
type Update struct {
	Phase          *Phase
	Message        *string
	Error          *string
	CompletedSteps *int
	TotalSteps     *int
}

// Tracker is the progress API the orchestrators write to and handlers poll.
type Tracker struct {
	store Store
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Init creates a fresh record for the job id.
func (t *Tracker) Init(ctx context.Context, id string) error {
	return t.store.Set(ctx, id, &Record{
		Phase:     PhaseUploading,
		Message:   "Uploading PDF...",
		UpdatedAt: time.Now(),
	})
}

// Set replaces the record's counters and recomputes the percentage.
func (t *Tracker) Set(ctx context.Context, id string, record *Record) error {
	record.Percentage = percentage(record.CompletedSteps, record.TotalSteps)
	record.UpdatedAt = time.Now()
	return t.store.Set(ctx, id, record)
}

// Update shallow-merges fields into the existing record. A missing record
// starts from zero, matching callers that report before Init.
func (t *Tracker) Update(ctx context.Context, id string, update Update) error {
	record, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		record = &Record{}
	}

	if update.Phase != nil {
		record.Phase = *update.Phase
	}
	if update.Message != nil {
		record.Message = *update.Message
	}
	if update.Error != nil {
		record.Error = *update.Error
	}
	if update.CompletedSteps != nil {
		record.CompletedSteps = *update.CompletedSteps
	}
	if update.TotalSteps != nil {
		record.TotalSteps = *update.TotalSteps
	}

	record.Percentage = percentage(record.CompletedSteps, record.TotalSteps)
	record.UpdatedAt = time.Now()

	return t.store.Set(ctx, id, record)
}

// Get returns the record, or nil when the id is unknown.
func (t *Tracker) Get(ctx context.Context, id string) (*Record, error) {
	return t.store.Get(ctx, id)
}

// Clear removes the record.
func (t *Tracker) Clear(ctx context.Context, id string) error {
	return t.store.Delete(ctx, id)
}

// Sweep evicts records older than ttl.
func (t *Tracker) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	return t.store.Sweep(ctx, ttl)
}

// percentage derives completed/total clamped to [0,100].
func percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := completed * 100 / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
