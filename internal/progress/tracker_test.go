package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phasePtr(p Phase) *Phase { return &p }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestTrackerInitAndGet(t *testing.T) {
	tracker := NewTracker(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tracker.Init(ctx, "job-1"))

	record, err := tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, PhaseUploading, record.Phase)
	assert.Equal(t, 0, record.Percentage)
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestTrackerGetUnknownID(t *testing.T) {
	tracker := NewTracker(NewMemoryStore())

	record, err := tracker.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestTrackerUpdateShallowMerge(t *testing.T) {
	tracker := NewTracker(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tracker.Init(ctx, "job-1"))
	require.NoError(t, tracker.Update(ctx, "job-1", Update{
		Phase:          phasePtr(PhaseProcessing),
		TotalSteps:     intPtr(10),
		CompletedSteps: intPtr(3),
	}))

	// Message untouched by the merge.
	record, err := tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseProcessing, record.Phase)
	assert.Equal(t, "Uploading PDF...", record.Message)
	assert.Equal(t, 30, record.Percentage)

	require.NoError(t, tracker.Update(ctx, "job-1", Update{
		CompletedSteps: intPtr(7),
		Message:        strPtr("Composing video..."),
	}))

	record, err = tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseProcessing, record.Phase)
	assert.Equal(t, "Composing video...", record.Message)
	assert.Equal(t, 70, record.Percentage)
}

func TestTrackerPercentageClamped(t *testing.T) {
	tracker := NewTracker(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tracker.Update(ctx, "job-1", Update{
		TotalSteps:     intPtr(4),
		CompletedSteps: intPtr(9),
	}))
	record, err := tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 100, record.Percentage)

	// Zero total never divides.
	require.NoError(t, tracker.Update(ctx, "job-2", Update{
		CompletedSteps: intPtr(5),
	}))
	record, err = tracker.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, 0, record.Percentage)
}

func TestTrackerClear(t *testing.T) {
	tracker := NewTracker(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tracker.Init(ctx, "job-1"))
	require.NoError(t, tracker.Clear(ctx, "job-1"))

	record, err := tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", &Record{UpdatedAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, store.Set(ctx, "fresh", &Record{UpdatedAt: time.Now()}))

	removed, err := store.Sweep(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	record, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, record)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "job-1", &Record{Message: "original"}))

	record, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	record.Message = "mutated"

	again, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Message)
}
