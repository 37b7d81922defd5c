package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyRingRejectsEmptyPool(t *testing.T) {
	_, err := NewKeyRing(nil)
	require.ErrorIs(t, err, ErrNoAPIKeys)
}

func TestNextRotatesRoundRobin(t *testing.T) {
	ring, err := NewKeyRing([]string{"k1", "k2", "k3"})
	require.NoError(t, err)

	assert.Equal(t, "k1", ring.Next())
	assert.Equal(t, "k2", ring.Next())
	assert.Equal(t, "k3", ring.Next())
	assert.Equal(t, "k1", ring.Next())
}

func TestAttemptStopsAtFirstSuccess(t *testing.T) {
	ring, err := NewKeyRing([]string{"k1", "k2", "k3"})
	require.NoError(t, err)

	var tried []string
	err = ring.Attempt(context.Background(), func(_ context.Context, apiKey string) error {
		tried = append(tried, apiKey)
		if apiKey == "k2" {
			return nil
		}
		return errors.New("quota exceeded")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, tried)
}

func TestAttemptTriesEveryKeyOnceThenGivesUp(t *testing.T) {
	ring, err := NewKeyRing([]string{"k1", "k2", "k3"})
	require.NoError(t, err)

	lastErr := errors.New("quota exceeded")
	calls := 0
	err = ring.Attempt(context.Background(), func(_ context.Context, _ string) error {
		calls++
		return lastErr
	})
	require.ErrorIs(t, err, ErrAllKeysExhausted)
	require.ErrorIs(t, err, lastErr)
	assert.Equal(t, ring.Len(), calls)
}

func TestAttemptHonorsContextCancellation(t *testing.T) {
	ring, err := NewKeyRing([]string{"k1", "k2"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err = ring.Attempt(ctx, func(_ context.Context, _ string) error {
		calls++
		cancel()
		return errors.New("timeout")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
