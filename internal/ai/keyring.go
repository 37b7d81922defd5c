package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// ErrNoAPIKeys means the key pool is empty. That is a configuration error
// and must fail at startup, not loop at request time.
var ErrNoAPIKeys = errors.New("ai: api key pool is empty")

// ErrAllKeysExhausted means every credential in the pool was tried and
// failed. Callers can distinguish "everything is down" from a single
// transient glitch.
var ErrAllKeysExhausted = errors.New("ai: all api keys exhausted")

// KeyRing rotates a pool of provider credentials round-robin. The index is
// process-local; rotation order resetting on restart only affects load
// spreading, not correctness.
type KeyRing struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyRing creates a rotator over the given pool.
func NewKeyRing(keys []string) (*KeyRing, error) {
	if len(keys) == 0 {
		return nil, ErrNoAPIKeys
	}
	return &KeyRing{keys: keys}, nil
}

// Len returns the pool size.
func (r *KeyRing) Len() int {
	return len(r.keys)
}

// Next returns the next credential, wrapping modulo pool size.
func (r *KeyRing) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return key
}

// Attempt runs fn once per credential until one succeeds, advancing the
// rotation between attempts. Attempts are bounded by the pool size, never
// unbounded. When every credential fails the error wraps both
// ErrAllKeysExhausted and the last attempt's error.
func (r *KeyRing) Attempt(ctx context.Context, fn func(ctx context.Context, apiKey string) error) error {
	var lastErr error
	for attempt := 0; attempt < len(r.keys); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := r.Next()
		if err := fn(ctx, key); err != nil {
			lastErr = err
			utils.LogWarn("ai call attempt failed", map[string]interface{}{
				"attempt":      attempt + 1,
				"max_attempts": len(r.keys),
			})
			continue
		}
		return nil
	}

	return fmt.Errorf("%w (after %d attempts): %w", ErrAllKeysExhausted, len(r.keys), lastErr)
}
