package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// newReference generates a short uppercase hex reference that is unique
// across the transaction log. References are the correlation keys background
// jobs settle with, so they must stay stable across restarts.
func newReference(ctx context.Context, store Store) (string, error) {
	for {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate reference: %w", err)
		}
		ref := strings.ToUpper(hex.EncodeToString(buf))[:7]

		exists, err := store.ReferenceExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if !exists {
			return ref, nil
		}
	}
}
