// Package cache stores extraction results keyed by a hash of their input text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultTTL is how long cached extractions stay valid
const DefaultTTL = 24 * time.Hour

// Store is a JSON value cache
type Store interface {
	// GetJSON decodes the value at key into out and reports whether it was found
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	// SetJSON stores value at key; ttl <= 0 uses DefaultTTL
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Key returns namespace:sha256(text) in hex.
func Key(namespace, text string) string {
	sum := sha256.Sum256([]byte(text))
	return namespace + ":" + hex.EncodeToString(sum[:])
}
