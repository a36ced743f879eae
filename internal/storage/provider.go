// Package storage defines the key-value persistence port and its backends.
package storage

import (
	"context"
	"fmt"
	"regexp"
)

// Provider is the synchronous key-value surface the vault persists into.
type Provider interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set durably replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

var keyRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateKey rejects keys that are empty or could escape a backend namespace.
func ValidateKey(key string) error {
	if !keyRe.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
