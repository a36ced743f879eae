// Package digest hashes vault passwords so only a one-way digest is ever stored.
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Sum returns the hex-encoded SHA-256 digest of plaintext.
func Sum(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// Hasher turns a plaintext password into a stored digest and checks candidates
// against it.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(stored, plaintext string) bool
}

// SHA256 stores unsalted hex SHA-256 digests, the format written by earlier
// versions of the vault.
type SHA256 struct{}

// Hash implements Hasher.
func (SHA256) Hash(plaintext string) (string, error) {
	return Sum(plaintext), nil
}

// Verify implements Hasher.
func (SHA256) Verify(stored, plaintext string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(Sum(plaintext))) == 1
}

// Bcrypt stores salted bcrypt hashes. Legacy SHA-256 digests still verify.
type Bcrypt struct {
	Cost int
}

// Hash implements Hasher.
func (b Bcrypt) Hash(plaintext string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("digest: bcrypt: %w", err)
	}
	return string(h), nil
}

// Verify implements Hasher.
func (b Bcrypt) Verify(stored, plaintext string) bool {
	if !IsBcrypt(stored) {
		return SHA256{}.Verify(stored, plaintext)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
}

// IsBcrypt reports whether stored looks like a bcrypt hash.
func IsBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// ForName returns the hasher configured by name ("sha256" or "bcrypt").
func ForName(name string, cost int) (Hasher, error) {
	switch name {
	case "", "sha256":
		return SHA256{}, nil
	case "bcrypt":
		return Bcrypt{Cost: cost}, nil
	default:
		return nil, fmt.Errorf("digest: unknown hasher %q", name)
	}
}
