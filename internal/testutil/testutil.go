// Package testutil provides shared test helpers for setting up storage backends.
package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/starford/linkvault/internal/storage"
)

// TestSQLite creates a temporary SQLite-backed provider that is automatically cleaned up.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "linkvault-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := storage.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary data directory with a file-backed provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// ErrInjected is returned by a FlakyProvider while failing.
var ErrInjected = errors.New("injected storage failure")

// FlakyProvider wraps an in-memory provider whose writes can be made to fail.
type FlakyProvider struct {
	*storage.Memory

	mu       sync.Mutex
	failSets bool
	sets     int
}

// NewFlaky returns a FlakyProvider that succeeds until FailWrites is called.
func NewFlaky() *FlakyProvider {
	return &FlakyProvider{Memory: storage.NewMemory()}
}

// FailWrites toggles write failures.
func (f *FlakyProvider) FailWrites(fail bool) {
	f.mu.Lock()
	f.failSets = fail
	f.mu.Unlock()
}

// Sets reports how many successful writes were made.
func (f *FlakyProvider) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

// Set implements storage.Provider.
func (f *FlakyProvider) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failSets
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	if err := f.Memory.Set(ctx, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	return nil
}

// Remove implements storage.Provider.
func (f *FlakyProvider) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failSets
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Memory.Remove(ctx, key)
}
