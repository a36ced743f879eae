package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestFSConformance(t *testing.T) {
	runConformance(t, tempVault(t))
}

func TestFSWritesOneFilePerKey(t *testing.T) {
	s := tempVault(t)
	if err := s.Set(context.Background(), "vlt_data", []byte(`{"groups":[]}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(s.Root(), "vlt_data"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != `{"groups":[]}` {
		t.Errorf("file content = %q", got)
	}
}

func TestFSNoTempLeftovers(t *testing.T) {
	s := tempVault(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, "vlt_data", []byte("x")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestFSRejectsTraversal(t *testing.T) {
	s := tempVault(t)
	ctx := context.Background()
	for _, key := range []string{"../escape", "a/b", "..", ""} {
		if err := s.Set(ctx, key, []byte("x")); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
	}
}

func TestNewFSRejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(f); err == nil {
		t.Error("expected error for non-directory root")
	}
}
