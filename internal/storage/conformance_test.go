package storage

import (
	"context"
	"testing"
)

// runConformance exercises the Provider contract shared by every backend.
func runConformance(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := p.Get(ctx, "vlt_data"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := p.Set(ctx, "vlt_data", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := p.Get(ctx, "vlt_data")
	if err != nil || !ok || string(got) != "one" {
		t.Fatalf("Get = %q ok=%v err=%v", got, ok, err)
	}

	if err := p.Set(ctx, "vlt_data", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = p.Get(ctx, "vlt_data")
	if string(got) != "two" {
		t.Errorf("after overwrite = %q", got)
	}

	if err := p.Set(ctx, "vlt_pw", []byte("digest")); err != nil {
		t.Fatalf("Set second key: %v", err)
	}
	if err := p.Remove(ctx, "vlt_pw"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "vlt_pw"); ok {
		t.Error("key still present after Remove")
	}
	if err := p.Remove(ctx, "vlt_pw"); err != nil {
		t.Errorf("Remove of absent key: %v", err)
	}
	if got, ok, _ := p.Get(ctx, "vlt_data"); !ok || string(got) != "two" {
		t.Errorf("unrelated key disturbed: %q ok=%v", got, ok)
	}

	if err := p.Set(ctx, "bad/key", []byte("x")); err == nil {
		t.Error("expected invalid key error")
	}
}

func TestMemoryConformance(t *testing.T) {
	runConformance(t, NewMemory())
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf)
	buf[0] = 'z'
	got, _, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "etcd"}, nil); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	p, err := Open(Options{Driver: DriverMemory}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*Memory); !ok {
		t.Errorf("Open returned %T", p)
	}
}
