package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/digest"
	"github.com/starford/linkvault/internal/storage"
	"github.com/starford/linkvault/internal/testutil"
)

type recordingSurface struct {
	shown    []Ticket
	hidden   int
	rejected int
}

func (s *recordingSurface) ShowPasswordPrompt(t Ticket) { s.shown = append(s.shown, t) }
func (s *recordingSurface) HidePasswordPrompt()         { s.hidden++ }
func (s *recordingSurface) PasswordRejected()           { s.rejected++ }

func newGate(t *testing.T, p storage.Provider, opts ...Option) (*Gate, *recordingSurface) {
	t.Helper()
	surface := &recordingSurface{}
	g := New(p, append([]Option{WithSurface(surface)}, opts...)...)
	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g, surface
}

// counter returns an action that counts its invocations.
func counter() (Action, *int) {
	n := 0
	return func(context.Context) error {
		n++
		return nil
	}, &n
}

func TestNoPasswordRunsImmediately(t *testing.T) {
	g, surface := newGate(t, storage.NewMemory())
	if g.State() != NoPassword {
		t.Fatalf("state = %s", g.State())
	}
	action, n := counter()
	ticket, err := g.RequireAuth(context.Background(), action)
	if err != nil || ticket.Deferred || *n != 1 {
		t.Errorf("ticket=%+v err=%v runs=%d", ticket, err, *n)
	}
	if len(surface.shown) != 0 {
		t.Error("prompt shown without a password")
	}
}

func TestSetPasswordThenFreshSessionPrompts(t *testing.T) {
	p := storage.NewMemory()
	ctx := context.Background()
	g, _ := newGate(t, p)

	if err := g.SetPassword(ctx, "", "abcd", "abcd"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if g.State() != Unlocked {
		t.Errorf("state = %s, want unlocked", g.State())
	}
	stored, ok, _ := p.Get(ctx, DefaultKey)
	if !ok || string(stored) != digest.Sum("abcd") {
		t.Errorf("stored digest = %q", stored)
	}

	fresh, surface := newGate(t, p)
	if fresh.State() != Locked {
		t.Fatalf("fresh state = %s, want locked", fresh.State())
	}
	action, n := counter()
	ticket, err := fresh.RequireAuth(ctx, action)
	if err != nil || !ticket.Deferred || ticket.ID == "" {
		t.Fatalf("ticket=%+v err=%v", ticket, err)
	}
	if *n != 0 {
		t.Error("action ran while locked")
	}
	if len(surface.shown) != 1 || surface.shown[0] != ticket {
		t.Errorf("prompts = %+v", surface.shown)
	}
}

func lockedGate(t *testing.T) (*Gate, *recordingSurface) {
	t.Helper()
	p := storage.NewMemory()
	_ = p.Set(context.Background(), DefaultKey, []byte(digest.Sum("secret")))
	return newGate(t, p)
}

func TestSubmitPasswordRunsPendingOnce(t *testing.T) {
	g, surface := lockedGate(t)
	ctx := context.Background()
	action, n := counter()
	_, _ = g.RequireAuth(ctx, action)

	ticket, err := g.SubmitPassword(ctx, "secret")
	if err != nil || ticket.ID == "" {
		t.Fatalf("ticket=%+v err=%v", ticket, err)
	}
	if *n != 1 || g.State() != Unlocked || surface.hidden != 1 {
		t.Errorf("runs=%d state=%s hidden=%d", *n, g.State(), surface.hidden)
	}
	if _, ok := g.Pending(); ok {
		t.Error("pending action not cleared")
	}

	for i := 0; i < 2; i++ {
		ticket, err = g.SubmitPassword(ctx, "secret")
		if err != nil || ticket.ID != "" {
			t.Errorf("submit without pending: ticket=%+v err=%v", ticket, err)
		}
	}
	if *n != 1 {
		t.Errorf("action ran %d times", *n)
	}
}

func TestSubmitWrongPassword(t *testing.T) {
	g, surface := lockedGate(t)
	ctx := context.Background()
	action, n := counter()
	_, _ = g.RequireAuth(ctx, action)

	_, err := g.SubmitPassword(ctx, "guess")
	if !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("err = %v", err)
	}
	if *n != 0 || g.State() != Locked || surface.rejected != 1 {
		t.Errorf("runs=%d state=%s rejected=%d", *n, g.State(), surface.rejected)
	}
	if _, ok := g.Pending(); !ok {
		t.Error("pending action lost after wrong password")
	}
	if _, err := g.SubmitPassword(ctx, "secret"); err != nil || *n != 1 {
		t.Errorf("retry: err=%v runs=%d", err, *n)
	}
}

func TestLastRequestWins(t *testing.T) {
	g, _ := lockedGate(t)
	ctx := context.Background()
	first, n1 := counter()
	second, n2 := counter()
	t1, _ := g.RequireAuth(ctx, first)
	t2, _ := g.RequireAuth(ctx, second)
	if t1.ID == t2.ID {
		t.Error("tickets should differ")
	}
	if pending, _ := g.Pending(); pending.ID != t2.ID {
		t.Errorf("pending = %s, want %s", pending.ID, t2.ID)
	}
	ran, _ := g.SubmitPassword(ctx, "secret")
	if ran.ID != t2.ID {
		t.Errorf("resumed ticket = %s, want %s", ran.ID, t2.ID)
	}
	if *n1 != 0 || *n2 != 1 {
		t.Errorf("first=%d second=%d", *n1, *n2)
	}
}

func TestUnlockedRunsImmediately(t *testing.T) {
	g, _ := lockedGate(t)
	ctx := context.Background()
	noop, _ := counter()
	_, _ = g.RequireAuth(ctx, noop)
	_, _ = g.SubmitPassword(ctx, "secret")

	action, n := counter()
	ticket, _ := g.RequireAuth(ctx, action)
	if ticket.Deferred || *n != 1 {
		t.Errorf("ticket=%+v runs=%d", ticket, *n)
	}

	g.Lock()
	ticket, _ = g.RequireAuth(ctx, action)
	if !ticket.Deferred || *n != 1 {
		t.Errorf("after Lock: ticket=%+v runs=%d", ticket, *n)
	}
}

func TestCancelAuthDropsAction(t *testing.T) {
	g, surface := lockedGate(t)
	ctx := context.Background()
	action, n := counter()
	_, _ = g.RequireAuth(ctx, action)

	if !g.CancelAuth() {
		t.Error("CancelAuth reported nothing dropped")
	}
	if surface.hidden != 1 {
		t.Errorf("hidden = %d", surface.hidden)
	}
	if ran, _ := g.SubmitPassword(ctx, "secret"); ran.ID != "" || *n != 0 {
		t.Errorf("dropped action ran: ticket=%+v runs=%d", ran, *n)
	}
}

func TestActionErrorPropagates(t *testing.T) {
	g, _ := lockedGate(t)
	ctx := context.Background()
	boom := errors.New("boom")
	_, _ = g.RequireAuth(ctx, func(context.Context) error { return boom })
	ran, err := g.SubmitPassword(ctx, "secret")
	if ran.ID == "" || !errors.Is(err, boom) {
		t.Errorf("ticket=%+v err=%v", ran, err)
	}
}

func TestSetPasswordValidationOrder(t *testing.T) {
	g, _ := lockedGate(t)
	ctx := context.Background()

	if err := g.SetPassword(ctx, "wrong", "ab", "cd"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Errorf("wrong old: %v", err)
	}
	err := g.SetPassword(ctx, "secret", "abc", "xyz")
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "validation failed: too short" {
		t.Errorf("short: %v", err)
	}
	err = g.SetPassword(ctx, "secret", "abcd", "abce")
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "validation failed: mismatch" {
		t.Errorf("mismatch: %v", err)
	}
	if g.State() != Locked {
		t.Errorf("failed set changed state to %s", g.State())
	}
	if err := g.SetPassword(ctx, "secret", "ñandú", "ñandú"); err != nil {
		t.Errorf("set: %v", err)
	}
}

func TestSetPasswordCountsRunes(t *testing.T) {
	g, _ := newGate(t, storage.NewMemory())
	// Three runes, more than four bytes.
	if err := g.SetPassword(context.Background(), "", "äöü", "äöü"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestSetPasswordStorageFailure(t *testing.T) {
	p := testutil.NewFlaky()
	g, _ := newGate(t, p)
	p.FailWrites(true)
	if err := g.SetPassword(context.Background(), "", "abcd", "abcd"); !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("err = %v", err)
	}
	if g.State() != NoPassword {
		t.Errorf("state = %s after failed persist", g.State())
	}
}

func TestRemovePassword(t *testing.T) {
	p := storage.NewMemory()
	ctx := context.Background()
	_ = p.Set(ctx, DefaultKey, []byte(digest.Sum("secret")))
	g, _ := newGate(t, p)

	if err := g.RemovePassword(ctx, "nope"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Errorf("wrong old: %v", err)
	}
	if err := g.RemovePassword(ctx, "secret"); err != nil {
		t.Fatal(err)
	}
	if g.State() != NoPassword {
		t.Errorf("state = %s", g.State())
	}
	if _, ok, _ := p.Get(ctx, DefaultKey); ok {
		t.Error("digest still stored")
	}
	action, n := counter()
	_, _ = g.RequireAuth(ctx, action)
	if *n != 1 {
		t.Error("gate should be a no-op without a password")
	}
}

func TestBcryptHasherAcceptsLegacyDigest(t *testing.T) {
	p := storage.NewMemory()
	ctx := context.Background()
	_ = p.Set(ctx, DefaultKey, []byte(digest.Sum("secret")))
	g, _ := newGate(t, p, WithHasher(digest.Bcrypt{Cost: 4}))

	if err := g.SetPassword(ctx, "secret", "better", "better"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	stored, _, _ := p.Get(ctx, DefaultKey)
	if !digest.IsBcrypt(string(stored)) {
		t.Errorf("stored = %q, want bcrypt hash", stored)
	}
}

func TestReloadLocksOnExternalChange(t *testing.T) {
	p := storage.NewMemory()
	ctx := context.Background()
	g, _ := newGate(t, p)
	_ = g.SetPassword(ctx, "", "abcd", "abcd")

	changed, err := g.Reload(ctx)
	if err != nil || changed {
		t.Fatalf("unchanged reload: changed=%v err=%v", changed, err)
	}
	_ = p.Set(ctx, DefaultKey, []byte(digest.Sum("other")))
	changed, _ = g.Reload(ctx)
	if !changed || g.State() != Locked {
		t.Errorf("changed=%v state=%s", changed, g.State())
	}
}

func TestSubmitPasswordWithoutPendingAction(t *testing.T) {
	g, surface := lockedGate(t)
	ctx := context.Background()

	if _, err := g.SubmitPassword(ctx, "wrong"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("wrong password err = %v", err)
	}
	if surface.rejected != 1 || g.State() != Locked {
		t.Errorf("rejected=%d state=%s", surface.rejected, g.State())
	}

	ticket, err := g.SubmitPassword(ctx, "secret")
	if err != nil || ticket.ID != "" {
		t.Fatalf("ticket=%+v err=%v", ticket, err)
	}
	if g.State() != Unlocked {
		t.Errorf("state = %s, want unlocked", g.State())
	}
	if surface.hidden != 0 {
		t.Errorf("hidden = %d with no prompt shown", surface.hidden)
	}
}

func TestRemovePasswordWithoutPassword(t *testing.T) {
	g, _ := newGate(t, storage.NewMemory())
	ctx := context.Background()

	if err := g.RemovePassword(ctx, ""); err != nil {
		t.Errorf("empty old password: %v", err)
	}
	if err := g.RemovePassword(ctx, "guess"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Errorf("non-empty old password: %v", err)
	}
	if g.State() != NoPassword {
		t.Errorf("state = %s", g.State())
	}
}
