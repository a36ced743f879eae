// Package auth implements the password gate that guards sensitive vault
// operations behind a per-session unlock.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/digest"
	"github.com/starford/linkvault/internal/storage"
)

// DefaultKey is the storage key the password digest is persisted under.
const DefaultKey = "vlt_pw"

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 4

// State is the gate's position in its state machine.
type State int

const (
	NoPassword State = iota
	Locked
	Unlocked
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return "no_password"
	}
}

// MarshalText renders the state as its string form in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the string form produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "locked":
		*s = Locked
	case "unlocked":
		*s = Unlocked
	case "no_password":
		*s = NoPassword
	default:
		return apperr.Validation("unknown auth state " + string(b))
	}
	return nil
}

// Action is an operation run once the gate lets it through.
type Action func(ctx context.Context) error

// Ticket identifies a gate request. Deferred is set when the action is waiting
// for a password.
type Ticket struct {
	ID       string `json:"id,omitempty"`
	Deferred bool   `json:"deferred"`
}

// Surface is the prompt the gate drives while an action is pending.
type Surface interface {
	ShowPasswordPrompt(t Ticket)
	HidePasswordPrompt()
	PasswordRejected()
}

// NopSurface ignores every prompt request.
type NopSurface struct{}

func (NopSurface) ShowPasswordPrompt(Ticket) {}
func (NopSurface) HidePasswordPrompt()       {}
func (NopSurface) PasswordRejected()         {}

type pendingAction struct {
	ticket Ticket
	action Action
}

// Gate holds the stored digest, the session unlock flag and at most one
// pending action. A newer request replaces an unresolved older one.
type Gate struct {
	provider storage.Provider
	key      string
	hasher   digest.Hasher
	surface  Surface
	logger   *slog.Logger

	mu       sync.Mutex
	stored   string
	unlocked bool
	pending  *pendingAction
}

// Option configures a Gate.
type Option func(*Gate)

// WithKey overrides the storage key of the digest.
func WithKey(key string) Option {
	return func(g *Gate) {
		if key != "" {
			g.key = key
		}
	}
}

// WithHasher replaces the default SHA-256 hasher.
func WithHasher(h digest.Hasher) Option {
	return func(g *Gate) {
		if h != nil {
			g.hasher = h
		}
	}
}

// WithSurface sets the prompt surface.
func WithSurface(s Surface) Option {
	return func(g *Gate) {
		if s != nil {
			g.surface = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a gate with no password. Call Load to read the stored digest.
func New(p storage.Provider, opts ...Option) *Gate {
	g := &Gate{
		provider: p,
		key:      DefaultKey,
		hasher:   digest.SHA256{},
		surface:  NopSurface{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetSurface replaces the prompt surface after construction.
func (g *Gate) SetSurface(s Surface) {
	if s == nil {
		s = NopSurface{}
	}
	g.mu.Lock()
	g.surface = s
	g.mu.Unlock()
}

// Load reads the stored digest. Every load starts a locked session.
func (g *Gate) Load(ctx context.Context) error {
	_, err := g.Reload(ctx)
	g.mu.Lock()
	g.unlocked = false
	g.mu.Unlock()
	return err
}

// Reload re-reads the stored digest and reports whether it changed. A changed
// digest locks the session.
func (g *Gate) Reload(ctx context.Context) (bool, error) {
	data, ok, err := g.provider.Get(ctx, g.key)
	if err != nil {
		return false, apperr.Storage("load password", err)
	}
	stored := ""
	if ok {
		stored = strings.TrimSpace(string(data))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if stored == g.stored {
		return false, nil
	}
	g.stored = stored
	g.unlocked = false
	return true, nil
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Gate) stateLocked() State {
	switch {
	case g.stored == "":
		return NoPassword
	case g.unlocked:
		return Unlocked
	default:
		return Locked
	}
}

// Pending returns the ticket of the action waiting for a password, if any.
func (g *Gate) Pending() (Ticket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Ticket{}, false
	}
	return g.pending.ticket, true
}

// RequireAuth runs action now when no password is set or the session is
// unlocked. Otherwise it stores action as the pending action, replacing any
// earlier one, asks the surface for a password and returns a deferred ticket.
func (g *Gate) RequireAuth(ctx context.Context, action Action) (Ticket, error) {
	g.mu.Lock()
	if g.stateLocked() != Locked {
		g.mu.Unlock()
		return Ticket{}, action(ctx)
	}
	if g.pending != nil {
		g.logger.Debug("replacing pending action", slog.String("ticket", g.pending.ticket.ID))
	}
	t := Ticket{ID: uuid.NewString(), Deferred: true}
	g.pending = &pendingAction{ticket: t, action: action}
	surface := g.surface
	g.mu.Unlock()

	surface.ShowPasswordPrompt(t)
	return t, nil
}

// SubmitPassword verifies candidate against the stored digest. A mismatch
// returns ErrInvalidCredential and leaves any pending action in place. On a
// match the session unlocks and the pending action, if there is one, runs
// exactly once; the returned ticket identifies it and is zero when nothing was
// pending.
func (g *Gate) SubmitPassword(ctx context.Context, candidate string) (Ticket, error) {
	g.mu.Lock()
	surface := g.surface
	if g.stored != "" && !g.hasher.Verify(g.stored, candidate) {
		g.mu.Unlock()
		surface.PasswordRejected()
		return Ticket{}, apperr.ErrInvalidCredential
	}
	if g.stored != "" {
		g.unlocked = true
	}
	p := g.pending
	g.pending = nil
	g.mu.Unlock()

	if p == nil {
		return Ticket{}, nil
	}
	surface.HidePasswordPrompt()
	return p.ticket, p.action(ctx)
}

// CancelAuth hides the prompt and drops the pending action without running it.
// It reports whether an action was dropped.
func (g *Gate) CancelAuth() bool {
	g.mu.Lock()
	dropped := g.pending != nil
	g.pending = nil
	surface := g.surface
	g.mu.Unlock()

	surface.HidePasswordPrompt()
	return dropped
}

// SetPassword replaces the password. When one is already set, oldCandidate must
// match it. The new digest is persisted before the session unlocks.
func (g *Gate) SetPassword(ctx context.Context, oldCandidate, newCandidate, confirmCandidate string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stored != "" && !g.hasher.Verify(g.stored, oldCandidate) {
		return apperr.ErrInvalidCredential
	}
	if utf8.RuneCountInString(newCandidate) < MinPasswordLength {
		return apperr.Validation("too short")
	}
	if newCandidate != confirmCandidate {
		return apperr.Validation("mismatch")
	}
	h, err := g.hasher.Hash(newCandidate)
	if err != nil {
		return err
	}
	if err := g.provider.Set(ctx, g.key, []byte(h)); err != nil {
		return apperr.Storage("persist password", err)
	}
	g.stored = h
	g.unlocked = true
	return nil
}

// RemovePassword clears the password after verifying oldCandidate. With no
// password set an empty oldCandidate is a no-op.
func (g *Gate) RemovePassword(ctx context.Context, oldCandidate string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stored == "" && oldCandidate == "" {
		return nil
	}
	if !g.hasher.Verify(g.stored, oldCandidate) {
		return apperr.ErrInvalidCredential
	}
	if err := g.provider.Remove(ctx, g.key); err != nil {
		return apperr.Storage("remove password", err)
	}
	g.stored = ""
	g.unlocked = false
	return nil
}

// Lock revokes the session unlock.
func (g *Gate) Lock() {
	g.mu.Lock()
	g.unlocked = false
	g.mu.Unlock()
}
