package vault

import (
	"context"
	"errors"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/metrics"
)

// resumeSlot receives the outcome of the action SubmitPassword resumes. It
// travels on the Unlock context, so the outcome reaches exactly the caller
// whose password ran the action.
type resumeSlot struct {
	ran bool
	op  string
	out Outcome
	err error
}

type resumeKey struct{}

// gated runs fn behind the password gate. When the session is locked fn is
// parked and the outcome carries the ticket Unlock will resume. fn acquires
// v.mu itself, so gated must be called without it.
func (v *Vault) gated(ctx context.Context, op string, fn func(ctx context.Context) (Outcome, error)) (Outcome, error) {
	var out Outcome
	ticket, err := v.gate.RequireAuth(ctx, func(ctx context.Context) error {
		res, ferr := fn(ctx)
		if slot, ok := ctx.Value(resumeKey{}).(*resumeSlot); ok {
			*slot = resumeSlot{ran: true, op: op, out: res, err: ferr}
		}
		out = res
		return ferr
	})
	if !ticket.Deferred {
		return v.record(op, out, err)
	}
	return v.record(op, Outcome{Status: StatusAuthRequired, Ticket: ticket.ID}, nil)
}

// Unlock submits the password. A match unlocks the session; when an operation
// was waiting it runs and its outcome is returned, otherwise Unlock answers
// done with no result.
func (v *Vault) Unlock(ctx context.Context, password string) (Outcome, error) {
	slot := &resumeSlot{}
	before := v.gate.State()
	_, err := v.gate.SubmitPassword(context.WithValue(ctx, resumeKey{}, slot), password)
	if errors.Is(err, apperr.ErrInvalidCredential) {
		metrics.AuthAttempt(false)
		return Outcome{}, err
	}
	if before == auth.Locked {
		metrics.AuthAttempt(true)
	}
	if !slot.ran {
		if state := v.gate.State(); state != before {
			v.notifier.Notify(Change{Kind: ChangeAuth})
		}
		return Done(nil), err
	}
	return v.record(slot.op, slot.out, slot.err)
}

// CancelAuth drops the operation waiting for a password.
func (v *Vault) CancelAuth() bool {
	return v.gate.CancelAuth()
}

// Lock revokes the session unlock.
func (v *Vault) Lock() {
	v.gate.Lock()
	v.notifier.Notify(Change{Kind: ChangeAuth})
}

// AuthState returns the gate state.
func (v *Vault) AuthState() auth.State {
	return v.gate.State()
}

// SetPassword sets or changes the vault password.
func (v *Vault) SetPassword(ctx context.Context, oldPassword, newPassword, confirm string) (Outcome, error) {
	err := v.gate.SetPassword(ctx, oldPassword, newPassword, confirm)
	if err != nil {
		return v.record("set_password", Outcome{}, err)
	}
	v.notifier.Notify(Change{Kind: ChangeAuth})
	return v.record("set_password", Done(v.gate.State()), nil)
}

// RemovePassword clears the vault password.
func (v *Vault) RemovePassword(ctx context.Context, oldPassword string) (Outcome, error) {
	err := v.gate.RemovePassword(ctx, oldPassword)
	if err != nil {
		return v.record("remove_password", Outcome{}, err)
	}
	v.notifier.Notify(Change{Kind: ChangeAuth})
	return v.record("remove_password", Done(v.gate.State()), nil)
}

// ShowPasswordPrompt implements auth.Surface.
func (v *Vault) ShowPasswordPrompt(t auth.Ticket) {
	v.notifier.Notify(Change{Kind: ChangeAuthPrompt, ID: t.ID})
}

// HidePasswordPrompt implements auth.Surface.
func (v *Vault) HidePasswordPrompt() {
	v.notifier.Notify(Change{Kind: ChangeAuth})
}

// PasswordRejected implements auth.Surface.
func (v *Vault) PasswordRejected() {
	v.notifier.Notify(Change{Kind: ChangeAuthRejected})
}
