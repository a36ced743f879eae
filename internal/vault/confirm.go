package vault

import (
	"context"

	"github.com/google/uuid"

	"github.com/starford/linkvault/internal/apperr"
)

// requestConfirm parks run until Confirm is called with the returned ticket.
// A newer request replaces an unanswered one. Must be called with v.mu held;
// run is invoked with v.mu held as well.
func (v *Vault) requestConfirm(op, message string, run func(ctx context.Context) (Outcome, error)) (Outcome, error) {
	conf := Confirmation{Ticket: uuid.NewString(), Op: op, Message: message}
	v.confirm = &pendingConfirm{conf: conf, run: run}
	v.notifier.Notify(Change{Kind: ChangeConfirm, ID: conf.Ticket})
	return Outcome{Status: StatusConfirmRequired, Confirmation: &conf}, nil
}

// Confirm runs the pending destructive operation. An empty ticket confirms
// whatever is pending.
func (v *Vault) Confirm(ctx context.Context, ticket string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := v.confirm
	if p == nil || (ticket != "" && p.conf.Ticket != ticket) {
		return Outcome{}, apperr.NotFound("confirmation", ticket)
	}
	v.confirm = nil
	out, err := p.run(ctx)
	return v.record(p.conf.Op, out, err)
}

// Dismiss drops the pending confirmation without running it.
func (v *Vault) Dismiss() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	dropped := v.confirm != nil
	v.confirm = nil
	return dropped
}

// PendingConfirmation returns the confirmation waiting for an answer, if any.
func (v *Vault) PendingConfirmation() (Confirmation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.confirm == nil {
		return Confirmation{}, false
	}
	return v.confirm.conf, true
}
