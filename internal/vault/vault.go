// Package vault is the single owner of linkvault's application state. It
// coordinates the document store, selection, reorder engine, password gate
// and destructive-action confirmations, and reports every change to a
// Notifier.
package vault

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/metrics"
	"github.com/starford/linkvault/internal/models"
	"github.com/starford/linkvault/internal/reorder"
	"github.com/starford/linkvault/internal/selection"
)

// Mode is the active interaction mode. Selection and reorder exclude each other.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeSelection Mode = "selection"
	ModeReorder   Mode = "reorder"
)

type pendingConfirm struct {
	conf Confirmation
	run  func(ctx context.Context) (Outcome, error)
}

// Vault serialises every operation on the document behind one mutex. Password
// hashing runs under the gate's own lock so it never blocks document access.
type Vault struct {
	docs     *document.Store
	gate     *auth.Gate
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	sel     selection.Manager
	reorder *reorder.Engine
	confirm *pendingConfirm
}

// Option configures a Vault.
type Option func(*Vault)

// WithNotifier sets the rendering surface.
func WithNotifier(n Notifier) Option {
	return func(v *Vault) {
		if n != nil {
			v.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.logger = l
		}
	}
}

// New wires a controller around docs and gate. The vault becomes the gate's
// prompt surface.
func New(docs *document.Store, gate *auth.Gate, opts ...Option) *Vault {
	v := &Vault{
		docs:     docs,
		gate:     gate,
		notifier: nopNotifier{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.reorder = reorder.New(docs)
	gate.SetSurface(v)
	return v
}

// Load restores the document and the password digest. The session starts
// locked when a password is set.
func (v *Vault) Load(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.docs.Load(ctx); err != nil {
		return err
	}
	if err := v.gate.Load(ctx); err != nil {
		return err
	}
	v.observeSize()
	return nil
}

// Reload re-reads both storage keys after an external change. Selected ids
// that no longer exist are dropped.
func (v *Vault) Reload(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	docChanged, err := v.docs.Reload(ctx)
	if err != nil {
		return err
	}
	if docChanged {
		v.pruneSelection()
		v.changed(ChangeDocument, "")
	}
	pwChanged, err := v.gate.Reload(ctx)
	if err != nil {
		return err
	}
	if pwChanged {
		v.notifier.Notify(Change{Kind: ChangeAuth})
	}
	return nil
}

// View is a consistent snapshot of the controller state.
type View struct {
	Document       models.Document `json:"document"`
	Checksum       string          `json:"checksum"`
	Mode           Mode            `json:"mode"`
	Selected       []string        `json:"selected"`
	ReorderSource  *reorder.Source `json:"reorderSource,omitempty"`
	Auth           auth.State      `json:"auth"`
	PendingAuth    string          `json:"pendingAuth,omitempty"`
	PendingConfirm *Confirmation   `json:"pendingConfirm,omitempty"`
}

// View returns a snapshot of the current state.
func (v *Vault) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()

	view := View{
		Document: v.docs.Document(),
		Checksum: v.docs.Checksum(),
		Mode:     v.modeLocked(),
		Selected: v.sel.IDs(),
		Auth:     v.gate.State(),
	}
	if view.Selected == nil {
		view.Selected = []string{}
	}
	if src := v.reorder.Source(); src.Kind != reorder.KindNone {
		view.ReorderSource = &src
	}
	if t, ok := v.gate.Pending(); ok {
		view.PendingAuth = t.ID
	}
	if v.confirm != nil {
		c := v.confirm.conf
		view.PendingConfirm = &c
	}
	return view
}

// Mode returns the active interaction mode.
func (v *Vault) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modeLocked()
}

func (v *Vault) modeLocked() Mode {
	switch {
	case v.sel.Active():
		return ModeSelection
	case v.reorder.Active():
		return ModeReorder
	default:
		return ModeNone
	}
}

// ToggleSelection enters selection mode, leaving reorder mode, or exits it.
func (v *Vault) ToggleSelection() Outcome {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sel.Active() {
		v.sel.Exit()
	} else {
		v.reorder.Exit()
		v.sel.Enter()
	}
	v.notifier.Notify(Change{Kind: ChangeMode})
	return Done(v.modeLocked())
}

// ToggleReorder enters reorder mode, leaving selection mode, or exits it.
func (v *Vault) ToggleReorder() Outcome {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.reorder.Active() {
		v.reorder.Exit()
	} else {
		v.sel.Exit()
		v.reorder.Enter()
	}
	v.notifier.Notify(Change{Kind: ChangeMode})
	return Done(v.modeLocked())
}

// ExitModes leaves selection and reorder mode.
func (v *Vault) ExitModes() Outcome {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.exitModesLocked()
	return Done(ModeNone)
}

func (v *Vault) exitModesLocked() {
	if !v.sel.Active() && !v.reorder.Active() {
		return
	}
	v.sel.Exit()
	v.reorder.Exit()
	v.notifier.Notify(Change{Kind: ChangeMode})
}

// changed records a document mutation. It must be called with v.mu held.
func (v *Vault) changed(kind, id string) {
	v.observeSize()
	v.notifier.Notify(Change{Kind: kind, ID: id})
}

func (v *Vault) observeSize() {
	metrics.DocumentSize(v.docs.Stats())
}

// pruneSelection drops selected ids that are no longer in the document.
func (v *Vault) pruneSelection() {
	if v.sel.Count() == 0 {
		return
	}
	live := make(map[string]bool)
	for _, id := range v.docs.LinkIDs() {
		live[id] = true
	}
	var gone []string
	for _, id := range v.sel.IDs() {
		if !live[id] {
			gone = append(gone, id)
		}
	}
	v.sel.Forget(gone...)
}

// mutated reports whether err still left a change in memory.
func mutated(err error) bool {
	return err == nil || errors.Is(err, apperr.ErrStorage)
}

// record counts op and passes its result through.
func (v *Vault) record(op string, out Outcome, err error) (Outcome, error) {
	result := string(out.Status)
	if err != nil {
		result = metrics.ResultError
		if errors.Is(err, apperr.ErrStorage) {
			metrics.PersistFailure()
			v.logger.Error("operation not persisted",
				slog.String("op", op),
				slog.String("error", err.Error()))
		}
	}
	metrics.Operation(op, result)
	return out, err
}
