package vault

// Change kinds published to the Notifier.
const (
	ChangeSectionCreated = "section.created"
	ChangeSectionUpdated = "section.updated"
	ChangeSectionDeleted = "section.deleted"
	ChangeSectionsMoved  = "section.moved"
	ChangeLinkCreated    = "link.created"
	ChangeLinkUpdated    = "link.updated"
	ChangeLinkDeleted    = "link.deleted"
	ChangeLinksMoved     = "link.moved"
	ChangeDocument       = "document.replaced"
	ChangeSelection      = "selection.changed"
	ChangeMode           = "mode.changed"
	ChangeAuth           = "auth.changed"
	ChangeAuthPrompt     = "auth.prompt"
	ChangeAuthRejected   = "auth.rejected"
	ChangeConfirm        = "confirm.pending"
	ChangeReorder        = "reorder.changed"
)

// Change describes one state transition. ID names the affected section or
// link when there is one.
type Change struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// Notifier is the rendering surface invoked after every state change.
// Implementations must not call back into the Vault synchronously.
type Notifier interface {
	Notify(Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Change)

// Notify implements Notifier.
func (f NotifierFunc) Notify(c Change) { f(c) }

type nopNotifier struct{}

func (nopNotifier) Notify(Change) {}

// Fanout notifies every non-nil notifier in order.
func Fanout(ns ...Notifier) Notifier {
	return NotifierFunc(func(c Change) {
		for _, n := range ns {
			if n != nil {
				n.Notify(c)
			}
		}
	})
}
