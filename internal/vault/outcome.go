package vault

import (
	"github.com/starford/linkvault/internal/reorder"
)

// Status tells the caller whether an operation completed or needs input.
type Status string

const (
	StatusDone            Status = "done"
	StatusAuthRequired    Status = "auth_required"
	StatusConfirmRequired Status = "confirm_required"
)

// Confirmation describes a destructive operation waiting for Confirm.
type Confirmation struct {
	Ticket  string `json:"ticket"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

// Outcome is returned by every controller operation.
type Outcome struct {
	Status Status `json:"status"`
	// Ticket is set when Status is auth_required; pass the password to Unlock.
	Ticket       string        `json:"ticket,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	Result       any           `json:"result,omitempty"`
}

// Done wraps a completed operation's result.
func Done(result any) Outcome {
	return Outcome{Status: StatusDone, Result: result}
}

// ActivateResult reports what a click on a link did.
type ActivateResult struct {
	// Action is one of "open", "selected", "deselected" or "reorder".
	Action   string          `json:"action"`
	URL      string          `json:"url,omitempty"`
	Selected int             `json:"selected,omitempty"`
	Reorder  *reorder.Result `json:"reorder,omitempty"`
}

// BatchResult reports how many links a batch operation touched.
type BatchResult struct {
	Count int `json:"count"`
}

// ExportResult carries a serialized document.
type ExportResult struct {
	Filename string `json:"filename"`
	Checksum string `json:"checksum"`
	Data     []byte `json:"-"`
}
