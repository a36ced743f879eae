package api

import (
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/models"
)

// SectionRequest is the body for creating or editing a section.
type SectionRequest = document.SectionInput

// LinkRequest is the body for adding a link.
type LinkRequest = document.LinkInput

// UpdateLinkRequest is the body for editing a link. A sectionId different from
// the current owner moves the link.
type UpdateLinkRequest struct {
	URL       string `json:"url" example:"https://go.dev"`
	Name      string `json:"name" example:"Go"`
	SectionID string `json:"sectionId,omitempty"`
}

// MoveLinksRequest moves links to the end of a section.
type MoveLinksRequest struct {
	IDs       []string `json:"ids"`
	SectionID string   `json:"sectionId"`
}

// MoveSelectedRequest moves the current selection.
type MoveSelectedRequest struct {
	SectionID string `json:"sectionId"`
}

// MoveSectionRequest shifts a section to the position of another.
type MoveSectionRequest struct {
	TargetID string `json:"targetId"`
}

// SwapLinksRequest exchanges two links.
type SwapLinksRequest struct {
	A models.LinkRef `json:"a"`
	B models.LinkRef `json:"b"`
}

// UnlockRequest submits the vault password.
type UnlockRequest struct {
	Password string `json:"password"`
}

// SetPasswordRequest sets or changes the vault password.
type SetPasswordRequest struct {
	Old     string `json:"old"`
	New     string `json:"new"`
	Confirm string `json:"confirm"`
}

// RemovePasswordRequest clears the vault password.
type RemovePasswordRequest struct {
	Old string `json:"old"`
}

// ConfirmRequest answers a pending confirmation.
type ConfirmRequest struct {
	Ticket string `json:"ticket"`
}

// PaletteResponse lists the emoji and color choices for sections.
type PaletteResponse struct {
	Emojis []string `json:"emojis"`
	Colors []string `json:"colors"`
}
