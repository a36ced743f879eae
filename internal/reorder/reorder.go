// Package reorder implements the two-click "pick source, pick destination"
// protocol for sections (list shift) and links (positional swap).
package reorder

import (
	"context"
	"errors"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/models"
)

// Mover applies completed reorders to the document.
type Mover interface {
	MoveSection(ctx context.Context, srcID, dstID string) error
	SwapLinks(ctx context.Context, a, b models.LinkRef) error
}

// Kind identifies what the recorded source points at.
type Kind int

const (
	KindNone Kind = iota
	KindSection
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindLink:
		return "link"
	default:
		return "none"
	}
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "section":
		*k = KindSection
	case "link":
		*k = KindLink
	case "none", "":
		*k = KindNone
	default:
		return apperr.Validation("unknown reorder kind " + string(b))
	}
	return nil
}

// Source is the first pick of a pending reorder.
type Source struct {
	Kind      Kind   `json:"kind"`
	SectionID string `json:"sectionId,omitempty"`
	LinkID    string `json:"linkId,omitempty"`
}

// Outcome describes what a pick did.
type Outcome string

const (
	SourceRecorded Outcome = "source_recorded"
	Moved          Outcome = "moved"
	Cleared        Outcome = "cleared"
	Ignored        Outcome = "ignored"
	Aborted        Outcome = "aborted"
)

// Result is returned by every pick.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Warning string  `json:"warning,omitempty"`
	// Exited is set when the pick ended reorder mode.
	Exited bool `json:"exited,omitempty"`
}

// Warnings shown when a pick is ignored.
const (
	WarnInactive       = "reorder mode is off"
	WarnSameSection    = "pick a different section"
	WarnLinkPending    = "finish moving the link first"
	WarnSectionPending = "finish moving the section first"
)

// Engine holds reorder mode and the pending source.
type Engine struct {
	mover  Mover
	active bool
	src    Source
}

// New returns an inactive engine that applies moves through m.
func New(m Mover) *Engine {
	return &Engine{mover: m}
}

// Enter activates reorder mode with no source.
func (e *Engine) Enter() {
	e.active = true
	e.src = Source{}
}

// Exit leaves reorder mode and drops any source.
func (e *Engine) Exit() {
	e.active = false
	e.src = Source{}
}

// Active reports whether reorder mode is on.
func (e *Engine) Active() bool { return e.active }

// Source returns the pending source, if any.
func (e *Engine) Source() Source { return e.src }

// PickSection handles a click on a section while reorder mode is on.
// After a move or an abort the source clears and the mode stays on.
func (e *Engine) PickSection(ctx context.Context, sectionID string) (Result, error) {
	switch {
	case !e.active:
		return Result{Outcome: Ignored, Warning: WarnInactive}, nil
	case e.src.Kind == KindLink:
		return Result{Outcome: Ignored, Warning: WarnLinkPending}, nil
	case e.src.Kind == KindNone:
		e.src = Source{Kind: KindSection, SectionID: sectionID}
		return Result{Outcome: SourceRecorded}, nil
	case e.src.SectionID == sectionID:
		return Result{Outcome: Ignored, Warning: WarnSameSection}, nil
	}

	from := e.src.SectionID
	e.src = Source{}
	err := e.mover.MoveSection(ctx, from, sectionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Result{Outcome: Aborted}, nil
	}
	return Result{Outcome: Moved}, err
}

// PickLink handles a click on a link while reorder mode is on. Picking the
// source twice clears it. Any completed or aborted swap ends reorder mode.
func (e *Engine) PickLink(ctx context.Context, ref models.LinkRef) (Result, error) {
	switch {
	case !e.active:
		return Result{Outcome: Ignored, Warning: WarnInactive}, nil
	case e.src.Kind == KindSection:
		return Result{Outcome: Ignored, Warning: WarnSectionPending}, nil
	case e.src.Kind == KindNone:
		e.src = Source{Kind: KindLink, SectionID: ref.SectionID, LinkID: ref.LinkID}
		return Result{Outcome: SourceRecorded}, nil
	case e.src.LinkID == ref.LinkID:
		e.Exit()
		return Result{Outcome: Cleared, Exited: true}, nil
	}

	from := models.LinkRef{SectionID: e.src.SectionID, LinkID: e.src.LinkID}
	e.Exit()
	err := e.mover.SwapLinks(ctx, from, ref)
	if errors.Is(err, apperr.ErrNotFound) {
		return Result{Outcome: Aborted, Exited: true}, nil
	}
	return Result{Outcome: Moved, Exited: true}, err
}
