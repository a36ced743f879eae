package vault

import (
	"context"
	"fmt"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/models"
	"github.com/starford/linkvault/internal/reorder"
)

// AddLink appends a link to a section.
func (v *Vault) AddLink(ctx context.Context, sectionID string, in document.LinkInput) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	l, err := v.docs.AddLink(ctx, sectionID, in)
	if !mutated(err) {
		return v.record("add_link", Outcome{}, err)
	}
	v.changed(ChangeLinkCreated, l.ID)
	return v.record("add_link", Done(l), err)
}

// UpdateLink edits a link and optionally moves it to targetSectionID.
// Requires auth.
func (v *Vault) UpdateLink(ctx context.Context, linkID string, in document.LinkInput, targetSectionID string) (Outcome, error) {
	return v.gated(ctx, "update_link", func(ctx context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		_, owner, _ := v.docs.Link(linkID)
		l, err := v.docs.UpdateLink(ctx, linkID, in, targetSectionID)
		if !mutated(err) {
			return Outcome{}, err
		}
		if targetSectionID != "" && targetSectionID != owner {
			v.sel.Forget(linkID)
		}
		v.changed(ChangeLinkUpdated, linkID)
		return Done(l), err
	})
}

// DeleteLink removes a link. Requires auth and confirmation.
func (v *Vault) DeleteLink(ctx context.Context, sectionID, linkID string) (Outcome, error) {
	return v.gated(ctx, "delete_link", func(ctx context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		l, owner, ok := v.docs.Link(linkID)
		if !ok || owner != sectionID {
			return Outcome{}, apperr.NotFound("link", linkID)
		}
		msg := fmt.Sprintf("Delete link %q?", l.Name)
		return v.requestConfirm("delete_link", msg, func(ctx context.Context) (Outcome, error) {
			err := v.docs.DeleteLink(ctx, sectionID, linkID)
			if !mutated(err) {
				return Outcome{}, err
			}
			v.sel.Forget(linkID)
			v.changed(ChangeLinkDeleted, linkID)
			return Done(BatchResult{Count: 1}), err
		})
	})
}

// Activate handles a click on a link. In selection mode it toggles the link,
// in reorder mode it is a reorder pick, otherwise it returns the URL to open.
func (v *Vault) Activate(ctx context.Context, sectionID, linkID string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	l, owner, ok := v.docs.Link(linkID)
	if !ok || owner != sectionID {
		return v.record("activate", Outcome{}, apperr.NotFound("link", linkID))
	}

	switch {
	case v.sel.Active():
		res := ActivateResult{Action: "deselected"}
		if v.sel.Toggle(linkID) {
			res.Action = "selected"
		}
		res.Selected = v.sel.Count()
		v.notifier.Notify(Change{Kind: ChangeSelection, ID: linkID})
		return v.record("activate", Done(res), nil)

	case v.reorder.Active():
		res, err := v.reorder.PickLink(ctx, models.LinkRef{SectionID: sectionID, LinkID: linkID})
		if res.Outcome == reorder.Moved && mutated(err) {
			v.changed(ChangeLinksMoved, linkID)
		} else {
			v.notifier.Notify(Change{Kind: ChangeReorder, ID: linkID})
		}
		if res.Exited {
			v.notifier.Notify(Change{Kind: ChangeMode})
		}
		return v.record("activate", Done(ActivateResult{Action: "reorder", Reorder: &res}), err)

	default:
		return v.record("activate", Done(ActivateResult{Action: "open", URL: l.URL}), nil)
	}
}
