package vault

import (
	"context"
	"fmt"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/reorder"
)

// CreateSection appends a section.
func (v *Vault) CreateSection(ctx context.Context, in document.SectionInput) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sec, err := v.docs.CreateSection(ctx, in)
	if !mutated(err) {
		return v.record("create_section", Outcome{}, err)
	}
	v.changed(ChangeSectionCreated, sec.ID)
	return v.record("create_section", Done(sec), err)
}

// RenameSection edits a section's name, emoji and color. Requires auth.
func (v *Vault) RenameSection(ctx context.Context, id string, in document.SectionInput) (Outcome, error) {
	return v.gated(ctx, "rename_section", func(ctx context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		sec, err := v.docs.RenameSection(ctx, id, in)
		if !mutated(err) {
			return Outcome{}, err
		}
		v.changed(ChangeSectionUpdated, id)
		return Done(sec), err
	})
}

// DeleteSection removes a section and its links. Requires auth and confirmation.
func (v *Vault) DeleteSection(ctx context.Context, id string) (Outcome, error) {
	return v.gated(ctx, "delete_section", func(ctx context.Context) (Outcome, error) {
		v.mu.Lock()
		defer v.mu.Unlock()

		sec, ok := v.docs.Section(id)
		if !ok {
			return Outcome{}, apperr.NotFound("section", id)
		}
		msg := fmt.Sprintf("Delete section %q and its %d links?", sec.Name, len(sec.Links))
		return v.requestConfirm("delete_section", msg, func(ctx context.Context) (Outcome, error) {
			removed, err := v.docs.DeleteSection(ctx, id)
			if !mutated(err) {
				return Outcome{}, err
			}
			v.sel.Forget(removed...)
			v.changed(ChangeSectionDeleted, id)
			return Done(BatchResult{Count: len(removed)}), err
		})
	})
}

// ToggleSection expands a collapsed section or collapses an expanded one.
func (v *Vault) ToggleSection(ctx context.Context, id string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sec, ok := v.docs.Section(id)
	if !ok {
		return v.record("toggle_section", Outcome{}, apperr.NotFound("section", id))
	}
	return v.setSectionOpenLocked(ctx, id, !sec.IsOpen)
}

// SetSectionOpen expands or collapses a section.
func (v *Vault) SetSectionOpen(ctx context.Context, id string, open bool) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setSectionOpenLocked(ctx, id, open)
}

func (v *Vault) setSectionOpenLocked(ctx context.Context, id string, open bool) (Outcome, error) {
	err := v.docs.SetSectionOpen(ctx, id, open)
	if !mutated(err) {
		return v.record("toggle_section", Outcome{}, err)
	}
	v.changed(ChangeSectionUpdated, id)
	sec, _ := v.docs.Section(id)
	return v.record("toggle_section", Done(sec), err)
}

// PickSection feeds a section click to the reorder engine.
func (v *Vault) PickSection(ctx context.Context, id string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.reorder.PickSection(ctx, id)
	if res.Outcome == reorder.Moved && mutated(err) {
		v.changed(ChangeSectionsMoved, id)
	} else {
		v.notifier.Notify(Change{Kind: ChangeReorder, ID: id})
	}
	return v.record("pick_section", Done(res), err)
}
