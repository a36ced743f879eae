package vault

import (
	"context"
	"fmt"

	"github.com/starford/linkvault/internal/apperr"
)

// SelectAll selects every link and opens every section, entering selection
// mode when needed.
func (v *Vault) SelectAll(ctx context.Context) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.sel.Active() {
		v.reorder.Exit()
		v.sel.Enter()
		v.notifier.Notify(Change{Kind: ChangeMode})
	}
	err := v.sel.SelectAll(ctx, v.docs)
	if !mutated(err) {
		return v.record("select_all", Outcome{}, err)
	}
	v.changed(ChangeSelection, "")
	return v.record("select_all", Done(BatchResult{Count: v.sel.Count()}), err)
}

// DeleteSelected removes every selected link after confirmation, then leaves
// selection mode.
func (v *Vault) DeleteSelected(ctx context.Context) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := v.sel.Count()
	if n == 0 {
		return v.record("delete_selected", Outcome{}, apperr.Validation("nothing selected"))
	}
	msg := fmt.Sprintf("Delete %d selected links?", n)
	out, err := v.requestConfirm("delete_selected", msg, func(ctx context.Context) (Outcome, error) {
		ids := v.sel.IDs()
		if len(ids) == 0 {
			return Outcome{}, apperr.Validation("nothing selected")
		}
		removed, err := v.docs.DeleteLinks(ctx, ids)
		if !mutated(err) {
			return Outcome{}, err
		}
		v.sel.Exit()
		v.notifier.Notify(Change{Kind: ChangeMode})
		v.changed(ChangeLinkDeleted, "")
		return Done(BatchResult{Count: removed}), err
	})
	return v.record("delete_selected", out, err)
}

// MoveSelected moves every selected link to the end of targetSectionID, then
// leaves selection mode.
func (v *Vault) MoveSelected(ctx context.Context, targetSectionID string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ids := v.sel.IDs()
	if len(ids) == 0 {
		return v.record("move_selected", Outcome{}, apperr.Validation("nothing selected"))
	}
	moved, err := v.docs.MoveLinks(ctx, ids, targetSectionID)
	if !mutated(err) {
		return v.record("move_selected", Outcome{}, err)
	}
	v.sel.Exit()
	v.notifier.Notify(Change{Kind: ChangeMode})
	v.changed(ChangeLinksMoved, targetSectionID)
	return v.record("move_selected", Done(BatchResult{Count: moved}), err)
}

// MoveLinks moves the given links to targetSectionID without touching the
// selection mode. Moved ids leave the selection.
func (v *Vault) MoveLinks(ctx context.Context, ids []string, targetSectionID string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(ids) == 0 {
		return v.record("move_links", Outcome{}, apperr.Validation("nothing selected"))
	}
	moved, err := v.docs.MoveLinks(ctx, ids, targetSectionID)
	if !mutated(err) {
		return v.record("move_links", Outcome{}, err)
	}
	v.sel.Forget(ids...)
	v.changed(ChangeLinksMoved, targetSectionID)
	return v.record("move_links", Done(BatchResult{Count: moved}), err)
}

// SwapLinks exchanges two links directly, outside reorder mode.
func (v *Vault) SwapLinks(ctx context.Context, aSection, aLink, bSection, bLink string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.docs.SwapLinks(ctx, ref(aSection, aLink), ref(bSection, bLink))
	if !mutated(err) {
		return v.record("swap_links", Outcome{}, err)
	}
	v.changed(ChangeLinksMoved, aLink)
	return v.record("swap_links", Done(nil), err)
}

// MoveSection shifts a section to the position of another, outside reorder mode.
func (v *Vault) MoveSection(ctx context.Context, srcID, dstID string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.docs.MoveSection(ctx, srcID, dstID)
	if !mutated(err) {
		return v.record("move_section", Outcome{}, err)
	}
	v.changed(ChangeSectionsMoved, srcID)
	return v.record("move_section", Done(nil), err)
}
