package vault

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/ident"
	"github.com/starford/linkvault/internal/models"
	"github.com/starford/linkvault/internal/reorder"
	"github.com/starford/linkvault/internal/storage"
	"github.com/starford/linkvault/internal/testutil"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) Notify(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) kinds() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, c := range r.changes {
		out[c.Kind]++
	}
	return out
}

func newVault(t *testing.T, p storage.Provider) (*Vault, *recorder) {
	t.Helper()
	rec := &recorder{}
	docs := document.New(p, document.WithIDGenerator(ident.Sequential("id")))
	gate := auth.New(p)
	v := New(docs, gate, WithNotifier(rec))
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v, rec
}

// fixture builds two sections with two links each on an empty document.
type fixture struct {
	v     *Vault
	rec   *recorder
	a, b  models.Section
	links map[string]models.Link
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, storage.NewMemory())
}

func newFixtureOn(t *testing.T, p storage.Provider) *fixture {
	t.Helper()
	v, rec := newVault(t, p)
	f := &fixture{v: v, rec: rec, links: map[string]models.Link{}, ctx: context.Background()}
	if err := v.docs.Clear(f.ctx); err != nil {
		t.Fatal(err)
	}
	f.a = f.section(t, "A")
	f.b = f.section(t, "B")
	f.link(t, "a1", f.a.ID)
	f.link(t, "a2", f.a.ID)
	f.link(t, "b1", f.b.ID)
	f.link(t, "b2", f.b.ID)
	return f
}

func (f *fixture) section(t *testing.T, name string) models.Section {
	t.Helper()
	out, err := f.v.CreateSection(f.ctx, document.SectionInput{Name: name})
	if err != nil {
		t.Fatal(err)
	}
	return out.Result.(models.Section)
}

func (f *fixture) link(t *testing.T, name, sectionID string) {
	t.Helper()
	out, err := f.v.AddLink(f.ctx, sectionID, document.LinkInput{URL: name + ".example", Name: name})
	if err != nil {
		t.Fatal(err)
	}
	f.links[name] = out.Result.(models.Link)
}

func (f *fixture) lock(t *testing.T) {
	t.Helper()
	if _, err := f.v.SetPassword(f.ctx, "", "hunter2", "hunter2"); err != nil {
		t.Fatal(err)
	}
	f.v.Lock()
}

func sectionLinks(v *Vault, id string) []string {
	sec, _ := v.docs.Section(id)
	var ids []string
	for _, l := range sec.Links {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestModesAreExclusive(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	if f.v.Mode() != ModeSelection {
		t.Fatalf("mode = %s", f.v.Mode())
	}
	_, _ = f.v.Activate(f.ctx, f.a.ID, f.links["a1"].ID)

	f.v.ToggleReorder()
	if f.v.Mode() != ModeReorder {
		t.Fatalf("mode = %s", f.v.Mode())
	}
	if view := f.v.View(); len(view.Selected) != 0 {
		t.Errorf("selection survived mode switch: %v", view.Selected)
	}

	_, _ = f.v.PickSection(f.ctx, f.a.ID)
	f.v.ToggleSelection()
	if f.v.View().ReorderSource != nil {
		t.Error("reorder source survived mode switch")
	}
	f.v.ExitModes()
	if f.v.Mode() != ModeNone {
		t.Errorf("mode = %s", f.v.Mode())
	}
}

func TestActivateOpensOutsideModes(t *testing.T) {
	f := newFixture(t)
	out, err := f.v.Activate(f.ctx, f.a.ID, f.links["a1"].ID)
	if err != nil {
		t.Fatal(err)
	}
	res := out.Result.(ActivateResult)
	if res.Action != "open" || res.URL != "https://a1.example" {
		t.Errorf("result = %+v", res)
	}
	if _, err := f.v.Activate(f.ctx, f.b.ID, f.links["a1"].ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("wrong owner err = %v", err)
	}
}

func TestActivateInSelectionModeToggles(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	out, _ := f.v.Activate(f.ctx, f.a.ID, f.links["a1"].ID)
	if res := out.Result.(ActivateResult); res.Action != "selected" || res.URL != "" || res.Selected != 1 {
		t.Errorf("first click = %+v", res)
	}
	out, _ = f.v.Activate(f.ctx, f.a.ID, f.links["a1"].ID)
	if res := out.Result.(ActivateResult); res.Action != "deselected" || res.Selected != 0 {
		t.Errorf("second click = %+v", res)
	}
}

func TestActivateInReorderModeSwapsAndExits(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleReorder()
	out, _ := f.v.Activate(f.ctx, f.a.ID, f.links["a1"].ID)
	res := out.Result.(ActivateResult)
	if res.Action != "reorder" || res.URL != "" || res.Reorder.Outcome != reorder.SourceRecorded {
		t.Fatalf("first pick = %+v", res)
	}
	out, err := f.v.Activate(f.ctx, f.b.ID, f.links["b2"].ID)
	if err != nil {
		t.Fatal(err)
	}
	if res := out.Result.(ActivateResult); res.Reorder.Outcome != reorder.Moved {
		t.Errorf("second pick = %+v", res.Reorder)
	}
	if got := sectionLinks(f.v, f.a.ID); got[0] != f.links["b2"].ID {
		t.Errorf("A = %v", got)
	}
	if got := sectionLinks(f.v, f.b.ID); got[1] != f.links["a1"].ID {
		t.Errorf("B = %v", got)
	}
	if f.v.Mode() != ModeNone {
		t.Errorf("mode = %s after link swap", f.v.Mode())
	}
}

func TestSectionReorderStaysInMode(t *testing.T) {
	f := newFixture(t)
	c := f.section(t, "C")
	f.v.ToggleReorder()
	_, _ = f.v.PickSection(f.ctx, f.a.ID)
	out, err := f.v.PickSection(f.ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res := out.Result.(reorder.Result); res.Outcome != reorder.Moved {
		t.Errorf("result = %+v", res)
	}
	doc := f.v.View().Document
	if doc.Groups[0].ID != f.b.ID || doc.Groups[2].ID != f.a.ID {
		t.Errorf("order = %s %s %s", doc.Groups[0].Name, doc.Groups[1].Name, doc.Groups[2].Name)
	}
	if f.v.Mode() != ModeReorder {
		t.Error("section move should keep reorder mode")
	}
}

func TestSelectAllThenDeleteSelectedEmptiesSections(t *testing.T) {
	f := newFixture(t)
	_, _ = f.v.SetSectionOpen(f.ctx, f.b.ID, false)

	out, err := f.v.SelectAll(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n := out.Result.(BatchResult).Count; n != 4 {
		t.Errorf("selected = %d", n)
	}
	if sec, _ := f.v.docs.Section(f.b.ID); !sec.IsOpen {
		t.Error("SelectAll did not open every section")
	}

	out, err = f.v.DeleteSelected(f.ctx)
	if err != nil || out.Status != StatusConfirmRequired {
		t.Fatalf("out = %+v err = %v", out, err)
	}
	if len(f.v.docs.LinkIDs()) != 4 {
		t.Fatal("links deleted before confirmation")
	}
	out, err = f.v.Confirm(f.ctx, out.Confirmation.Ticket)
	if err != nil || out.Status != StatusDone {
		t.Fatalf("confirm = %+v err = %v", out, err)
	}
	view := f.v.View()
	for _, g := range view.Document.Groups {
		if len(g.Links) != 0 {
			t.Errorf("section %s still has %d links", g.Name, len(g.Links))
		}
	}
	if len(view.Selected) != 0 || view.Mode != ModeNone {
		t.Errorf("selected=%v mode=%s", view.Selected, view.Mode)
	}
}

func TestBatchNothingSelected(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	if _, err := f.v.DeleteSelected(f.ctx); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("delete err = %v", err)
	}
	if _, err := f.v.MoveSelected(f.ctx, f.b.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("move err = %v", err)
	}
}

func TestMoveSelected(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	_, _ = f.v.Activate(f.ctx, f.a.ID, f.links["a2"].ID)
	_, _ = f.v.Activate(f.ctx, f.a.ID, f.links["a1"].ID)

	out, err := f.v.MoveSelected(f.ctx, f.b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n := out.Result.(BatchResult).Count; n != 2 {
		t.Errorf("moved = %d", n)
	}
	want := []string{f.links["b1"].ID, f.links["b2"].ID, f.links["a1"].ID, f.links["a2"].ID}
	got := sectionLinks(f.v, f.b.ID)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("B = %v, want %v", got, want)
		}
	}
	if f.v.Mode() != ModeNone || len(f.v.View().Selected) != 0 {
		t.Error("selection not cleared after move")
	}
}

func TestDeleteLinkForgetsSelection(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	a1 := f.links["a1"].ID
	_, _ = f.v.Activate(f.ctx, f.a.ID, a1)
	_, _ = f.v.Activate(f.ctx, f.a.ID, f.links["a2"].ID)

	out, err := f.v.DeleteLink(f.ctx, f.a.ID, a1)
	if err != nil || out.Status != StatusConfirmRequired {
		t.Fatalf("out = %+v err = %v", out, err)
	}
	if _, err := f.v.Confirm(f.ctx, ""); err != nil {
		t.Fatal(err)
	}
	view := f.v.View()
	if len(view.Selected) != 1 || view.Selected[0] != f.links["a2"].ID {
		t.Errorf("selected = %v", view.Selected)
	}
}

func TestUpdateLinkMoveForgetsSelection(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	a1 := f.links["a1"].ID
	_, _ = f.v.Activate(f.ctx, f.a.ID, a1)
	if _, err := f.v.UpdateLink(f.ctx, a1, document.LinkInput{URL: "a1.example"}, f.b.ID); err != nil {
		t.Fatal(err)
	}
	if len(f.v.View().Selected) != 0 {
		t.Error("moved link still selected")
	}
}

func TestDeleteSectionForgetsItsLinks(t *testing.T) {
	f := newFixture(t)
	_, _ = f.v.SelectAll(f.ctx)
	out, _ := f.v.DeleteSection(f.ctx, f.a.ID)
	out, err := f.v.Confirm(f.ctx, out.Confirmation.Ticket)
	if err != nil {
		t.Fatal(err)
	}
	if n := out.Result.(BatchResult).Count; n != 2 {
		t.Errorf("removed = %d", n)
	}
	if sel := f.v.View().Selected; len(sel) != 2 {
		t.Errorf("selected = %v, want only B's links", sel)
	}
}

func TestGatedOperationWaitsForUnlock(t *testing.T) {
	f := newFixture(t)
	f.lock(t)

	out, err := f.v.RenameSection(f.ctx, f.a.ID, document.SectionInput{Name: "Renamed"})
	if err != nil || out.Status != StatusAuthRequired || out.Ticket == "" {
		t.Fatalf("out = %+v err = %v", out, err)
	}
	if sec, _ := f.v.docs.Section(f.a.ID); sec.Name != "A" {
		t.Fatal("rename ran while locked")
	}
	if f.rec.kinds()[ChangeAuthPrompt] != 1 {
		t.Error("prompt not surfaced")
	}

	if _, err := f.v.Unlock(f.ctx, "wrong"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("wrong password err = %v", err)
	}
	if f.rec.kinds()[ChangeAuthRejected] != 1 {
		t.Error("rejection not surfaced")
	}

	out, err = f.v.Unlock(f.ctx, "hunter2")
	if err != nil || out.Status != StatusDone {
		t.Fatalf("unlock = %+v err = %v", out, err)
	}
	if sec := out.Result.(models.Section); sec.Name != "Renamed" {
		t.Errorf("resumed result = %+v", sec)
	}
	if f.v.AuthState() != auth.Unlocked {
		t.Errorf("state = %s", f.v.AuthState())
	}

	out, _ = f.v.Unlock(f.ctx, "hunter2")
	if out.Status != StatusDone || out.Result != nil {
		t.Errorf("unlock without pending = %+v", out)
	}
}

func TestLastGatedRequestWins(t *testing.T) {
	f := newFixture(t)
	f.lock(t)
	first, _ := f.v.RenameSection(f.ctx, f.a.ID, document.SectionInput{Name: "First"})
	second, _ := f.v.RenameSection(f.ctx, f.b.ID, document.SectionInput{Name: "Second"})
	if first.Ticket == second.Ticket {
		t.Fatal("tickets should differ")
	}
	if got := f.v.View().PendingAuth; got != second.Ticket {
		t.Errorf("pending = %s, want %s", got, second.Ticket)
	}

	_, _ = f.v.Unlock(f.ctx, "hunter2")
	a, _ := f.v.docs.Section(f.a.ID)
	b, _ := f.v.docs.Section(f.b.ID)
	if a.Name != "A" || b.Name != "Second" {
		t.Errorf("names = %q %q", a.Name, b.Name)
	}
}

func TestCancelAuthDropsOperation(t *testing.T) {
	f := newFixture(t)
	f.lock(t)
	_, _ = f.v.Clear(f.ctx)
	if !f.v.CancelAuth() {
		t.Error("nothing dropped")
	}
	out, _ := f.v.Unlock(f.ctx, "hunter2")
	if out.Result != nil || len(f.v.docs.LinkIDs()) != 4 {
		t.Error("cancelled operation ran")
	}
}

func TestDeleteSectionNeedsAuthThenConfirm(t *testing.T) {
	f := newFixture(t)
	f.lock(t)

	out, _ := f.v.DeleteSection(f.ctx, f.a.ID)
	if out.Status != StatusAuthRequired {
		t.Fatalf("status = %s", out.Status)
	}
	out, err := f.v.Unlock(f.ctx, "hunter2")
	if err != nil || out.Status != StatusConfirmRequired {
		t.Fatalf("unlock = %+v err = %v", out, err)
	}
	if _, ok := f.v.docs.Section(f.a.ID); !ok {
		t.Fatal("section deleted before confirmation")
	}
	if _, err := f.v.Confirm(f.ctx, out.Confirmation.Ticket); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.v.docs.Section(f.a.ID); ok {
		t.Error("section survived confirmation")
	}
}

func TestConfirmTickets(t *testing.T) {
	f := newFixture(t)
	first, _ := f.v.DeleteLink(f.ctx, f.a.ID, f.links["a1"].ID)
	second, _ := f.v.DeleteLink(f.ctx, f.a.ID, f.links["a2"].ID)

	if _, err := f.v.Confirm(f.ctx, first.Confirmation.Ticket); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale ticket err = %v", err)
	}
	if conf, ok := f.v.PendingConfirmation(); !ok || conf.Op != "delete_link" {
		t.Errorf("pending = %+v ok=%v", conf, ok)
	}
	if !f.v.Dismiss() {
		t.Error("Dismiss reported nothing pending")
	}
	if _, err := f.v.Confirm(f.ctx, second.Confirmation.Ticket); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("dismissed ticket err = %v", err)
	}
	if len(f.v.docs.LinkIDs()) != 4 {
		t.Error("unconfirmed delete ran")
	}
}

func TestExportResumesAfterUnlock(t *testing.T) {
	f := newFixture(t)
	f.lock(t)
	out, _ := f.v.Export(f.ctx)
	if out.Status != StatusAuthRequired {
		t.Fatalf("status = %s", out.Status)
	}
	out, err := f.v.Unlock(f.ctx, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	res := out.Result.(ExportResult)
	if res.Filename != "vault_backup.json" || len(res.Data) == 0 || res.Checksum == "" {
		t.Errorf("export = %+v", res)
	}
}

func TestImportValidatesBeforePrompt(t *testing.T) {
	f := newFixture(t)
	f.lock(t)
	before := f.v.View().Document

	if _, err := f.v.Import(f.ctx, []byte(`{"foo":1}`), ""); !errors.Is(err, apperr.ErrMalformedImport) {
		t.Fatalf("err = %v", err)
	}
	if f.rec.kinds()[ChangeAuthPrompt] != 0 {
		t.Error("malformed import asked for a password")
	}
	if after := f.v.View().Document; len(after.Groups) != len(before.Groups) {
		t.Error("document changed")
	}
}

func TestImportIfMatch(t *testing.T) {
	f := newFixture(t)
	f.v.ToggleSelection()
	payload := []byte(`{"groups":[{"id":"x","name":"T","emoji":"📁","color":"#fff","links":[]}]}`)

	if _, err := f.v.Import(f.ctx, payload, `"stale"`); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale If-Match err = %v", err)
	}
	out, err := f.v.Import(f.ctx, payload, `"`+f.v.View().Checksum+`"`)
	if err != nil {
		t.Fatal(err)
	}
	doc := out.Result.(models.Document)
	if len(doc.Groups) != 1 || doc.Groups[0].IsOpen {
		t.Errorf("imported = %+v", doc)
	}
	if f.v.Mode() != ModeNone {
		t.Error("import should leave selection mode")
	}
}

func TestClearNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	out, _ := f.v.Clear(f.ctx)
	if out.Status != StatusConfirmRequired || out.Confirmation.Op != "clear" {
		t.Fatalf("out = %+v", out)
	}
	if _, err := f.v.Confirm(f.ctx, out.Confirmation.Ticket); err != nil {
		t.Fatal(err)
	}
	if groups := f.v.View().Document.Groups; len(groups) != 0 {
		t.Errorf("groups = %d", len(groups))
	}
}

func TestStorageFailureKeepsChangeAndReportsIt(t *testing.T) {
	p := testutil.NewFlaky()
	f := newFixtureOn(t, p)
	p.FailWrites(true)

	out, err := f.v.AddLink(f.ctx, f.a.ID, document.LinkInput{URL: "offline.example"})
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("err = %v", err)
	}
	if out.Status != StatusDone {
		t.Errorf("status = %s", out.Status)
	}
	if n := len(f.v.docs.LinkIDs()); n != 5 {
		t.Errorf("links = %d, want in-memory change kept", n)
	}
	if apperr.Message(err) != "changes could not be saved" {
		t.Errorf("message = %q", apperr.Message(err))
	}
}

func TestReloadPrunesSelection(t *testing.T) {
	p := storage.NewMemory()
	f := newFixtureOn(t, p)
	_, _ = f.v.SelectAll(f.ctx)

	external := `{"groups":[{"id":"s","name":"S","links":[{"id":"` + f.links["a1"].ID + `","name":"a1","url":"https://a1.example"}]}]}`
	_ = p.Set(f.ctx, document.DefaultKey, []byte(external))
	if err := f.v.Reload(f.ctx); err != nil {
		t.Fatal(err)
	}
	sel := f.v.View().Selected
	if len(sel) != 1 || sel[0] != f.links["a1"].ID {
		t.Errorf("selected = %v", sel)
	}
	if f.rec.kinds()[ChangeDocument] == 0 {
		t.Error("reload not reported")
	}
}

func TestNotifierSeesMutations(t *testing.T) {
	f := newFixture(t)
	kinds := f.rec.kinds()
	if kinds[ChangeSectionCreated] != 2 || kinds[ChangeLinkCreated] != 4 {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestVault_StateSurvivesRestartOnSQLite(t *testing.T) {
	ctx := context.Background()
	db := testutil.TestSQLite(t)

	v, _ := newVault(t, db)
	sec := v.View().Document.Groups[0]
	if _, err := v.SetPassword(ctx, "", "hunter2", "hunter2"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.AddLink(ctx, sec.ID, document.LinkInput{URL: "go.dev"}); err != nil {
		t.Fatal(err)
	}

	restarted, _ := newVault(t, db)
	view := restarted.View()
	if view.Auth != auth.Locked {
		t.Errorf("auth after restart = %v, want locked", view.Auth)
	}
	if n := len(view.Document.Groups[0].Links); n != 3 {
		t.Errorf("links after restart = %d, want 3", n)
	}
	if view.Checksum != v.View().Checksum {
		t.Error("checksum differs after restart")
	}
}

func TestUnlockWithoutPendingUnlocks(t *testing.T) {
	f := newFixture(t)
	f.lock(t)

	if _, err := f.v.Unlock(f.ctx, "wrong"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("wrong password err = %v", err)
	}
	if f.v.AuthState() != auth.Locked {
		t.Fatalf("state = %s after wrong password", f.v.AuthState())
	}
	out, err := f.v.Unlock(f.ctx, "hunter2")
	if err != nil || out.Status != StatusDone {
		t.Fatalf("unlock = %+v err = %v", out, err)
	}
	if f.v.AuthState() != auth.Unlocked {
		t.Errorf("state = %s, want unlocked", f.v.AuthState())
	}
	out, _ = f.v.RenameSection(f.ctx, f.a.ID, document.SectionInput{Name: "Direct"})
	if out.Status != StatusDone {
		t.Errorf("rename after unlock = %s", out.Status)
	}
}

func TestUnlockReturnsOutcomeOfResumedRequest(t *testing.T) {
	f := newFixture(t)
	f.lock(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.v.RenameSection(f.ctx, f.a.ID, document.SectionInput{Name: string(rune('A' + i))})
		}()
	}
	wg.Wait()

	out, err := f.v.Unlock(f.ctx, "hunter2")
	if err != nil || out.Status != StatusDone {
		t.Fatalf("unlock = %+v err = %v", out, err)
	}
	sec, _ := f.v.docs.Section(f.a.ID)
	if got, ok := out.Result.(models.Section); !ok || got.Name != sec.Name {
		t.Errorf("result = %+v, stored name %q", out.Result, sec.Name)
	}
}

func TestUnlockRacingGatedRequestKeepsOutcome(t *testing.T) {
	f := newFixture(t)
	f.lock(t)

	for i := range 50 {
		f.v.Lock()
		var renamed, unlocked Outcome
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			renamed, _ = f.v.RenameSection(f.ctx, f.a.ID, document.SectionInput{Name: string(rune('a' + i%26))})
		}()
		go func() {
			defer wg.Done()
			unlocked, _ = f.v.Unlock(f.ctx, "hunter2")
		}()
		wg.Wait()

		switch renamed.Status {
		case StatusAuthRequired:
			if _, ok := unlocked.Result.(models.Section); !ok {
				t.Fatalf("round %d: parked rename resumed but unlock returned %+v", i, unlocked)
			}
		case StatusDone:
			if unlocked.Result != nil {
				t.Fatalf("round %d: unlock returned %+v for a rename that ran directly", i, unlocked)
			}
		default:
			t.Fatalf("round %d: rename status %s", i, renamed.Status)
		}
		if f.v.View().PendingAuth != "" {
			t.Fatalf("round %d: request left pending", i)
		}
	}
}
