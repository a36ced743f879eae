package document

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/storage"
)

func TestImportBackfillsIsOpen(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	payload := `{"groups":[{"id":"x","name":"T","emoji":"📁","color":"#fff","links":[]}]}`

	doc, err := s.Import(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(doc.Groups) != 1 || doc.Groups[0].ID != "x" {
		t.Fatalf("document not replaced: %+v", doc)
	}
	if doc.Groups[0].IsOpen {
		t.Error("missing isOpen should import as false")
	}
	if got, _ := s.Section("x"); got.IsOpen {
		t.Error("store section isOpen = true")
	}
}

func TestImportRejectsMissingGroups(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	before := s.Document()
	sum := s.Checksum()

	for _, payload := range []string{`{"foo":1}`, `not json`, `[]`, `null`, `{"groups":{}}`, `{"groups":null}`} {
		_, err := s.Import(context.Background(), []byte(payload))
		if !errors.Is(err, apperr.ErrMalformedImport) {
			t.Errorf("Import(%s) err = %v, want ErrMalformedImport", payload, err)
		}
	}
	if !reflect.DeepEqual(before, s.Document()) {
		t.Error("rejected import changed the document")
	}
	if s.Checksum() != sum {
		t.Error("rejected import was persisted")
	}
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	payload := `{"groups":[
		{"id":"s","name":"A","links":[{"id":"dup","name":"a","url":"https://a"}]},
		{"id":"t","name":"B","links":[{"id":"dup","name":"b","url":"https://b"}]}
	]}`
	if _, err := s.Import(context.Background(), []byte(payload)); !errors.Is(err, apperr.ErrMalformedImport) {
		t.Errorf("err = %v, want ErrMalformedImport", err)
	}
}

func TestImportFillsMissingFields(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	payload := `{"groups":[{"name":"Bare","isOpen":true,"links":[{"url":"example.org"}]}]}`
	doc, err := s.Import(context.Background(), []byte(payload))
	if err != nil {
		t.Fatal(err)
	}
	g := doc.Groups[0]
	if g.ID == "" || g.Links[0].ID == "" {
		t.Error("ids were not assigned")
	}
	if !g.IsOpen {
		t.Error("explicit isOpen lost")
	}
	if g.Emoji != DefaultEmoji || g.Color != DefaultColor {
		t.Errorf("defaults = %q %q", g.Emoji, g.Color)
	}
	if l := g.Links[0]; l.URL != "https://example.org" || l.Name != "example.org" {
		t.Errorf("link = %+v", l)
	}
}

func TestExportIsIndentedAndReimportable(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	data, err := s.Export()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"groups\"") {
		t.Errorf("export not indented:\n%s", data)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}

	other := emptyStore(t)
	doc, err := other.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if !reflect.DeepEqual(doc, s.Document()) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", doc, s.Document())
	}
}

func TestClear(t *testing.T) {
	p := storage.NewMemory()
	s := newStore(t, p)
	if err := s.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, _, _ := p.Get(context.Background(), DefaultKey)
	if string(data) != `{"groups":[]}` {
		t.Errorf("stored = %s", data)
	}
}
