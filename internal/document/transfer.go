package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/ident"
	"github.com/starford/linkvault/internal/models"
)

// ExportFilename is the suggested name for a downloaded backup.
const ExportFilename = "vault_backup.json"

type wireSection struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Emoji  string        `json:"emoji"`
	Color  string        `json:"color"`
	IsOpen *bool         `json:"isOpen"`
	Links  []models.Link `json:"links"`
}

// decodeDocument parses an exported document. Sections without isOpen are
// collapsed, blank ids are filled from newID and link urls are made absolute.
// Duplicate ids are rejected.
func decodeDocument(data []byte, newID ident.Generator) (models.Document, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil || root == nil {
		return models.Document{}, apperr.MalformedImport("expected a JSON object")
	}
	raw, ok := root["groups"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return models.Document{}, apperr.MalformedImport(`missing "groups" array`)
	}
	var sections []wireSection
	if err := json.Unmarshal(raw, &sections); err != nil {
		return models.Document{}, apperr.MalformedImport(fmt.Sprintf("groups: %v", err))
	}

	seen := make(map[string]bool)
	claim := func(id string) (string, error) {
		if id == "" {
			id = newID()
		}
		if seen[id] {
			return "", apperr.MalformedImport(fmt.Sprintf("duplicate id %q", id))
		}
		seen[id] = true
		return id, nil
	}

	doc := models.Document{Groups: make([]models.Section, 0, len(sections))}
	for _, ws := range sections {
		id, err := claim(ws.ID)
		if err != nil {
			return models.Document{}, err
		}
		sec := models.Section{
			ID:     id,
			Name:   ws.Name,
			Emoji:  ws.Emoji,
			Color:  ws.Color,
			IsOpen: ws.IsOpen != nil && *ws.IsOpen,
			Links:  make([]models.Link, 0, len(ws.Links)),
		}
		if sec.Emoji == "" {
			sec.Emoji = DefaultEmoji
		}
		if sec.Color == "" {
			sec.Color = DefaultColor
		}
		for _, l := range ws.Links {
			lid, err := claim(l.ID)
			if err != nil {
				return models.Document{}, err
			}
			l.ID = lid
			l.URL = NormalizeURL(l.URL)
			if l.Name == "" {
				l.Name = Domain(l.URL)
			}
			sec.Links = append(sec.Links, l)
		}
		doc.Groups = append(doc.Groups, sec)
	}
	return doc, nil
}

// Validate parses data as an import payload without applying it.
func (s *Store) Validate(data []byte) (models.Document, error) {
	return decodeDocument(data, s.newID)
}

// Import replaces the whole document with the one encoded in data. A rejected
// payload leaves the current document untouched.
func (s *Store) Import(ctx context.Context, data []byte) (models.Document, error) {
	doc, err := decodeDocument(data, s.newID)
	if err != nil {
		return models.Document{}, err
	}
	s.doc = doc
	return s.doc.Clone(), s.Persist(ctx)
}

// Export returns the document as indented JSON.
func (s *Store) Export() ([]byte, error) {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Clear replaces the document with one that has no sections.
func (s *Store) Clear(ctx context.Context) error {
	s.doc = models.Document{Groups: []models.Section{}}
	return s.Persist(ctx)
}
