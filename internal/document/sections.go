package document

import (
	"context"
	"slices"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/models"
)

// CreateSection appends a new open, empty section.
func (s *Store) CreateSection(ctx context.Context, in SectionInput) (models.Section, error) {
	in, err := in.normalize(DefaultEmoji, DefaultColor)
	if err != nil {
		return models.Section{}, err
	}
	sec := models.Section{
		ID:     s.newID(),
		Name:   in.Name,
		Emoji:  in.Emoji,
		Color:  in.Color,
		IsOpen: true,
		Links:  []models.Link{},
	}
	s.doc.Groups = append(s.doc.Groups, sec)
	return sec, s.Persist(ctx)
}

// RenameSection updates the name, emoji and color of a section in place.
// Blank emoji or color keep the current value.
func (s *Store) RenameSection(ctx context.Context, id string, in SectionInput) (models.Section, error) {
	sec := s.doc.Section(id)
	if sec == nil {
		return models.Section{}, apperr.NotFound("section", id)
	}
	in, err := in.normalize(sec.Emoji, sec.Color)
	if err != nil {
		return models.Section{}, err
	}
	sec.Name, sec.Emoji, sec.Color = in.Name, in.Emoji, in.Color
	return *sec, s.Persist(ctx)
}

// DeleteSection removes a section and every link it owns. It returns the ids
// of the removed links.
func (s *Store) DeleteSection(ctx context.Context, id string) ([]string, error) {
	i := s.doc.SectionIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("section", id)
	}
	removed := make([]string, 0, len(s.doc.Groups[i].Links))
	for _, l := range s.doc.Groups[i].Links {
		removed = append(removed, l.ID)
	}
	s.doc.Groups = slices.Delete(s.doc.Groups, i, i+1)
	return removed, s.Persist(ctx)
}

// SetSectionOpen expands or collapses a section.
func (s *Store) SetSectionOpen(ctx context.Context, id string, open bool) error {
	sec := s.doc.Section(id)
	if sec == nil {
		return apperr.NotFound("section", id)
	}
	if sec.IsOpen == open {
		return nil
	}
	sec.IsOpen = open
	return s.Persist(ctx)
}

// OpenAll expands every section.
func (s *Store) OpenAll(ctx context.Context) error {
	changed := false
	for i := range s.doc.Groups {
		if !s.doc.Groups[i].IsOpen {
			s.doc.Groups[i].IsOpen = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.Persist(ctx)
}

// MoveSection removes the source section from its index and re-inserts it at
// the index the destination occupied before the removal. Sections in between
// shift by one.
func (s *Store) MoveSection(ctx context.Context, srcID, dstID string) error {
	from := s.doc.SectionIndex(srcID)
	if from < 0 {
		return apperr.NotFound("section", srcID)
	}
	to := s.doc.SectionIndex(dstID)
	if to < 0 {
		return apperr.NotFound("section", dstID)
	}
	if from == to {
		return nil
	}
	moved := s.doc.Groups[from]
	s.doc.Groups = slices.Delete(s.doc.Groups, from, from+1)
	s.doc.Groups = slices.Insert(s.doc.Groups, to, moved)
	return s.Persist(ctx)
}
