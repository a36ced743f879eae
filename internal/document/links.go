package document

import (
	"context"
	"slices"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/models"
)

// AddLink appends a link to a section and opens the section.
func (s *Store) AddLink(ctx context.Context, sectionID string, in LinkInput) (models.Link, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Link{}, err
	}
	sec := s.doc.Section(sectionID)
	if sec == nil {
		return models.Link{}, apperr.Validation("choose an existing section")
	}
	l := models.Link{ID: s.newID(), Name: in.Name, URL: in.URL}
	sec.Links = append(sec.Links, l)
	sec.IsOpen = true
	return l, s.Persist(ctx)
}

// UpdateLink edits a link. When targetSectionID names a section other than the
// current owner, the link is detached and appended to the target.
// An empty targetSectionID keeps the current owner.
func (s *Store) UpdateLink(ctx context.Context, linkID string, in LinkInput, targetSectionID string) (models.Link, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Link{}, err
	}
	si, li, ok := s.doc.LocateLink(linkID)
	if !ok {
		return models.Link{}, apperr.NotFound("link", linkID)
	}
	owner := &s.doc.Groups[si]
	if targetSectionID == "" {
		targetSectionID = owner.ID
	}
	target := s.doc.Section(targetSectionID)
	if target == nil {
		return models.Link{}, apperr.Validation("choose an existing section")
	}

	l := owner.Links[li]
	l.URL, l.Name = in.URL, in.Name
	if target.ID == owner.ID {
		owner.Links[li] = l
	} else {
		owner.Links = slices.Delete(owner.Links, li, li+1)
		target.Links = append(target.Links, l)
	}
	return l, s.Persist(ctx)
}

// DeleteLink removes one link from the named section.
func (s *Store) DeleteLink(ctx context.Context, sectionID, linkID string) error {
	sec := s.doc.Section(sectionID)
	if sec == nil {
		return apperr.NotFound("section", sectionID)
	}
	li := sec.LinkIndex(linkID)
	if li < 0 {
		return apperr.NotFound("link", linkID)
	}
	sec.Links = slices.Delete(sec.Links, li, li+1)
	return s.Persist(ctx)
}

// DeleteLinks removes every link whose id is in ids, in a single pass over the
// document. It returns the number of links removed.
func (s *Store) DeleteLinks(ctx context.Context, ids []string) (int, error) {
	set := toSet(ids)
	removed := 0
	for i := range s.doc.Groups {
		before := len(s.doc.Groups[i].Links)
		s.doc.Groups[i].Links = slices.DeleteFunc(s.doc.Groups[i].Links, func(l models.Link) bool {
			return set[l.ID]
		})
		removed += before - len(s.doc.Groups[i].Links)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.Persist(ctx)
}

// MoveLinks detaches every link whose id is in ids and appends them, in
// document order, to the target section, which is opened.
func (s *Store) MoveLinks(ctx context.Context, ids []string, targetSectionID string) (int, error) {
	if s.doc.Section(targetSectionID) == nil {
		return 0, apperr.NotFound("section", targetSectionID)
	}
	set := toSet(ids)
	var moving []models.Link
	for i := range s.doc.Groups {
		s.doc.Groups[i].Links = slices.DeleteFunc(s.doc.Groups[i].Links, func(l models.Link) bool {
			if set[l.ID] {
				moving = append(moving, l)
				return true
			}
			return false
		})
	}
	target := s.doc.Section(targetSectionID)
	target.Links = append(target.Links, moving...)
	target.IsOpen = true
	return len(moving), s.Persist(ctx)
}

// SwapLinks exchanges the positions of two links, possibly across sections,
// and opens both owning sections.
func (s *Store) SwapLinks(ctx context.Context, a, b models.LinkRef) error {
	sa, ia, err := s.resolve(a)
	if err != nil {
		return err
	}
	sb, ib, err := s.resolve(b)
	if err != nil {
		return err
	}
	if sa == sb && ia == ib {
		return nil
	}
	ga, gb := &s.doc.Groups[sa], &s.doc.Groups[sb]
	ga.Links[ia], gb.Links[ib] = gb.Links[ib], ga.Links[ia]
	ga.IsOpen = true
	gb.IsOpen = true
	return s.Persist(ctx)
}

func (s *Store) resolve(ref models.LinkRef) (int, int, error) {
	si := s.doc.SectionIndex(ref.SectionID)
	if si < 0 {
		return 0, 0, apperr.NotFound("section", ref.SectionID)
	}
	li := s.doc.Groups[si].LinkIndex(ref.LinkID)
	if li < 0 {
		return 0, 0, apperr.NotFound("link", ref.LinkID)
	}
	return si, li, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
