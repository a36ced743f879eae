// Package models defines the domain types for linkvault.
package models

// Link is a bookmark entry owned by exactly one Section.
type Link struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Section is a named, colored, collapsible group owning an ordered list of links.
type Section struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji"`
	Color  string `json:"color"`
	IsOpen bool   `json:"isOpen"`
	Links  []Link `json:"links"`
}

// Document is the root aggregate persisted under the document key.
type Document struct {
	Groups []Section `json:"groups"`
}

// LinkRef addresses a link through its owning section.
type LinkRef struct {
	SectionID string `json:"sectionId"`
	LinkID    string `json:"linkId"`
}

// Clone returns a deep copy of d.
func (d *Document) Clone() Document {
	out := Document{Groups: make([]Section, len(d.Groups))}
	for i, s := range d.Groups {
		s.Links = append(make([]Link, 0, len(s.Links)), s.Links...)
		out.Groups[i] = s
	}
	return out
}

// SectionIndex returns the position of the section with the given id, or -1.
func (d *Document) SectionIndex(id string) int {
	for i := range d.Groups {
		if d.Groups[i].ID == id {
			return i
		}
	}
	return -1
}

// Section returns a pointer into d for the section with the given id.
func (d *Document) Section(id string) *Section {
	if i := d.SectionIndex(id); i >= 0 {
		return &d.Groups[i]
	}
	return nil
}

// LocateLink scans every section for linkID and returns the owning section index
// and the link index within it.
func (d *Document) LocateLink(linkID string) (int, int, bool) {
	for si := range d.Groups {
		if li := d.Groups[si].LinkIndex(linkID); li >= 0 {
			return si, li, true
		}
	}
	return -1, -1, false
}

// LinkIDs returns every link id in document order.
func (d *Document) LinkIDs() []string {
	var ids []string
	for _, s := range d.Groups {
		for _, l := range s.Links {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// LinkCount returns the number of links across all sections.
func (d *Document) LinkCount() int {
	n := 0
	for _, s := range d.Groups {
		n += len(s.Links)
	}
	return n
}

// LinkIndex returns the position of linkID within s, or -1.
func (s *Section) LinkIndex(linkID string) int {
	for i := range s.Links {
		if s.Links[i].ID == linkID {
			return i
		}
	}
	return -1
}
