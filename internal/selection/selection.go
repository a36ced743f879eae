// Package selection tracks the set of link ids picked for a batch action.
package selection

import (
	"context"
	"slices"
)

// Source exposes the document to SelectAll.
type Source interface {
	LinkIDs() []string
	OpenAll(ctx context.Context) error
}

// Manager holds the selection mode flag and the selected ids. The zero value
// is an inactive, empty manager.
type Manager struct {
	active bool
	ids    map[string]struct{}
	order  []string
}

// Enter activates selection mode with an empty set.
func (m *Manager) Enter() {
	m.Clear()
	m.active = true
}

// Exit leaves selection mode and clears the set.
func (m *Manager) Exit() {
	m.Clear()
	m.active = false
}

// Active reports whether selection mode is on.
func (m *Manager) Active() bool { return m.active }

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (m *Manager) Toggle(id string) bool {
	if _, ok := m.ids[id]; ok {
		m.Forget(id)
		return false
	}
	if m.ids == nil {
		m.ids = make(map[string]struct{})
	}
	m.ids[id] = struct{}{}
	m.order = append(m.order, id)
	return true
}

// SelectAll adds every link of the document and opens every section so the
// selected links are visible.
func (m *Manager) SelectAll(ctx context.Context, src Source) error {
	for _, id := range src.LinkIDs() {
		if !m.Contains(id) {
			m.Toggle(id)
		}
	}
	return src.OpenAll(ctx)
}

// Count returns the number of selected ids.
func (m *Manager) Count() int { return len(m.ids) }

// Contains reports whether id is selected.
func (m *Manager) Contains(id string) bool {
	_, ok := m.ids[id]
	return ok
}

// IDs returns the selected ids in the order they were selected.
func (m *Manager) IDs() []string { return slices.Clone(m.order) }

// Forget drops ids from the set, e.g. after the links were deleted or moved.
func (m *Manager) Forget(ids ...string) {
	if len(m.ids) == 0 {
		return
	}
	drop := false
	for _, id := range ids {
		if _, ok := m.ids[id]; ok {
			delete(m.ids, id)
			drop = true
		}
	}
	if drop {
		m.order = slices.DeleteFunc(m.order, func(id string) bool {
			_, ok := m.ids[id]
			return !ok
		})
	}
}

// Clear empties the set without leaving selection mode.
func (m *Manager) Clear() {
	m.ids = nil
	m.order = nil
}
