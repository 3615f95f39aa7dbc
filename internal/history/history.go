// Package history implements linear snapshot undo/redo.
//
// The Manager stores whole-document snapshots: past, present and future.
// Every entry is deep-copied on the way in and on the way out, so mutating a
// document after pushing it never alters the stored entry.
package history

import (
	"slices"

	"github.com/starford/postframe/internal/models"
)

// DefaultLimit is the number of past entries an editor session keeps unless
// configured otherwise.
const DefaultLimit = 100

// Entry is a full snapshot of an editor session.
type Entry struct {
	Document models.Document
	Files    []models.AssetFile
}

// Clone returns a deep copy of e. Asset blobs are immutable once registered
// and are shared between copies.
func (e Entry) Clone() Entry {
	return Entry{
		Document: e.Document.Clone(),
		Files:    slices.Clone(e.Files),
	}
}

// Manager is a {past, present, future} state machine.
type Manager struct {
	past    []Entry
	present Entry
	future  []Entry
	limit   int
}

// New returns a manager whose present is initial, with empty past and future.
// A limit <= 0 keeps every entry.
func New(initial Entry, limit int) *Manager {
	return &Manager{present: initial.Clone(), limit: limit}
}

// Present returns a copy of the current entry.
func (m *Manager) Present() Entry {
	return m.present.Clone()
}

// Push makes e the present, moves the old present onto past and discards
// the redo branch. When past exceeds the limit the oldest entry is dropped.
func (m *Manager) Push(e Entry) {
	m.past = append(m.past, m.present)
	if m.limit > 0 && len(m.past) > m.limit {
		m.past = slices.Delete(m.past, 0, len(m.past)-m.limit)
	}
	m.present = e.Clone()
	m.future = nil
}

// Undo steps back one entry and returns the new present. It reports false,
// changing nothing, when there is nothing to undo.
func (m *Manager) Undo() (Entry, bool) {
	if len(m.past) == 0 {
		return Entry{}, false
	}
	last := len(m.past) - 1
	m.future = slices.Insert(m.future, 0, m.present)
	m.present = m.past[last]
	m.past = m.past[:last]
	return m.present.Clone(), true
}

// Redo steps forward one entry and returns the new present. It reports
// false, changing nothing, when there is nothing to redo.
func (m *Manager) Redo() (Entry, bool) {
	if len(m.future) == 0 {
		return Entry{}, false
	}
	m.past = append(m.past, m.present)
	m.present = m.future[0]
	m.future = m.future[1:]
	return m.present.Clone(), true
}

// Reset discards past and future and makes e the present.
func (m *Manager) Reset(e Entry) {
	m.past, m.future = nil, nil
	m.present = e.Clone()
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Depth returns the sizes of past and future.
func (m *Manager) Depth() (past, future int) {
	return len(m.past), len(m.future)
}
