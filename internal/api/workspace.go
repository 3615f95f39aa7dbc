package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/editor"
)

// ChangeFunc receives the state transitions of every session in a workspace.
type ChangeFunc func(sessionID string, c editor.Change)

// Entry is one live editing session. A Session does no locking of its own,
// so every access goes through Do.
type Entry struct {
	ID string

	mu      sync.Mutex
	session *editor.Session
	// documentID and checksum bind the session to the saved document it
	// was loaded from or last saved to.
	documentID string
	checksum   string
}

// Do runs fn with exclusive access to the session.
func (e *Entry) Do(fn func(s *editor.Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Binding returns the saved document the session is bound to.
func (e *Entry) Binding() (documentID, checksum string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentID, e.checksum
}

// bind must be called with e.mu held.
func (e *Entry) bind(documentID, checksum string) {
	e.documentID, e.checksum = documentID, checksum
}

// Workspace owns the live sessions of a server process.
type Workspace struct {
	opts     []editor.Option
	onChange ChangeFunc
	max      int

	mu       sync.RWMutex
	sessions map[string]*Entry
}

// NewWorkspace creates a workspace whose sessions are built with opts.
// max bounds the number of live sessions (0 means unbounded).
func NewWorkspace(max int, onChange ChangeFunc, opts ...editor.Option) *Workspace {
	return &Workspace{
		opts:     opts,
		onChange: onChange,
		max:      max,
		sessions: make(map[string]*Entry),
	}
}

// Create opens a new session with a fresh document.
func (w *Workspace) Create(extra ...editor.Option) (*Entry, error) {
	id := uuid.NewString()
	opts := append([]editor.Option{}, w.opts...)
	opts = append(opts, extra...)
	if w.onChange != nil {
		opts = append(opts, editor.WithObserver(func(c editor.Change) { w.onChange(id, c) }))
	}
	e := &Entry{ID: id, session: editor.New(opts...)}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.max > 0 && len(w.sessions) >= w.max {
		return nil, fmt.Errorf("%w: session limit %d reached", apperr.ErrConflict, w.max)
	}
	w.sessions[id] = e
	return e, nil
}

// Get returns the session with id.
func (w *Workspace) Get(id string) (*Entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", apperr.ErrNotFound, id)
	}
	return e, nil
}

// Close discards the session with id.
func (w *Workspace) Close(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sessions[id]; !ok {
		return false
	}
	delete(w.sessions, id)
	return true
}

// IDs returns the live session ids in sorted order.
func (w *Workspace) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.sessions))
	for id := range w.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
