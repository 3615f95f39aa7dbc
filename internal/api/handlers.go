package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/docservice"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/effects"
	"github.com/starford/postframe/internal/masks"
	"github.com/starford/postframe/internal/models"
	"github.com/starford/postframe/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	ws        *Workspace
	docs      *docservice.Service
	catalogue *masks.Catalogue
	events    *sse.Broker
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(ws *Workspace, docs *docservice.Service, catalogue *masks.Catalogue, events *sse.Broker) *Handler {
	if catalogue == nil {
		catalogue = masks.NewCatalogue()
	}
	return &Handler{ws: ws, docs: docs, catalogue: catalogue, events: events}
}

func errElement(id string) error {
	return fmt.Errorf("%w: element %s", apperr.ErrNotFound, id)
}

// entry resolves the {sid} URL parameter, answering 404 itself.
func (h *Handler) entry(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	e, err := h.ws.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, "session lookup", err)
		return nil, false
	}
	return e, true
}

// stateOf must be called with e.mu held.
func stateOf(e *Entry, s *editor.Session) SessionState {
	files := s.Files()
	infos := make([]FileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, FileInfo{Name: f.Name, MimeType: f.MimeType, Size: len(f.Blob)})
	}
	return SessionState{
		ID:         e.ID,
		Document:   s.Document(),
		Files:      infos,
		CanUndo:    s.CanUndo(),
		CanRedo:    s.CanRedo(),
		DocumentID: e.documentID,
		Checksum:   e.checksum,
	}
}

// apply runs fn on the session of the request and answers with the new
// session state. A range warning from fn is reported, not failed.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, op string, status int, fn func(s *editor.Session, st *SessionState) error) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	var state SessionState
	err := e.Do(func(s *editor.Session) error {
		var extra SessionState
		err := fn(s, &extra)
		if err != nil && !errors.Is(err, apperr.ErrRangeWarning) {
			return err
		}
		state = stateOf(e, s)
		state.Element = extra.Element
		if err != nil {
			state.Warning = err.Error()
		}
		return nil
	})
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, status, state)
}

// ListSessions handles GET /api/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.ws.IDs()})
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Open an editing session, optionally from a saved document
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSessionRequest	false	"Canvas size or document to load"
//	@Success		201		{object}	SessionState
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var opts []editor.Option
	if req.Width > 0 && req.Height > 0 {
		opts = append(opts, editor.WithCanvas(req.Width, req.Height))
	}

	var loaded *docservice.Loaded
	if req.DocumentID != "" {
		var err error
		if loaded, err = h.docs.Load(r.Context(), req.DocumentID); err != nil {
			writeError(w, "load document", err)
			return
		}
	}

	e, err := h.ws.Create(opts...)
	if err != nil {
		writeError(w, "create session", err)
		return
	}

	var state SessionState
	err = e.Do(func(s *editor.Session) error {
		if loaded != nil {
			if err := s.Load(loaded.Payload); err != nil {
				return err
			}
			e.bind(loaded.ID, loaded.Checksum)
		}
		state = stateOf(e, s)
		return nil
	})
	if err != nil {
		h.ws.Close(e.ID)
		writeError(w, "create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// GetSession handles GET /api/sessions/{sid}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "get session", http.StatusOK, func(*editor.Session, *SessionState) error { return nil })
}

// CloseSession handles DELETE /api/sessions/{sid}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !h.ws.Close(chi.URLParam(r, "sid")) {
		writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddElement handles POST /api/sessions/{sid}/elements.
//
//	@Summary		Add a text, image or shape element
//	@Tags			elements
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Element	true	"Partial element; id, zIndex and flags are filled in"
//	@Success		201		{object}	SessionState
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sid}/elements [post]
func (h *Handler) AddElement(w http.ResponseWriter, r *http.Request) {
	var req models.Element
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, "add element", http.StatusCreated, func(s *editor.Session, st *SessionState) error {
		el, err := s.AddElement(req)
		if err != nil {
			return err
		}
		st.Element = &el
		return nil
	})
}

// AddShape handles POST /api/sessions/{sid}/shapes.
func (h *Handler) AddShape(w http.ResponseWriter, r *http.Request) {
	var req ShapeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, "add shape", http.StatusCreated, func(s *editor.Session, st *SessionState) error {
		el, err := s.AddShape(req.Mask, req.Position, req.Size, req.Styles)
		if err != nil {
			return err
		}
		st.Element = &el
		return nil
	})
}

// UpdateElement handles PATCH /api/sessions/{sid}/elements/{eid}.
//
//	@Summary		Shallow-merge a partial update into an element
//	@Tags			elements
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateElementRequest	true	"Fields to change"
//	@Success		200		{object}	SessionState
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sid}/elements/{eid} [patch]
func (h *Handler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	var req UpdateElementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "update element", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		if !s.UpdateElement(id, req) {
			return errElement(id)
		}
		return nil
	})
}

// RemoveElement handles DELETE /api/sessions/{sid}/elements/{eid}.
func (h *Handler) RemoveElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "remove element", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		if !s.RemoveElement(id) {
			return errElement(id)
		}
		return nil
	})
}

// DuplicateElement handles POST /api/sessions/{sid}/elements/{eid}/duplicate.
func (h *Handler) DuplicateElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "duplicate element", http.StatusCreated, func(s *editor.Session, st *SessionState) error {
		el, ok := s.DuplicateElement(id)
		if !ok {
			return errElement(id)
		}
		st.Element = &el
		return nil
	})
}

// SetVisibility handles PUT /api/sessions/{sid}/elements/{eid}/visibility.
func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "set visibility", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		if !s.SetElementVisibility(id, req.Visible) {
			return errElement(id)
		}
		return nil
	})
}

// SetLock handles PUT /api/sessions/{sid}/elements/{eid}/lock.
func (h *Handler) SetLock(w http.ResponseWriter, r *http.Request) {
	var req LockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "set lock", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		if !s.SetElementLock(id, req.Locked) {
			return errElement(id)
		}
		return nil
	})
}

// SetEffect handles PUT /api/sessions/{sid}/elements/{eid}/effects/{name}.
//
//	@Summary		Edit one effect of an element
//	@Description	Out-of-range parameters are clamped and reported in "warning".
//	@Tags			effects
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Effect name"	Enums(blur, brightness, sepia, grayscale, border, cornerRadius, shadow)
//	@Param			body	body		EffectRequest	true	"Changes"
//	@Success		200		{object}	SessionState
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sid}/elements/{eid}/effects/{name} [put]
func (h *Handler) SetEffect(w http.ResponseWriter, r *http.Request) {
	var req EffectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "eid")
	name := effects.Name(chi.URLParam(r, "name"))
	h.apply(w, r, "set effect", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		var warning error
		keep := func(err error) error {
			if errors.Is(err, apperr.ErrRangeWarning) {
				warning = err
				return nil
			}
			return err
		}
		params := make([]string, 0, len(req.Params))
		for param := range req.Params {
			params = append(params, param)
		}
		sort.Strings(params)
		for _, param := range params {
			if err := keep(s.SetEffectParam(id, name, param, req.Params[param])); err != nil {
				return err
			}
		}
		if req.Color != nil {
			if err := s.SetEffectColor(id, name, *req.Color); err != nil {
				return err
			}
		}
		if req.Enabled != nil {
			if err := s.ToggleEffect(id, name, *req.Enabled); err != nil {
				return err
			}
		}
		return warning
	})
}

// ApplyMask handles PUT /api/sessions/{sid}/elements/{eid}/mask.
func (h *Handler) ApplyMask(w http.ResponseWriter, r *http.Request) {
	var req MaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "apply mask", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		ok, err := s.ApplyMask(r.Context(), id, req.Mask)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: image element %s", apperr.ErrNotFound, id)
		}
		return nil
	})
}

// RemoveMask handles DELETE /api/sessions/{sid}/elements/{eid}/mask.
func (h *Handler) RemoveMask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eid")
	h.apply(w, r, "remove mask", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		if !s.RemoveMask(id) {
			return fmt.Errorf("%w: masked image element %s", apperr.ErrNotFound, id)
		}
		return nil
	})
}

// Undo handles POST /api/sessions/{sid}/undo. With nothing to undo the
// state is returned unchanged.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "undo", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		s.Undo()
		return nil
	})
}

// Redo handles POST /api/sessions/{sid}/redo.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "redo", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		s.Redo()
		return nil
	})
}

// Clear handles POST /api/sessions/{sid}/clear.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "clear", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		s.ClearEditor()
		return nil
	})
}

// Render handles GET /api/sessions/{sid}/render.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	var items []editor.RenderItem
	_ = e.Do(func(s *editor.Session) error {
		items = s.RenderList()
		return nil
	})
	if items == nil {
		items = []editor.RenderItem{}
	}
	writeJSON(w, http.StatusOK, RenderResponse{Items: items})
}
