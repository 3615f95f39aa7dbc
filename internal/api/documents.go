package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postframe/internal/docservice"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/imagesrc"
)

const (
	defaultOutlineSize = 100
	defaultPreviewSize = 128
	maxPreviewSize     = 1024
)

// SaveSession handles POST /api/sessions/{sid}/save.
//
//	@Summary		Save the session to the document store
//	@Description	If-Match carries the checksum the client last saw. Without it,
//	@Description	saving to the bound document checks the checksum it was bound with.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header		string		false	"Expected checksum"
//	@Param			body		body		SaveRequest	false	"Target document"
//	@Success		200			{object}	SaveResponse
//	@Success		201			{object}	SaveResponse
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sid}/save [post]
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	var resp SaveResponse
	err := e.Do(func(s *editor.Session) error {
		target := req.DocumentID
		if target == "" {
			target = e.documentID
		}
		if ifMatch == "" && target != "" && target == e.documentID {
			ifMatch = e.checksum
		}
		saved, err := h.docs.Save(r.Context(), target, req.Title, s.Export(), ifMatch)
		if err != nil {
			return err
		}
		e.bind(saved.ID, saved.Checksum)
		resp = SaveResponse{Saved: saved, Session: stateOf(e, s)}
		return nil
	})
	if err != nil {
		writeError(w, "save session", err)
		return
	}

	status, kind := http.StatusOK, "updated"
	if resp.Saved.Created {
		status, kind = http.StatusCreated, "created"
	}
	if h.events != nil {
		h.events.PublishDocumentEvent(kind, resp.Saved.ID)
	}
	w.Header().Set("ETag", `"`+resp.Saved.Checksum+`"`)
	writeJSON(w, status, resp)
}

// LoadDocument handles POST /api/sessions/{sid}/load. The session history
// restarts at the loaded document.
func (h *Handler) LoadDocument(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	loaded, err := h.docs.Load(r.Context(), req.DocumentID)
	if err != nil {
		writeError(w, "load document", err)
		return
	}
	var state SessionState
	err = e.Do(func(s *editor.Session) error {
		if err := s.Load(loaded.Payload); err != nil {
			return err
		}
		e.bind(loaded.ID, loaded.Checksum)
		state = stateOf(e, s)
		return nil
	})
	if err != nil {
		writeError(w, "load document", err)
		return
	}
	w.Header().Set("ETag", `"`+loaded.Checksum+`"`)
	writeJSON(w, http.StatusOK, state)
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List saved documents
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort order"	Enums(updated, title)
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	docs, total, err := h.docs.List(r.Context(), limit, offset, q.Get("sort"))
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: total})
}

// GetDocument handles GET /api/documents/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := docservice.ValidateID(id); err != nil {
		writeError(w, "get document", err)
		return
	}
	summary, err := h.docs.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	assets, err := h.docs.Assets(r.Context(), id)
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	w.Header().Set("ETag", `"`+summary.Checksum+`"`)
	writeJSON(w, http.StatusOK, DocumentDetail{DocumentSummary: *summary, Assets: assets})
}

// DeleteDocument handles DELETE /api/documents/{id}. Sessions bound to the
// document keep their state; their next save recreates it.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.docs.Delete(r.Context(), id); err != nil {
		writeError(w, "delete document", err)
		return
	}
	if h.events != nil {
		h.events.PublishDocumentEvent("deleted", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search?q=...
//
//	@Summary		Full-text search over document titles and text
//	@Tags			documents
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.docs.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// ListMasks handles GET /api/masks.
func (h *Handler) ListMasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MaskListResponse{Masks: h.catalogue.IDs()})
}

// MaskOutline handles GET /api/masks/{id}/outline?width=&height=. Unknown
// masks fall back to the circle; Mask names the one used.
func (h *Handler) MaskOutline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, _ := strconv.ParseFloat(q.Get("width"), 64)
	height, _ := strconv.ParseFloat(q.Get("height"), 64)
	if width <= 0 {
		width = defaultOutlineSize
	}
	if height <= 0 {
		height = defaultOutlineSize
	}
	o, used := h.catalogue.Outline(chi.URLParam(r, "id"), width, height)
	writeJSON(w, http.StatusOK, OutlineResponse{Mask: used, Path: o.SVGPath()})
}

// MaskPreview handles GET /api/masks/{id}/preview.png?size=.
func (h *Handler) MaskPreview(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = defaultPreviewSize
	}
	if size > maxPreviewSize {
		size = maxPreviewSize
	}
	img, used := h.catalogue.Preview(chi.URLParam(r, "id"), size)
	data, err := imagesrc.EncodePNG(img)
	if err != nil {
		writeError(w, "mask preview", err)
		return
	}
	w.Header().Set("X-Mask", used)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeBlob(w, "image/png", data)
}
