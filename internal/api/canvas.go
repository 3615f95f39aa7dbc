package api

import (
	"net/http"

	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/models"
)

// SetCanvasSize handles PUT /api/sessions/{sid}/canvas/size.
func (h *Handler) SetCanvasSize(w http.ResponseWriter, r *http.Request) {
	var req CanvasSizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, "canvas size", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		return s.UpdateCanvasSize(req.Width, req.Height)
	})
}

// SetCanvasPreset handles PUT /api/sessions/{sid}/canvas/preset.
func (h *Handler) SetCanvasPreset(w http.ResponseWriter, r *http.Request) {
	var req CanvasPresetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, "canvas preset", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		return s.ApplyCanvasPreset(req.Ratio)
	})
}

// PatchCanvasStyles handles PATCH /api/sessions/{sid}/canvas/styles. An
// empty value deletes its key.
func (h *Handler) PatchCanvasStyles(w http.ResponseWriter, r *http.Request) {
	var req models.StyleMap
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, "canvas styles", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		s.UpdateCanvasStyles(req)
		return nil
	})
}

// SetBackground handles PUT /api/sessions/{sid}/background.
func (h *Handler) SetBackground(w http.ResponseWriter, r *http.Request) {
	var req BackgroundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, "set background", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		return s.SetBackground(req.Type, req.Value)
	})
}

// ClearBackground handles DELETE /api/sessions/{sid}/background.
func (h *Handler) ClearBackground(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "clear background", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		s.ClearBackground()
		return nil
	})
}

// Presets handles GET /api/presets.
func (h *Handler) Presets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"presets": editor.Presets()})
}
