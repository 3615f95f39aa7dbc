package api

import (
	"github.com/starford/postframe/internal/docservice"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/index"
	"github.com/starford/postframe/internal/models"
)

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	Width      int    `json:"width,omitempty" example:"1080"`
	Height     int    `json:"height,omitempty" example:"1350"`
	DocumentID string `json:"documentId,omitempty" example:"summer-sale"`
}

// FileInfo describes one asset file held by a session.
type FileInfo struct {
	Name     string `json:"name" example:"6f1c..." validate:"required"`
	MimeType string `json:"mimeType" example:"image/png" validate:"required"`
	Size     int    `json:"size" example:"12345" validate:"required"`
}

// SessionState is returned by every session endpoint.
type SessionState struct {
	ID         string          `json:"id" validate:"required"`
	Document   models.Document `json:"document" validate:"required"`
	Files      []FileInfo      `json:"files" validate:"required"`
	CanUndo    bool            `json:"canUndo"`
	CanRedo    bool            `json:"canRedo"`
	DocumentID string          `json:"documentId,omitempty"`
	Checksum   string          `json:"checksum,omitempty"`
	// Element is the element created by add and duplicate requests.
	Element *models.Element `json:"element,omitempty"`
	// Warning reports a clamped effect value; the edit was applied.
	Warning string `json:"warning,omitempty"`
}

// ShapeRequest is the body of POST /sessions/{sid}/shapes.
type ShapeRequest struct {
	Mask     string          `json:"mask" example:"star" validate:"required"`
	Position models.Position `json:"position"`
	Size     models.Size     `json:"size" validate:"required"`
	Styles   models.StyleMap `json:"styles,omitempty"`
}

// UpdateElementRequest is a partial element update.
type UpdateElementRequest = editor.Patch

// VisibilityRequest is the body of PUT .../visibility.
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// LockRequest is the body of PUT .../lock.
type LockRequest struct {
	Locked bool `json:"locked"`
}

// EffectRequest edits one effect. Params are applied first, then Color,
// then Enabled; each change is one undo step.
type EffectRequest struct {
	Enabled *bool              `json:"enabled,omitempty"`
	Params  map[string]float64 `json:"params,omitempty" example:"value:4"`
	Color   *string            `json:"color,omitempty" example:"#ff0000"`
}

// MaskRequest is the body of PUT .../mask.
type MaskRequest struct {
	Mask string `json:"mask" example:"hexagon" validate:"required"`
}

// CanvasSizeRequest is the body of PUT .../canvas/size.
type CanvasSizeRequest struct {
	Width  int `json:"width" example:"1080" validate:"required"`
	Height int `json:"height" example:"1920" validate:"required"`
}

// CanvasPresetRequest is the body of PUT .../canvas/preset.
type CanvasPresetRequest struct {
	Ratio string `json:"ratio" example:"9:16" validate:"required"`
}

// BackgroundRequest is the body of PUT .../background.
type BackgroundRequest struct {
	Type  models.BackgroundType `json:"type" example:"gradient" validate:"required"`
	Value string                `json:"value" example:"linear-gradient(#fff, #000)" validate:"required"`
}

// SaveRequest is the body of POST .../save. An empty DocumentID saves to
// the document the session is bound to, or creates a new one.
type SaveRequest struct {
	DocumentID string `json:"documentId,omitempty" example:"summer-sale"`
	Title      string `json:"title,omitempty" example:"Summer sale"`
}

// LoadRequest is the body of POST .../load.
type LoadRequest struct {
	DocumentID string `json:"documentId" example:"summer-sale" validate:"required"`
}

// SaveResponse is returned after a successful save.
type SaveResponse struct {
	Saved   *docservice.Saved `json:"saved" validate:"required"`
	Session SessionState      `json:"session" validate:"required"`
}

// RenderResponse wraps the paint list of a session.
type RenderResponse struct {
	Items []editor.RenderItem `json:"items" validate:"required"`
}

// DocumentListResponse wraps paginated catalogue listings.
type DocumentListResponse struct {
	Documents []models.DocumentSummary `json:"documents" validate:"required"`
	Total     int                      `json:"total" example:"42" validate:"required"`
}

// DocumentDetail is a catalogue entry with its asset files.
type DocumentDetail struct {
	models.DocumentSummary
	Assets []index.AssetRow `json:"assets" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results" validate:"required"`
}

// MaskListResponse lists the mask catalogue.
type MaskListResponse struct {
	Masks []string `json:"masks" validate:"required"`
}

// OutlineResponse is one mask outline as an SVG path.
type OutlineResponse struct {
	Mask string `json:"mask" example:"star" validate:"required"`
	Path string `json:"path" example:"M 0 0 L 10 0 L 10 10 Z" validate:"required"`
}
