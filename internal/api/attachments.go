package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// readUpload reads the multipart "file" field and sniffs its media type.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return nil, "", false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read file"))
		return nil, "", false
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("empty file"))
		return nil, "", false
	}
	return data, imagesrc.DetectMIME(data), true
}

// formFloat reads an optional numeric form value.
func formFloat(r *http.Request, key string) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", apperr.ErrValidation, key, err)
	}
	return f, nil
}

// UploadImage handles POST /api/sessions/{sid}/images (multipart/form-data,
// field "file", optional x, y, width and height).
//
//	@Summary		Add an image element from an uploaded file
//	@Tags			elements
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	SessionState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sid}/images [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := readUpload(w, r)
	if !ok {
		return
	}
	if !strings.HasPrefix(mime, "image/") {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported media type "+mime))
		return
	}

	partial := models.Element{Size: &models.Size{}}
	fields := []struct {
		key string
		dst *float64
	}{
		{"x", &partial.Position.X},
		{"y", &partial.Position.Y},
		{"width", &partial.Size.Width},
		{"height", &partial.Size.Height},
	}
	for _, f := range fields {
		v, err := formFloat(r, f.key)
		if err != nil {
			writeError(w, "upload image", err)
			return
		}
		*f.dst = v
	}
	if partial.Size.Width <= 0 || partial.Size.Height <= 0 {
		img, err := imagesrc.Decode(data)
		if err != nil {
			writeError(w, "upload image", fmt.Errorf("%w: %v", apperr.ErrValidation, err))
			return
		}
		b := img.Bounds()
		*partial.Size = models.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}

	h.apply(w, r, "upload image", http.StatusCreated, func(s *editor.Session, st *SessionState) error {
		el, err := s.AddImage(partial, data, mime)
		if err != nil {
			return err
		}
		st.Element = &el
		return nil
	})
}

// UploadBackground handles POST /api/sessions/{sid}/background/media
// (multipart/form-data, field "file"). Image and video files are accepted.
func (h *Handler) UploadBackground(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := readUpload(w, r)
	if !ok {
		return
	}
	var t models.BackgroundType
	switch {
	case strings.HasPrefix(mime, "image/"):
		t = models.BackgroundImage
	case strings.HasPrefix(mime, "video/"):
		t = models.BackgroundVideo
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported media type "+mime))
		return
	}
	h.apply(w, r, "upload background", http.StatusOK, func(s *editor.Session, _ *SessionState) error {
		return s.SetBackgroundMedia(t, data, mime)
	})
}

// ServeFile handles GET /api/sessions/{sid}/files/{name}.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	var file models.AssetFile
	found := false
	_ = e.Do(func(s *editor.Session) error {
		file, found = s.File(name)
		return nil
	})
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("file not found"))
		return
	}
	writeBlob(w, file.MimeType, file.Blob)
}

// ServeDocumentAsset handles GET /api/documents/{id}/assets/{name}.
func (h *Handler) ServeDocumentAsset(w http.ResponseWriter, r *http.Request) {
	data, mime, err := h.docs.Asset(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, "document asset", err)
		return
	}
	writeBlob(w, mime, data)
}

func writeBlob(w http.ResponseWriter, mime string, data []byte) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
