package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Editing sessions.
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.Post("/", h.CreateSession)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)

			r.Post("/elements", h.AddElement)
			r.Post("/shapes", h.AddShape)
			r.Post("/images", h.UploadImage)
			r.Route("/elements/{eid}", func(r chi.Router) {
				r.Patch("/", h.UpdateElement)
				r.Delete("/", h.RemoveElement)
				r.Post("/duplicate", h.DuplicateElement)
				r.Put("/visibility", h.SetVisibility)
				r.Put("/lock", h.SetLock)
				r.Put("/effects/{name}", h.SetEffect)
				r.Put("/mask", h.ApplyMask)
				r.Delete("/mask", h.RemoveMask)
			})

			r.Put("/canvas/size", h.SetCanvasSize)
			r.Put("/canvas/preset", h.SetCanvasPreset)
			r.Patch("/canvas/styles", h.PatchCanvasStyles)
			r.Put("/background", h.SetBackground)
			r.Post("/background/media", h.UploadBackground)
			r.Delete("/background", h.ClearBackground)

			r.Post("/undo", h.Undo)
			r.Post("/redo", h.Redo)
			r.Post("/clear", h.Clear)
			r.Get("/render", h.Render)
			r.Get("/files/{name}", h.ServeFile)

			r.Post("/save", h.SaveSession)
			r.Post("/load", h.LoadDocument)
		})
	})

	// Saved documents.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Get("/documents/{id}/assets/{name}", h.ServeDocumentAsset)

	// Search.
	r.Get("/search", h.Search)

	// Mask catalogue and canvas presets.
	r.Get("/masks", h.ListMasks)
	r.Get("/masks/{id}/outline", h.MaskOutline)
	r.Get("/masks/{id}/preview.png", h.MaskPreview)
	r.Get("/presets", h.Presets)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
