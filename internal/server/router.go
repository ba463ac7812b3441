package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router with all preview routes mounted.
// events, if non-nil, is mounted at GET /api/events for live-reload pushes.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/manifest", h.GetManifest)
	r.Get("/api/files/{name}", h.GetFile)

	if events != nil {
		r.Get("/api/events", events.ServeHTTP)
	}

	return r
}
