// Package server implements the read-only preview API using chi. It serves
// what downstream update clients will fetch once the repository is pushed:
// the manifest and the tracked data files.
package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/manifest"
	"github.com/starford/jera/internal/storage"
)

// Handler holds preview API route handlers.
type Handler struct {
	store        storage.Provider
	manifestPath string
	files        map[string]string // logical name -> path relative to repo root
}

// NewHandler creates a new Handler.
func NewHandler(store storage.Provider, manifestPath string, files map[string]string) *Handler {
	return &Handler{store: store, manifestPath: manifestPath, files: files}
}

// GetManifest handles GET /api/manifest.
func (h *Handler) GetManifest(w http.ResponseWriter, _ *http.Request) {
	m, err := manifest.Load(h.store, h.manifestPath)
	if err != nil {
		if errors.Is(err, apperr.ErrManifestMissing) {
			writeJSON(w, http.StatusNotFound, errorBody("manifest not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// GetFile handles GET /api/files/{name}, serving a tracked data file by its
// logical name.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, ok := h.files[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	data, err := h.store.Read(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("data file unreadable"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
