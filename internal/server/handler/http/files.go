package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
)

// maxUploadBytes caps uploaded files.
const maxUploadBytes = 10 << 20

// FileStore stores uploaded files and returns a URL to read them back.
type FileStore interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
}

// FileHandler serves POST /api/files?path=... with the raw file as body.
type FileHandler struct {
	FileStore FileStore
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, err := session(r); err != nil {
		respond.Error(w, err)
		return
	}
	if h.FileStore == nil {
		respond.Error(w, apperr.New(apperr.Unavailable, "File uploads are not configured."))
		return
	}
	path := strings.TrimPrefix(r.URL.Query().Get("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		respond.Error(w, apperr.Validationf("a relative file path is required"))
		return
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	url, err := h.FileStore.Upload(r.Context(), path, http.MaxBytesReader(w, r.Body, maxUploadBytes), ct)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, respond.Envelope{Success: true, URL: url})
}
