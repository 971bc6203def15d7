// Package http provides the HTTP handlers of the property management API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/middleware"
	"github.com/clivebixby0/myapt-2/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.Validation, "Request body is required.")
		}
		return apperr.New(apperr.Validation, "Invalid request body.")
	}
	return nil
}

// session returns the caller stored by the auth middleware.
func session(r *http.Request) (models.Session, error) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return models.Session{}, apperr.ErrUnauthenticated
	}
	return s, nil
}
