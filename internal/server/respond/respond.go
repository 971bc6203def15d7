// Package respond writes the JSON envelopes of the API:
// {"success":true,"data":...}, {"success":true,"id":...} and
// {"success":false,"error":{"code":...,"message":...}}.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/apperr"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	ID      string        `json:"id,omitempty"`
	URL     string        `json:"url,omitempty"`
	Error   *apperr.Error `json:"error,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data writes a successful response carrying data.
func Data(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response carrying the id of the new record.
func Created(w http.ResponseWriter, id string) {
	JSON(w, http.StatusCreated, Envelope{Success: true, ID: id})
}

// OK writes a bare successful response.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, Envelope{Success: true})
}

// Error writes the failure envelope for err. Unclassified errors are
// reported as internal without their text.
func Error(w http.ResponseWriter, err error) {
	body := public(err)
	JSON(w, apperr.HTTPStatus(body.Code), Envelope{Error: body})
}

// PartialFailure writes the failure envelope for err together with the id of
// a record that was written before the failure.
func PartialFailure(w http.ResponseWriter, id string, err error) {
	body := public(err)
	JSON(w, apperr.HTTPStatus(body.Code), Envelope{ID: id, Error: body})
}

func public(err error) *apperr.Error {
	e := apperr.From(err)
	body := &apperr.Error{Code: e.Code, Message: e.Message}
	if e.Code == apperr.Internal {
		body.Message = apperr.Message(apperr.Internal)
	}
	return body
}
