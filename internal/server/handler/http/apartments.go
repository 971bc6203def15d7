package http

import (
	"context"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
	"github.com/go-chi/chi/v5"
)

// ApartmentService is the apartment management used by ApartmentHandler.
type ApartmentService interface {
	List(ctx context.Context, sess models.Session) ([]models.ApartmentWithTenant, error)
	Get(ctx context.Context, sess models.Session, id string) (*models.ApartmentWithTenant, error)
	Create(ctx context.Context, sess models.Session, a models.Apartment) (string, error)
	Update(ctx context.Context, sess models.Session, id string, p models.ApartmentPatch) error
	Delete(ctx context.Context, sess models.Session, id string) error
	Assign(ctx context.Context, sess models.Session, id, tenantID string) error
	Unassign(ctx context.Context, sess models.Session, id, tenantID string) error
}

// ApartmentHandler serves /api/apartments.
type ApartmentHandler struct {
	ApartmentService ApartmentService
}

func (h *ApartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	list, err := h.ApartmentService.List(r.Context(), sess)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, list)
}

func (h *ApartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	a, err := h.ApartmentService.Get(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, a)
}

func (h *ApartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var a models.Apartment
	if err := decode(w, r, &a); err != nil {
		respond.Error(w, err)
		return
	}
	id, err := h.ApartmentService.Create(r.Context(), sess, a)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Created(w, id)
}

func (h *ApartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var p models.ApartmentPatch
	if err := decode(w, r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.ApartmentService.Update(r.Context(), sess, chi.URLParam(r, "id"), p); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

func (h *ApartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.ApartmentService.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

// AssignRequest is the body of PUT /api/apartments/{id}/tenant.
type AssignRequest struct {
	TenantID string `json:"tenantId"`
}

// Assign points the apartment and the tenant at each other.
func (h *ApartmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req AssignRequest
	if err := decode(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.ApartmentService.Assign(r.Context(), sess, chi.URLParam(r, "id"), req.TenantID); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

// Unassign clears both sides of the pair.
func (h *ApartmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	err = h.ApartmentService.Unassign(r.Context(), sess, chi.URLParam(r, "id"), chi.URLParam(r, "tenantId"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}
