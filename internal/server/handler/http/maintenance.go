package http

import (
	"context"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
	"github.com/go-chi/chi/v5"
)

// MaintenanceService is the maintenance request management used by
// MaintenanceHandler.
type MaintenanceService interface {
	List(ctx context.Context, sess models.Session) ([]models.MaintenanceRequest, error)
	ListByApartment(ctx context.Context, sess models.Session, apartmentID string) ([]models.MaintenanceRequest, error)
	ListByRequester(ctx context.Context, sess models.Session, userID string) ([]models.MaintenanceRequest, error)
	Get(ctx context.Context, sess models.Session, id string) (*models.MaintenanceRequest, error)
	Details(ctx context.Context, sess models.Session, id string) (*models.MaintenanceDetails, error)
	Create(ctx context.Context, sess models.Session, m models.MaintenanceRequest) (string, error)
	Update(ctx context.Context, sess models.Session, id string, p models.MaintenancePatch) error
	LinkPayment(ctx context.Context, sess models.Session, id, paymentID string) error
	Delete(ctx context.Context, sess models.Session, id string) error
}

// MaintenanceHandler serves /api/maintenance.
type MaintenanceHandler struct {
	MaintenanceService MaintenanceService
}

// List returns the visible requests. ?apartmentId= and ?requestedBy= narrow
// the result; apartmentId wins when both are given.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	q := r.URL.Query()
	var list []models.MaintenanceRequest
	switch {
	case q.Get("apartmentId") != "":
		list, err = h.MaintenanceService.ListByApartment(r.Context(), sess, q.Get("apartmentId"))
	case q.Get("requestedBy") != "":
		list, err = h.MaintenanceService.ListByRequester(r.Context(), sess, q.Get("requestedBy"))
	default:
		list, err = h.MaintenanceService.List(r.Context(), sess)
	}
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, list)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	m, err := h.MaintenanceService.Get(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, m)
}

func (h *MaintenanceHandler) Details(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	d, err := h.MaintenanceService.Details(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, d)
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var m models.MaintenanceRequest
	if err := decode(w, r, &m); err != nil {
		respond.Error(w, err)
		return
	}
	id, err := h.MaintenanceService.Create(r.Context(), sess, m)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Created(w, id)
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var p models.MaintenancePatch
	if err := decode(w, r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.MaintenanceService.Update(r.Context(), sess, chi.URLParam(r, "id"), p); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

// LinkPaymentRequest is the body of PUT /api/maintenance/{id}/payment.
type LinkPaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

func (h *MaintenanceHandler) LinkPayment(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req LinkPaymentRequest
	if err := decode(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.MaintenanceService.LinkPayment(r.Context(), sess, chi.URLParam(r, "id"), req.PaymentID); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.MaintenanceService.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}
