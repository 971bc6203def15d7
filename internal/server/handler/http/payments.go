package http

import (
	"context"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
	"github.com/go-chi/chi/v5"
)

// PaymentService is the payment management used by PaymentHandler.
type PaymentService interface {
	List(ctx context.Context, sess models.Session) ([]models.Payment, error)
	ListByTenant(ctx context.Context, sess models.Session, tenantID string) ([]models.Payment, error)
	Get(ctx context.Context, sess models.Session, id string) (*models.Payment, error)
	Details(ctx context.Context, sess models.Session, id string) (*models.PaymentDetails, error)
	Create(ctx context.Context, sess models.Session, p models.Payment) (string, error)
	Update(ctx context.Context, sess models.Session, id string, p models.PaymentPatch) error
	Delete(ctx context.Context, sess models.Session, id string) error
}

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
	PaymentService PaymentService
}

// List returns the visible payments, narrowed by ?tenantId= when present.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var list []models.Payment
	if tenantID := r.URL.Query().Get("tenantId"); tenantID != "" {
		list, err = h.PaymentService.ListByTenant(r.Context(), sess, tenantID)
	} else {
		list, err = h.PaymentService.List(r.Context(), sess)
	}
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, list)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	p, err := h.PaymentService.Get(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, p)
}

// Details returns the payment with its tenant, apartment and maintenance request.
func (h *PaymentHandler) Details(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	d, err := h.PaymentService.Details(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, d)
}

// Create records a payment. When linking the maintenance request fails the
// payment still exists, so the response carries its id next to the error.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var p models.Payment
	if err := decode(w, r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	id, err := h.PaymentService.Create(r.Context(), sess, p)
	if err != nil {
		if id != "" {
			respond.PartialFailure(w, id, err)
			return
		}
		respond.Error(w, err)
		return
	}
	respond.Created(w, id)
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var p models.PaymentPatch
	if err := decode(w, r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.PaymentService.Update(r.Context(), sess, chi.URLParam(r, "id"), p); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.PaymentService.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}
