package http

import (
	"context"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
	"github.com/clivebixby0/myapt-2/internal/service"
)

// Reconciler repairs user/apartment references that disagree.
type Reconciler interface {
	Reconcile(ctx context.Context) (*service.ReconcileReport, error)
}

// AdminHandler serves the maintenance endpoints under /api/admin.
type AdminHandler struct {
	Reconciler Reconciler
}

// Reconcile runs a reconciliation pass and returns its report.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !sess.IsAdmin() {
		respond.Error(w, apperr.ErrPermissionDenied)
		return
	}
	report, err := h.Reconciler.Reconcile(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, report)
}
