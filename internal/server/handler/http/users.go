package http

import (
	"context"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
	"github.com/go-chi/chi/v5"
)

// UserService is the user management used by UserHandler.
type UserService interface {
	List(ctx context.Context, sess models.Session) ([]models.UserWithApartment, error)
	ListPlain(ctx context.Context, sess models.Session) ([]models.User, error)
	Get(ctx context.Context, sess models.Session, id string) (*models.UserWithApartment, error)
	Create(ctx context.Context, sess models.Session, reg models.Registration) (string, error)
	Update(ctx context.Context, sess models.Session, id string, p models.UserPatch) error
	Delete(ctx context.Context, sess models.Session, id string) error
}

// UserHandler serves /api/users.
type UserHandler struct {
	UserService UserService
}

// List returns users joined with their apartments, or the flat documents
// with ?view=flat.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if r.URL.Query().Get("view") == "flat" {
		users, err := h.UserService.ListPlain(r.Context(), sess)
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.Data(w, users)
		return
	}
	users, err := h.UserService.List(r.Context(), sess)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	u, err := h.UserService.Get(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, u)
}

// Create registers a user on behalf of an admin.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var reg models.Registration
	if err := decode(w, r, &reg); err != nil {
		respond.Error(w, err)
		return
	}
	id, err := h.UserService.Create(r.Context(), sess, reg)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Created(w, id)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var p models.UserPatch
	if err := decode(w, r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.UserService.Update(r.Context(), sess, chi.URLParam(r, "id"), p); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.UserService.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}
