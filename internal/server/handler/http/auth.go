package http

import (
	"context"
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
)

// AuthService defines the authentication operations required by the
// HTTP handlers.
type AuthService interface {
	// SignUp registers a tenant and opens a session for it.
	SignUp(ctx context.Context, reg models.Registration) (*models.SignInResult, error)
	// SignIn checks the credentials and opens a session.
	SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error)
	// SignOut revokes the token of the session.
	SignOut(ctx context.Context, sess models.Session) error
}

// AuthHandler handles registration, login, logout and profile requests.
type AuthHandler struct {
	AuthService AuthService
}

// Register handles POST /api/auth/register. It responds with a session
// token and the new profile.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decode(w, r, &reg); err != nil {
		respond.Error(w, err)
		return
	}
	res, err := h.AuthService.SignUp(r.Context(), reg)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, respond.Envelope{Success: true, Data: res})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decode(w, r, &creds); err != nil {
		respond.Error(w, err)
		return
	}
	res, err := h.AuthService.SignIn(r.Context(), creds)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, res)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.AuthService.SignOut(r.Context(), sess); err != nil {
		respond.Error(w, err)
		return
	}
	respond.OK(w)
}

// Me handles GET /api/auth/me, returning the profile derived for this request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Data(w, sess.User)
}
