// Package middleware provides HTTP middlewares for authentication, request
// logging and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/server/respond"
)

type ctxKey string

const sessionKey ctxKey = "session"

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// Authenticate is a middleware that requires a valid bearer token.
//
// Paths listed in public are passed through untouched so that callers can
// sign up and sign in. For every other request the token is resolved into a
// models.Session, which is stored in the request context. The session is
// derived afresh on each request; any failure rejects the request.
func Authenticate(auth Authenticator, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := open[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, apperr.New(apperr.Unauthenticated, ""))
				return
			}
			sess, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				respond.Error(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, *sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetSessionFromContext extracts the session stored by Authenticate.
func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}
