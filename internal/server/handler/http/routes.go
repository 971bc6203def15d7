package http

import (
	"net/http"

	"github.com/clivebixby0/myapt-2/internal/metrics"
	"github.com/clivebixby0/myapt-2/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Apartments  *ApartmentHandler
	Payments    *PaymentHandler
	Maintenance *MaintenanceHandler
	Files       *FileHandler
	Admin       *AdminHandler
}

// NewRouter constructs the HTTP handler of the API.
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer
//  2. WithRequestLogging(logger), logs incoming requests
//  3. WithMetrics(m), records per-route counters and latency
//  4. Authenticate, resolves the bearer token on everything under /api
//     except register and login
//
// JSON routes reject other content types; /api/files takes a raw body.
// /healthz and /metrics are served outside /api without authentication.
func NewRouter(
	h Handlers,
	auth middleware.Authenticator,
	db Pinger,
	m *metrics.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics(m))

	r.Get("/healthz", Health(db))
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(auth, "/api/auth/register", "/api/auth/login"))

		r.Post("/files", h.Files.Upload)

		r.Group(func(r chi.Router) {
			// Only allow requests with Content-Type: application/json
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Get("/{id}", h.Users.Get)
				r.Patch("/{id}", h.Users.Update)
				r.Delete("/{id}", h.Users.Delete)
			})

			r.Route("/apartments", func(r chi.Router) {
				r.Get("/", h.Apartments.List)
				r.Post("/", h.Apartments.Create)
				r.Get("/{id}", h.Apartments.Get)
				r.Patch("/{id}", h.Apartments.Update)
				r.Delete("/{id}", h.Apartments.Delete)
				r.Put("/{id}/tenant", h.Apartments.Assign)
				r.Delete("/{id}/tenant/{tenantId}", h.Apartments.Unassign)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.Payments.List)
				r.Post("/", h.Payments.Create)
				r.Get("/{id}", h.Payments.Get)
				r.Get("/{id}/details", h.Payments.Details)
				r.Patch("/{id}", h.Payments.Update)
				r.Delete("/{id}", h.Payments.Delete)
			})

			r.Route("/maintenance", func(r chi.Router) {
				r.Get("/", h.Maintenance.List)
				r.Post("/", h.Maintenance.Create)
				r.Get("/{id}", h.Maintenance.Get)
				r.Get("/{id}/details", h.Maintenance.Details)
				r.Patch("/{id}", h.Maintenance.Update)
				r.Put("/{id}/payment", h.Maintenance.LinkPayment)
				r.Delete("/{id}", h.Maintenance.Delete)
			})

			r.Post("/admin/reconcile", h.Admin.Reconcile)
		})
	})

	return r
}
