// Package main initializes and starts the property management API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/clivebixby0/myapt-2/internal/blob"
	"github.com/clivebixby0/myapt-2/internal/config"
	"github.com/clivebixby0/myapt-2/internal/db"
	"github.com/clivebixby0/myapt-2/internal/logger"
	"github.com/clivebixby0/myapt-2/internal/metrics"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/repository"
	"github.com/clivebixby0/myapt-2/internal/server/handler/http"
	"github.com/clivebixby0/myapt-2/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Purge revocations of tokens that have expired anyway.
	db.StartRevokedTokenCleaner(ctx, postgresDB, time.Hour, zapLogger)

	issuer, err := service.NewTokenIssuer(options.JWTSecret, options.TokenLifetime())
	if err != nil {
		zapLogger.Fatal("cannot init session tokens", zap.Error(err))
	}

	m := metrics.New()

	// Repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	apartmentRepo := repository.NewPostgresApartmentRepository(postgresDB)
	paymentRepo := repository.NewPostgresPaymentRepository(postgresDB)
	maintenanceRepo := repository.NewPostgresMaintenanceRepository(postgresDB)
	identityRepo := repository.NewPostgresIdentityRepository(postgresDB)
	tokenRepo := repository.NewPostgresTokenRepository(postgresDB)

	// Business-logic services.
	rel := service.NewRelationships(userRepo, apartmentRepo, zapLogger, m)
	authService := service.NewAuthService(identityRepo, userRepo, tokenRepo, rel, issuer, zapLogger)
	if options.BootstrapAdmin() {
		admin, err := authService.EnsureAdmin(ctx, models.Registration{
			Email:    options.AdminEmail,
			Password: options.AdminPassword,
			FullName: "Administrator",
		})
		if err != nil {
			zapLogger.Fatal("cannot create bootstrap admin", zap.Error(err))
		}
		if admin == nil {
			zapLogger.Info("admin account already exists, bootstrap skipped")
		}
	}

	userService := service.NewUserService(userRepo, apartmentRepo, rel, authService, zapLogger)
	apartmentService := service.NewApartmentService(apartmentRepo, userRepo, rel, zapLogger)
	paymentService := service.NewPaymentService(paymentRepo, maintenanceRepo, userRepo, apartmentRepo, zapLogger)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, paymentRepo, userRepo, apartmentRepo, zapLogger)

	handlers := http.Handlers{
		Auth:        &http.AuthHandler{AuthService: authService},
		Users:       &http.UserHandler{UserService: userService},
		Apartments:  &http.ApartmentHandler{ApartmentService: apartmentService},
		Payments:    &http.PaymentHandler{PaymentService: paymentService},
		Maintenance: &http.MaintenanceHandler{MaintenanceService: maintenanceService},
		Files:       &http.FileHandler{},
		Admin:       &http.AdminHandler{Reconciler: rel},
	}

	// Uploads answer "unavailable" until a bucket is configured.
	if options.S3Bucket != "" {
		store, err := blob.New(ctx, blob.Config{
			Bucket:    options.S3Bucket,
			Region:    options.S3Region,
			Endpoint:  options.S3Endpoint,
			PathStyle: options.S3PathStyle,
		})
		if err != nil {
			zapLogger.Fatal("cannot init blob storage", zap.Error(err))
		}
		handlers.Files.FileStore = store
	} else {
		zapLogger.Warn("no S3 bucket configured, file uploads are disabled")
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(handlers, authService, postgresDB, m, zapLogger)

	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", addr))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", addr))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
