// Package store is the client-side read model: the last known snapshot of
// users, apartments, payments and maintenance requests, with the mutations
// that keep it current.
//
// Mutations that can move a user/apartment reference are followed by a full
// LoadAll, because the server updates both sides with independent writes and
// only a fresh read shows the result. Other mutations patch the snapshot in
// place.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// DeleteTimeout bounds the wait for a delete. The remote call is not
// cancelled when it expires.
const DeleteTimeout = 30 * time.Second

// LoadFailedMessage is the store error shown when nothing could be loaded.
const LoadFailedMessage = "Failed to load data. Please refresh the page."

// Backend is the remote API used by the store. *api.Client implements it.
type Backend interface {
	ListUsers(ctx context.Context) ([]models.UserWithApartment, error)
	ListUsersFlat(ctx context.Context) ([]models.User, error)
	ListApartments(ctx context.Context) ([]models.ApartmentWithTenant, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListMaintenance(ctx context.Context) ([]models.MaintenanceRequest, error)

	CreateUser(ctx context.Context, reg models.Registration) (string, error)
	UpdateUser(ctx context.Context, id string, p models.UserPatch) error
	DeleteUser(ctx context.Context, id string) error

	CreateApartment(ctx context.Context, a models.Apartment) (string, error)
	UpdateApartment(ctx context.Context, id string, p models.ApartmentPatch) error
	DeleteApartment(ctx context.Context, id string) error
	AssignTenant(ctx context.Context, apartmentID, tenantID string) error
	UnassignTenant(ctx context.Context, apartmentID, tenantID string) error

	CreatePayment(ctx context.Context, p models.Payment) (string, error)
	UpdatePayment(ctx context.Context, id string, p models.PaymentPatch) error
	DeletePayment(ctx context.Context, id string) error

	CreateMaintenance(ctx context.Context, m models.MaintenanceRequest) (string, error)
	UpdateMaintenance(ctx context.Context, id string, p models.MaintenancePatch) error
	DeleteMaintenance(ctx context.Context, id string) error
	LinkPayment(ctx context.Context, maintenanceID, paymentID string) error
}

// Snapshot is a copy of the store state.
type Snapshot struct {
	Users       []models.UserWithApartment
	Apartments  []models.ApartmentWithTenant
	Payments    []models.Payment
	Maintenance []models.MaintenanceRequest
	Loading     bool
	Err         error
}

// Store holds the snapshot. It is safe for concurrent use.
type Store struct {
	backend Backend
	log     *zap.Logger
	now     func() time.Time

	deleteTimeout time.Duration

	mu          sync.RWMutex
	users       []models.UserWithApartment
	apartments  []models.ApartmentWithTenant
	payments    []models.Payment
	maintenance []models.MaintenanceRequest
	pending     int
	err         error

	// loading guards LoadAll; stale asks the running LoadAll for another pass.
	loading atomic.Bool
	stale   atomic.Bool
}

// New returns an empty store. A nil logger discards output.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend:       backend,
		log:           log,
		now:           time.Now,
		deleteTimeout: DeleteTimeout,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Users:       append([]models.UserWithApartment(nil), s.users...),
		Apartments:  append([]models.ApartmentWithTenant(nil), s.apartments...),
		Payments:    append([]models.Payment(nil), s.payments...),
		Maintenance: append([]models.MaintenanceRequest(nil), s.maintenance...),
		Loading:     s.pending > 0,
		Err:         s.err,
	}
}

// Loading reports whether an operation is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Err returns the store error set by the last LoadAll.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// begin marks an operation as running; the returned func ends it.
func (s *Store) begin() func() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.pending--
		s.mu.Unlock()
	}
}

// withDeleteTimeout runs call and gives up waiting after the delete timeout.
// call keeps running in the background when the wait is abandoned.
func (s *Store) withDeleteTimeout(ctx context.Context, call func(context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- call(context.WithoutCancel(ctx))
	}()
	timer := time.NewTimer(s.deleteTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return apperr.New(apperr.Timeout, "")
	case <-ctx.Done():
		return apperr.Wrap(apperr.Timeout, ctx.Err())
	}
}

// reload runs LoadAll after a successful write. Its outcome is recorded in the
// store state rather than returned, since the write itself succeeded. When a
// LoadAll is already running, that one makes another pass once it is done.
func (s *Store) reload(ctx context.Context) {
	s.stale.Store(true)
	if _, err := s.LoadAll(ctx); err != nil {
		s.log.Warn("reload after write failed", zap.Error(err))
	}
}
