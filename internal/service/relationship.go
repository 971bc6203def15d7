package service

import (
	"context"
	"errors"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/metrics"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Relationships keeps User.ApartmentID and Apartment.TenantID pointing at
// each other. The two records live in separate tables and are written one
// after the other without a transaction, so a failure between the writes
// leaves the pair asymmetric until Reconcile repairs it.
type Relationships struct {
	users      UserRepository
	apartments ApartmentRepository
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewRelationships constructs a Relationships. m may be nil.
func NewRelationships(users UserRepository, apartments ApartmentRepository, log *zap.Logger, m *metrics.Metrics) *Relationships {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relationships{users: users, apartments: apartments, log: log, metrics: m}
}

// UserStatusFor returns the status a user gets when its apartment reference
// becomes ref. Blocked users keep their status.
func UserStatusFor(current models.UserStatus, ref *string) models.UserStatus {
	switch {
	case models.Blocked(current):
		return current
	case ref != nil:
		return models.UserAssigned
	default:
		return models.UserActive
	}
}

// ApartmentStatusFor returns the status an apartment gets when its tenant
// reference becomes ref.
func ApartmentStatusFor(ref *string) models.ApartmentStatus {
	if ref != nil {
		return models.ApartmentOccupied
	}
	return models.ApartmentAvailable
}

func (r *Relationships) failed(op, side, id string, err error) {
	r.log.Error("relationship write failed",
		zap.String("op", op), zap.String("side", side), zap.String("id", id), zap.Error(err))
	if r.metrics != nil {
		r.metrics.RelationshipFailures.WithLabelValues(op, side).Inc()
	}
}

func (r *Relationships) setTenant(ctx context.Context, op, apartmentID string, tenantID *string) error {
	err := r.apartments.SetTenant(ctx, apartmentID, tenantID, ApartmentStatusFor(tenantID))
	if err != nil {
		r.failed(op, "apartment", apartmentID, err)
	}
	return err
}

func (r *Relationships) setApartment(ctx context.Context, op, userID string, apartmentID *string) error {
	err := r.users.SetApartment(ctx, userID, apartmentID, UserStatusFor("", apartmentID))
	if err != nil {
		r.failed(op, "user", userID, err)
	}
	return err
}

// Assign points the apartment at the tenant and the tenant at the apartment.
// Both writes are attempted; their errors are combined. Nothing is rolled
// back, and a previous tenant of the apartment keeps its reference.
func (r *Relationships) Assign(ctx context.Context, apartmentID, tenantID string) error {
	return multierr.Append(
		r.setTenant(ctx, "assign", apartmentID, &tenantID),
		r.setApartment(ctx, "assign", tenantID, &apartmentID),
	)
}

// Unassign clears both sides of the pair.
func (r *Relationships) Unassign(ctx context.Context, apartmentID, tenantID string) error {
	return multierr.Append(
		r.setTenant(ctx, "unassign", apartmentID, nil),
		r.setApartment(ctx, "unassign", tenantID, nil),
	)
}

// OnUserApartmentChanged mirrors a change of User.ApartmentID onto the
// apartments. The user record itself has already been written. Failures are
// logged and do not stop the remaining write.
func (r *Relationships) OnUserApartmentChanged(ctx context.Context, userID string, oldID, newID *string) {
	if models.SameRef(oldID, newID) {
		return
	}
	if oldID != nil {
		r.releaseApartment(ctx, "user-changed", *oldID, userID)
	}
	if newID != nil {
		_ = r.setTenant(ctx, "user-changed", *newID, &userID)
	}
}

// OnApartmentTenantChanged mirrors a change of Apartment.TenantID onto the
// users.
func (r *Relationships) OnApartmentTenantChanged(ctx context.Context, apartmentID string, oldID, newID *string) {
	if models.SameRef(oldID, newID) {
		return
	}
	if oldID != nil {
		r.releaseUser(ctx, "apartment-changed", *oldID, apartmentID)
	}
	if newID != nil {
		_ = r.setApartment(ctx, "apartment-changed", *newID, &apartmentID)
	}
}

// OnUserDeleted clears the apartment the deleted user rented.
func (r *Relationships) OnUserDeleted(ctx context.Context, u models.User) {
	if u.ApartmentID != nil {
		r.releaseApartment(ctx, "user-deleted", *u.ApartmentID, u.ID)
	}
}

// OnApartmentDeleted clears the reference of the deleted apartment's tenant.
func (r *Relationships) OnApartmentDeleted(ctx context.Context, a models.Apartment) {
	if a.TenantID != nil {
		r.releaseUser(ctx, "apartment-deleted", *a.TenantID, a.ID)
	}
}

// releaseApartment clears the apartment's tenant if it still is userID. An
// apartment already handed to someone else is left alone.
func (r *Relationships) releaseApartment(ctx context.Context, op, apartmentID, userID string) {
	a, err := r.apartments.Get(ctx, apartmentID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			r.failed(op, "apartment", apartmentID, err)
		}
		return
	}
	if a.TenantID != nil && *a.TenantID != userID {
		r.log.Info("apartment held by another tenant, not cleared",
			zap.String("op", op), zap.String("apartment", apartmentID), zap.String("tenant", *a.TenantID))
		return
	}
	_ = r.setTenant(ctx, op, apartmentID, nil)
}

// releaseUser clears the user's apartment if it still is apartmentID.
func (r *Relationships) releaseUser(ctx context.Context, op, userID, apartmentID string) {
	u, err := r.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			r.failed(op, "user", userID, err)
		}
		return
	}
	if u.ApartmentID != nil && *u.ApartmentID != apartmentID {
		r.log.Info("user moved to another apartment, not cleared",
			zap.String("op", op), zap.String("user", userID), zap.String("apartment", *u.ApartmentID))
		return
	}
	_ = r.setApartment(ctx, op, userID, nil)
}
