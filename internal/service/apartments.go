package service

import (
	"context"
	"errors"
	"strings"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// ApartmentService implements the apartments collection operations.
type ApartmentService struct {
	apartments ApartmentRepository
	users      UserRepository
	rel        *Relationships
	log        *zap.Logger
}

// NewApartmentService constructs an ApartmentService.
func NewApartmentService(apartments ApartmentRepository, users UserRepository, rel *Relationships, log *zap.Logger) *ApartmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApartmentService{apartments: apartments, users: users, rel: rel, log: log}
}

func validApartmentStatus(st models.ApartmentStatus) bool {
	switch st {
	case models.ApartmentAvailable, models.ApartmentOccupied, models.ApartmentUnderMaintenance, models.ApartmentReserved:
		return true
	}
	return false
}

// checkOccupancy rejects a status that contradicts the tenant reference:
// Occupied needs a tenant and Available must not have one.
func checkOccupancy(st models.ApartmentStatus, tenantID *string) error {
	switch {
	case st == models.ApartmentOccupied && tenantID == nil:
		return apperr.Validationf("An apartment without a tenant cannot be Occupied")
	case st == models.ApartmentAvailable && tenantID != nil:
		return apperr.Validationf("An apartment with a tenant cannot be Available")
	}
	return nil
}

// List returns the apartments visible to the caller joined with their
// tenants. Tenants see the apartment they rent.
func (s *ApartmentService) List(ctx context.Context, sess models.Session) ([]models.ApartmentWithTenant, error) {
	apartments, err := s.apartments.List(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		own := make([]models.Apartment, 0, 1)
		for _, a := range apartments {
			if ownsApartment(sess, a) {
				own = append(own, a)
			}
		}
		return joinApartments(own, []models.User{sess.User}), nil
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return joinApartments(apartments, users), nil
}

// Get returns one apartment joined with its tenant.
func (s *ApartmentService) Get(ctx context.Context, sess models.Session, id string) (*models.ApartmentWithTenant, error) {
	a, err := s.apartments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() && !ownsApartment(sess, *a) {
		return nil, apperr.New(apperr.PermissionDenied, "")
	}
	row := models.ApartmentWithTenant{Apartment: *a}
	if a.TenantID != nil {
		u, err := s.users.Get(ctx, *a.TenantID)
		switch {
		case err == nil:
			row.Tenant = u
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return &row, nil
}

// Create adds an apartment without a tenant and returns its id.
func (s *ApartmentService) Create(ctx context.Context, sess models.Session, a models.Apartment) (string, error) {
	if err := requireAdmin(sess); err != nil {
		return "", err
	}
	if strings.TrimSpace(a.Number) == "" || strings.TrimSpace(a.Building) == "" {
		return "", apperr.Validationf("Apartment number and building are required")
	}
	if a.MonthlyRent < 0 {
		return "", apperr.Validationf("Monthly rent cannot be negative")
	}
	if a.Status == "" {
		a.Status = models.ApartmentAvailable
	}
	if !validApartmentStatus(a.Status) {
		return "", apperr.Validationf("unknown apartment status %q", a.Status)
	}
	a.TenantID = nil
	if err := checkOccupancy(a.Status, nil); err != nil {
		return "", err
	}
	return s.apartments.Create(ctx, a)
}

// Update applies a partial update. When the patch carries tenantId the users
// are updated to match and the status follows the new reference unless the
// patch sets one.
func (s *ApartmentService) Update(ctx context.Context, sess models.Session, id string, p models.ApartmentPatch) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if p.Status != nil && !validApartmentStatus(*p.Status) {
		return apperr.Validationf("unknown apartment status %q", *p.Status)
	}
	if p.MonthlyRent != nil && *p.MonthlyRent < 0 {
		return apperr.Validationf("Monthly rent cannot be negative")
	}

	old, err := s.apartments.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.TenantID.Set && p.Status == nil {
		st := ApartmentStatusFor(p.TenantID.ID)
		p.Status = &st
	}
	if p.Status != nil {
		tenantID := old.TenantID
		if p.TenantID.Set {
			tenantID = p.TenantID.ID
		}
		if err := checkOccupancy(*p.Status, tenantID); err != nil {
			return err
		}
	}
	if err := s.apartments.Update(ctx, id, p); err != nil {
		return err
	}
	if p.TenantID.Set {
		s.rel.OnApartmentTenantChanged(ctx, id, old.TenantID, p.TenantID.ID)
	}
	return nil
}

// Delete releases the tenant and removes the apartment.
func (s *ApartmentService) Delete(ctx context.Context, sess models.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	a, err := s.apartments.Get(ctx, id)
	if err != nil {
		return err
	}
	s.rel.OnApartmentDeleted(ctx, *a)
	return s.apartments.Delete(ctx, id)
}

// Assign makes tenantID the tenant of the apartment. Both records must exist.
func (s *ApartmentService) Assign(ctx context.Context, sess models.Session, id, tenantID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if tenantID == "" {
		return apperr.Validationf("tenantId is required")
	}
	if _, err := s.apartments.Get(ctx, id); err != nil {
		return err
	}
	if _, err := s.users.Get(ctx, tenantID); err != nil {
		return err
	}
	return s.rel.Assign(ctx, id, tenantID)
}

// Unassign clears the apartment and its tenant.
func (s *ApartmentService) Unassign(ctx context.Context, sess models.Session, id, tenantID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if tenantID == "" {
		return apperr.Validationf("tenantId is required")
	}
	return s.rel.Unassign(ctx, id, tenantID)
}
