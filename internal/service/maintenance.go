package service

import (
	"context"
	"strings"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// MaintenanceService implements the maintenance collection operations.
type MaintenanceService struct {
	maintenance MaintenanceRepository
	payments    PaymentRepository
	users       UserRepository
	apartments  ApartmentRepository
	log         *zap.Logger
	now         func() time.Time
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(
	maintenance MaintenanceRepository,
	payments PaymentRepository,
	users UserRepository,
	apartments ApartmentRepository,
	log *zap.Logger,
) *MaintenanceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MaintenanceService{
		maintenance: maintenance,
		payments:    payments,
		users:       users,
		apartments:  apartments,
		log:         log,
		now:         time.Now,
	}
}

func validMaintenanceStatus(st models.MaintenanceStatus) bool {
	switch st {
	case models.MaintenancePending, models.MaintenanceInProgress, models.MaintenanceCompleted, models.MaintenanceCancelled:
		return true
	}
	return false
}

// List returns all requests for admins and the caller's own for tenants.
func (s *MaintenanceService) List(ctx context.Context, sess models.Session) ([]models.MaintenanceRequest, error) {
	if sess.IsAdmin() {
		return s.maintenance.List(ctx)
	}
	return s.maintenance.ListByRequester(ctx, sess.UserID())
}

// ListByApartment returns the requests of one apartment. Tenants may only
// ask for the apartment they rent.
func (s *MaintenanceService) ListByApartment(ctx context.Context, sess models.Session, apartmentID string) ([]models.MaintenanceRequest, error) {
	if !sess.IsAdmin() && models.StringValue(sess.User.ApartmentID) != apartmentID {
		return nil, apperr.New(apperr.PermissionDenied, "")
	}
	return s.maintenance.ListByApartment(ctx, apartmentID)
}

// ListByRequester returns the requests raised by one user.
func (s *MaintenanceService) ListByRequester(ctx context.Context, sess models.Session, userID string) ([]models.MaintenanceRequest, error) {
	if err := requireSelfOrAdmin(sess, userID); err != nil {
		return nil, err
	}
	return s.maintenance.ListByRequester(ctx, userID)
}

func (s *MaintenanceService) get(ctx context.Context, sess models.Session, id string) (*models.MaintenanceRequest, error) {
	m, err := s.maintenance.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(sess, m.RequestedBy); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns one request.
func (s *MaintenanceService) Get(ctx context.Context, sess models.Session, id string) (*models.MaintenanceRequest, error) {
	return s.get(ctx, sess, id)
}

// Details returns a request with its apartment, requester and payment.
func (s *MaintenanceService) Details(ctx context.Context, sess models.Session, id string) (*models.MaintenanceDetails, error) {
	m, err := s.get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	d := &models.MaintenanceDetails{MaintenanceRequest: *m}
	if d.Apartment, err = optional(s.apartments.Get(ctx, m.ApartmentID)); err != nil {
		return nil, err
	}
	if d.Requester, err = optional(s.users.Get(ctx, m.RequestedBy)); err != nil {
		return nil, err
	}
	if m.PaymentID != nil {
		if d.Payment, err = optional(s.payments.Get(ctx, *m.PaymentID)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Create raises a request and returns its id. Tenants raise requests for
// themselves only.
func (s *MaintenanceService) Create(ctx context.Context, sess models.Session, m models.MaintenanceRequest) (string, error) {
	if m.ApartmentID == "" || m.RequestedBy == "" || strings.TrimSpace(m.Issue) == "" {
		return "", apperr.Validationf("Apartment, requested by, and issue description are required")
	}
	if err := requireSelfOrAdmin(sess, m.RequestedBy); err != nil {
		return "", err
	}
	if m.EstimatedCost < 0 {
		return "", apperr.Validationf("Estimated cost cannot be negative")
	}
	if m.Status == "" {
		m.Status = models.MaintenancePending
	}
	if !validMaintenanceStatus(m.Status) {
		return "", apperr.Validationf("unknown maintenance status %q", m.Status)
	}
	if m.RequestDate.IsZero() {
		m.RequestDate = s.now().UTC()
	}
	m.PaymentID = nil
	return s.maintenance.Create(ctx, m)
}

// Update applies a partial update. Tenants may edit their own requests but
// not the assignment, status or cost.
func (s *MaintenanceService) Update(ctx context.Context, sess models.Session, id string, p models.MaintenancePatch) error {
	if p.Status != nil && !validMaintenanceStatus(*p.Status) {
		return apperr.Validationf("unknown maintenance status %q", *p.Status)
	}
	if p.EstimatedCost != nil && *p.EstimatedCost < 0 {
		return apperr.Validationf("Estimated cost cannot be negative")
	}
	if !sess.IsAdmin() {
		if p.Status != nil || p.AssignedTo != nil || p.EstimatedCost != nil || p.RequiresPayment != nil {
			return apperr.New(apperr.PermissionDenied, "")
		}
		if _, err := s.get(ctx, sess, id); err != nil {
			return err
		}
	}
	return s.maintenance.Update(ctx, id, p)
}

// LinkPayment records paymentID as the payment covering the request.
func (s *MaintenanceService) LinkPayment(ctx context.Context, sess models.Session, id, paymentID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if paymentID == "" {
		return apperr.Validationf("paymentId is required")
	}
	return s.maintenance.SetPayment(ctx, id, paymentID)
}

// Delete removes a request. A payment linked to it keeps its maintenanceId.
func (s *MaintenanceService) Delete(ctx context.Context, sess models.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.maintenance.Delete(ctx, id)
}
