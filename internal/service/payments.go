package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// PaymentService implements the payments collection operations.
type PaymentService struct {
	payments    PaymentRepository
	maintenance MaintenanceRepository
	users       UserRepository
	apartments  ApartmentRepository
	log         *zap.Logger
	now         func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(
	payments PaymentRepository,
	maintenance MaintenanceRepository,
	users UserRepository,
	apartments ApartmentRepository,
	log *zap.Logger,
) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		payments:    payments,
		maintenance: maintenance,
		users:       users,
		apartments:  apartments,
		log:         log,
		now:         time.Now,
	}
}

func validPaymentStatus(st models.PaymentStatus) bool {
	switch st {
	case models.PaymentPending, models.PaymentPaid, models.PaymentOverdue, models.PaymentCancelled:
		return true
	}
	return false
}

// List returns all payments for admins and the caller's own for tenants.
func (s *PaymentService) List(ctx context.Context, sess models.Session) ([]models.Payment, error) {
	if sess.IsAdmin() {
		return s.payments.List(ctx)
	}
	return s.payments.ListByTenant(ctx, sess.UserID())
}

// ListByTenant returns the payments of one tenant.
func (s *PaymentService) ListByTenant(ctx context.Context, sess models.Session, tenantID string) ([]models.Payment, error) {
	if err := requireSelfOrAdmin(sess, tenantID); err != nil {
		return nil, err
	}
	return s.payments.ListByTenant(ctx, tenantID)
}

func (s *PaymentService) get(ctx context.Context, sess models.Session, id string) (*models.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(sess, p.TenantID); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, sess models.Session, id string) (*models.Payment, error) {
	return s.get(ctx, sess, id)
}

// Details returns a payment with its tenant, apartment and maintenance
// request. Missing related records are left out.
func (s *PaymentService) Details(ctx context.Context, sess models.Session, id string) (*models.PaymentDetails, error) {
	p, err := s.get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	d := &models.PaymentDetails{Payment: *p}
	if d.Tenant, err = optional(s.users.Get(ctx, p.TenantID)); err != nil {
		return nil, err
	}
	if d.Apartment, err = optional(s.apartments.Get(ctx, p.ApartmentID)); err != nil {
		return nil, err
	}
	if p.MaintenanceID != nil {
		if d.Maintenance, err = optional(s.maintenance.Get(ctx, *p.MaintenanceID)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Create records a payment and returns its id. Tenants may only record
// their own payments. When the payment names a maintenance request, that
// request is linked back to it; if the link fails the payment still exists
// and its id is returned together with the error.
func (s *PaymentService) Create(ctx context.Context, sess models.Session, p models.Payment) (string, error) {
	if p.TenantID == "" || p.ApartmentID == "" {
		return "", apperr.Validationf("Tenant, apartment, and amount are required")
	}
	if err := requireSelfOrAdmin(sess, p.TenantID); err != nil {
		return "", err
	}
	if p.Amount < 0 {
		return "", apperr.Validationf("Amount cannot be negative")
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if !validPaymentStatus(p.Status) {
		return "", apperr.Validationf("unknown payment status %q", p.Status)
	}
	if p.Date.IsZero() {
		p.Date = s.now().UTC()
	}
	if p.MaintenanceID != nil && *p.MaintenanceID == "" {
		p.MaintenanceID = nil
	}

	id, err := s.payments.Create(ctx, p)
	if err != nil {
		return "", err
	}
	if p.MaintenanceID != nil {
		if err := s.maintenance.SetPayment(ctx, *p.MaintenanceID, id); err != nil {
			s.log.Error("failed to link payment to maintenance request",
				zap.String("payment", id), zap.String("maintenance", *p.MaintenanceID), zap.Error(err))
			return id, fmt.Errorf("link maintenance request: %w", err)
		}
	}
	return id, nil
}

// Update applies a partial update. Admin only.
func (s *PaymentService) Update(ctx context.Context, sess models.Session, id string, p models.PaymentPatch) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if p.Amount != nil && *p.Amount < 0 {
		return apperr.Validationf("Amount cannot be negative")
	}
	if p.Status != nil && !validPaymentStatus(*p.Status) {
		return apperr.Validationf("unknown payment status %q", *p.Status)
	}
	return s.payments.Update(ctx, id, p)
}

// Delete removes a payment. A maintenance request linked to it keeps its
// paymentId.
func (s *PaymentService) Delete(ctx context.Context, sess models.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.payments.Delete(ctx, id)
}

// optional turns a not-found lookup into a nil result.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return v, err
}
