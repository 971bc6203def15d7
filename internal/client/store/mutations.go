package store

import (
	"context"
	"slices"

	"github.com/clivebixby0/myapt-2/internal/models"
)

// AddUser creates a user and reloads, since the new user may already hold
// an apartment.
func (s *Store) AddUser(ctx context.Context, reg models.Registration) (string, error) {
	defer s.begin()()
	id, err := s.backend.CreateUser(ctx, reg)
	if err != nil {
		return "", err
	}
	s.reload(ctx)
	return id, nil
}

// UpdateUser writes p. A patch that touches apartmentId is followed by a
// reload; any other patch is applied to the snapshot.
func (s *Store) UpdateUser(ctx context.Context, id string, p models.UserPatch) error {
	defer s.begin()()
	if err := s.backend.UpdateUser(ctx, id, p); err != nil {
		return err
	}
	if p.ApartmentID.Set {
		s.reload(ctx)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			p.Apply(&s.users[i].User)
		}
	}
	for i := range s.apartments {
		if t := s.apartments[i].Tenant; t != nil && t.ID == id {
			u := *t
			p.Apply(&u)
			s.apartments[i].Tenant = &u
		}
	}
	return nil
}

// DeleteUser removes a user and reloads to pick up the released apartment.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	defer s.begin()()
	if err := s.withDeleteTimeout(ctx, func(ctx context.Context) error {
		return s.backend.DeleteUser(ctx, id)
	}); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// AddApartment creates an apartment and appends it. New apartments never
// have a tenant.
func (s *Store) AddApartment(ctx context.Context, a models.Apartment) (string, error) {
	defer s.begin()()
	id, err := s.backend.CreateApartment(ctx, a)
	if err != nil {
		return "", err
	}
	a.ID = id
	a.TenantID = nil
	if a.Status == "" {
		a.Status = models.ApartmentAvailable
	}
	a.CreatedAt = s.now()
	a.UpdatedAt = a.CreatedAt

	s.mu.Lock()
	s.apartments = append(s.apartments, models.ApartmentWithTenant{Apartment: a})
	s.mu.Unlock()
	return id, nil
}

// UpdateApartment writes p. A patch that touches tenantId is followed by a
// reload; any other patch is applied to the snapshot.
func (s *Store) UpdateApartment(ctx context.Context, id string, p models.ApartmentPatch) error {
	defer s.begin()()
	if err := s.backend.UpdateApartment(ctx, id, p); err != nil {
		return err
	}
	if p.TenantID.Set {
		s.reload(ctx)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apartments {
		if s.apartments[i].ID == id {
			p.Apply(&s.apartments[i].Apartment)
		}
	}
	for i := range s.users {
		if a := s.users[i].Apartment; a != nil && a.ID == id {
			cp := *a
			p.Apply(&cp)
			s.users[i].Apartment = &cp
		}
	}
	return nil
}

// DeleteApartment removes an apartment and reloads to pick up the released
// tenant.
func (s *Store) DeleteApartment(ctx context.Context, id string) error {
	defer s.begin()()
	if err := s.withDeleteTimeout(ctx, func(ctx context.Context) error {
		return s.backend.DeleteApartment(ctx, id)
	}); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// AssignTenant pairs the apartment with the tenant and reloads.
func (s *Store) AssignTenant(ctx context.Context, apartmentID, tenantID string) error {
	defer s.begin()()
	if err := s.backend.AssignTenant(ctx, apartmentID, tenantID); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// UnassignTenant clears the pair and reloads.
func (s *Store) UnassignTenant(ctx context.Context, apartmentID, tenantID string) error {
	defer s.begin()()
	if err := s.backend.UnassignTenant(ctx, apartmentID, tenantID); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// AddPayment records a payment. A payment linked to a maintenance request is
// followed by a reload, since the request gains a paymentId; otherwise the
// payment is appended. When the server kept the payment but failed to link
// it, the store reloads and returns both the id and the error.
func (s *Store) AddPayment(ctx context.Context, p models.Payment) (string, error) {
	defer s.begin()()
	if p.MaintenanceID != nil && *p.MaintenanceID == "" {
		p.MaintenanceID = nil
	}
	id, err := s.backend.CreatePayment(ctx, p)
	if err != nil {
		if id != "" {
			s.reload(ctx)
		}
		return id, err
	}
	if p.MaintenanceID != nil {
		s.reload(ctx)
		return id, nil
	}

	p.ID = id
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	s.mu.Lock()
	s.payments = append(s.payments, p)
	s.mu.Unlock()
	return id, nil
}

// UpdatePayment writes p and applies it to the snapshot.
func (s *Store) UpdatePayment(ctx context.Context, id string, p models.PaymentPatch) error {
	defer s.begin()()
	if err := s.backend.UpdatePayment(ctx, id, p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == id {
			p.Apply(&s.payments[i])
		}
	}
	return nil
}

// DeletePayment removes a payment from the server and the snapshot. A linked
// maintenance request keeps its paymentId.
func (s *Store) DeletePayment(ctx context.Context, id string) error {
	defer s.begin()()
	if err := s.withDeleteTimeout(ctx, func(ctx context.Context) error {
		return s.backend.DeletePayment(ctx, id)
	}); err != nil {
		return err
	}
	s.mu.Lock()
	s.payments = slices.DeleteFunc(s.payments, func(p models.Payment) bool { return p.ID == id })
	s.mu.Unlock()
	return nil
}

// AddMaintenance creates a maintenance request and appends it.
func (s *Store) AddMaintenance(ctx context.Context, m models.MaintenanceRequest) (string, error) {
	defer s.begin()()
	id, err := s.backend.CreateMaintenance(ctx, m)
	if err != nil {
		return "", err
	}
	m.ID = id
	m.PaymentID = nil
	if m.Status == "" {
		m.Status = models.MaintenancePending
	}
	if m.RequestDate.IsZero() {
		m.RequestDate = s.now()
	}
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt

	s.mu.Lock()
	s.maintenance = append(s.maintenance, m)
	s.mu.Unlock()
	return id, nil
}

// UpdateMaintenance writes p and applies it to the snapshot.
func (s *Store) UpdateMaintenance(ctx context.Context, id string, p models.MaintenancePatch) error {
	defer s.begin()()
	if err := s.backend.UpdateMaintenance(ctx, id, p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.maintenance {
		if s.maintenance[i].ID == id {
			p.Apply(&s.maintenance[i])
		}
	}
	return nil
}

// DeleteMaintenance removes a request from the server and the snapshot. A
// linked payment keeps its maintenanceId.
func (s *Store) DeleteMaintenance(ctx context.Context, id string) error {
	defer s.begin()()
	if err := s.withDeleteTimeout(ctx, func(ctx context.Context) error {
		return s.backend.DeleteMaintenance(ctx, id)
	}); err != nil {
		return err
	}
	s.mu.Lock()
	s.maintenance = slices.DeleteFunc(s.maintenance, func(m models.MaintenanceRequest) bool { return m.ID == id })
	s.mu.Unlock()
	return nil
}

// LinkPaymentToMaintenance records the payment on the request and reloads.
func (s *Store) LinkPaymentToMaintenance(ctx context.Context, maintenanceID, paymentID string) error {
	defer s.begin()()
	if err := s.backend.LinkPayment(ctx, maintenanceID, paymentID); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}
