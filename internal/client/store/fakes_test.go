package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
)

// fakeBackend is an in-memory Backend. The ...Func fields, when set, replace
// the default behavior of the matching call.
type fakeBackend struct {
	mu          sync.Mutex
	users       map[string]models.User
	apartments  map[string]models.Apartment
	payments    []models.Payment
	maintenance []models.MaintenanceRequest
	seq         int
	calls       map[string]int

	ListUsersFunc       func(ctx context.Context) ([]models.UserWithApartment, error)
	ListUsersFlatFunc   func(ctx context.Context) ([]models.User, error)
	ListApartmentsFunc  func(ctx context.Context) ([]models.ApartmentWithTenant, error)
	ListPaymentsFunc    func(ctx context.Context) ([]models.Payment, error)
	ListMaintenanceFunc func(ctx context.Context) ([]models.MaintenanceRequest, error)
	CreatePaymentFunc   func(ctx context.Context, p models.Payment) (string, error)
	DeleteUserFunc      func(ctx context.Context, id string) error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:      map[string]models.User{},
		apartments: map[string]models.Apartment{},
		calls:      map[string]int{},
	}
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]models.UserWithApartment, error) {
	f.count("ListUsers")
	if f.ListUsersFunc != nil {
		return f.ListUsersFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.UserWithApartment{}
	for _, u := range f.users {
		row := models.UserWithApartment{User: u}
		if u.ApartmentID != nil {
			if a, ok := f.apartments[*u.ApartmentID]; ok {
				row.Apartment = &a
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeBackend) ListUsersFlat(ctx context.Context) ([]models.User, error) {
	f.count("ListUsersFlat")
	if f.ListUsersFlatFunc != nil {
		return f.ListUsersFlatFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeBackend) ListApartments(ctx context.Context) ([]models.ApartmentWithTenant, error) {
	f.count("ListApartments")
	if f.ListApartmentsFunc != nil {
		return f.ListApartmentsFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ApartmentWithTenant{}
	for _, a := range f.apartments {
		row := models.ApartmentWithTenant{Apartment: a}
		if a.TenantID != nil {
			if u, ok := f.users[*a.TenantID]; ok {
				row.Tenant = &u
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeBackend) ListPayments(ctx context.Context) ([]models.Payment, error) {
	f.count("ListPayments")
	if f.ListPaymentsFunc != nil {
		return f.ListPaymentsFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Payment{}, f.payments...), nil
}

func (f *fakeBackend) ListMaintenance(ctx context.Context) ([]models.MaintenanceRequest, error) {
	f.count("ListMaintenance")
	if f.ListMaintenanceFunc != nil {
		return f.ListMaintenanceFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.MaintenanceRequest{}, f.maintenance...), nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, reg models.Registration) (string, error) {
	f.count("CreateUser")
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("user")
	f.users[id] = models.User{ID: id, Email: reg.Email, FullName: reg.FullName, Role: models.RoleTenant, Status: models.UserActive}
	return id, nil
}

func (f *fakeBackend) UpdateUser(ctx context.Context, id string, p models.UserPatch) error {
	f.count("UpdateUser")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Apply(&u)
	f.users[id] = u
	return nil
}

func (f *fakeBackend) DeleteUser(ctx context.Context, id string) error {
	f.count("DeleteUser")
	if f.DeleteUserFunc != nil {
		return f.DeleteUserFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeBackend) CreateApartment(ctx context.Context, a models.Apartment) (string, error) {
	f.count("CreateApartment")
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.nextID("apt")
	a.TenantID = nil
	if a.Status == "" {
		a.Status = models.ApartmentAvailable
	}
	f.apartments[a.ID] = a
	return a.ID, nil
}

func (f *fakeBackend) UpdateApartment(ctx context.Context, id string, p models.ApartmentPatch) error {
	f.count("UpdateApartment")
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apartments[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Apply(&a)
	f.apartments[id] = a
	return nil
}

func (f *fakeBackend) DeleteApartment(ctx context.Context, id string) error {
	f.count("DeleteApartment")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.apartments, id)
	return nil
}

func (f *fakeBackend) AssignTenant(ctx context.Context, apartmentID, tenantID string) error {
	f.count("AssignTenant")
	f.mu.Lock()
	defer f.mu.Unlock()
	a, u := f.apartments[apartmentID], f.users[tenantID]
	a.TenantID, a.Status = &tenantID, models.ApartmentOccupied
	u.ApartmentID, u.Status = &apartmentID, models.UserAssigned
	f.apartments[apartmentID], f.users[tenantID] = a, u
	return nil
}

func (f *fakeBackend) UnassignTenant(ctx context.Context, apartmentID, tenantID string) error {
	f.count("UnassignTenant")
	f.mu.Lock()
	defer f.mu.Unlock()
	a, u := f.apartments[apartmentID], f.users[tenantID]
	a.TenantID, a.Status = nil, models.ApartmentAvailable
	u.ApartmentID, u.Status = nil, models.UserActive
	f.apartments[apartmentID], f.users[tenantID] = a, u
	return nil
}

func (f *fakeBackend) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	f.count("CreatePayment")
	if f.CreatePaymentFunc != nil {
		return f.CreatePaymentFunc(ctx, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID("pay")
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	f.payments = append(f.payments, p)
	if p.MaintenanceID != nil {
		for i := range f.maintenance {
			if f.maintenance[i].ID == *p.MaintenanceID {
				f.maintenance[i].PaymentID = models.StringPtr(p.ID)
			}
		}
	}
	return p.ID, nil
}

func (f *fakeBackend) UpdatePayment(ctx context.Context, id string, p models.PaymentPatch) error {
	f.count("UpdatePayment")
	return nil
}

func (f *fakeBackend) DeletePayment(ctx context.Context, id string) error {
	f.count("DeletePayment")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.payments {
		if f.payments[i].ID == id {
			f.payments = append(f.payments[:i], f.payments[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (f *fakeBackend) CreateMaintenance(ctx context.Context, m models.MaintenanceRequest) (string, error) {
	f.count("CreateMaintenance")
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.nextID("mnt")
	f.maintenance = append(f.maintenance, m)
	return m.ID, nil
}

func (f *fakeBackend) UpdateMaintenance(ctx context.Context, id string, p models.MaintenancePatch) error {
	f.count("UpdateMaintenance")
	return nil
}

func (f *fakeBackend) DeleteMaintenance(ctx context.Context, id string) error {
	f.count("DeleteMaintenance")
	return nil
}

func (f *fakeBackend) LinkPayment(ctx context.Context, maintenanceID, paymentID string) error {
	f.count("LinkPayment")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.maintenance {
		if f.maintenance[i].ID == maintenanceID {
			f.maintenance[i].PaymentID = &paymentID
			return nil
		}
	}
	return apperr.ErrNotFound
}
