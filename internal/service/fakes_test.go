package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
)

func notFoundErr(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
}

// memUsers is an in-memory UserRepository. SetApartmentFunc, when set, runs
// before the write and can fail it.
type memUsers struct {
	mu               sync.Mutex
	rows             map[string]models.User
	SetApartmentFunc func(id string) error
	CreateFunc       func(u models.User) error
	ListFunc         func() error
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{rows: map[string]models.User{}}
	for _, u := range users {
		m.rows[u.ID] = u
	}
	return m
}

func (m *memUsers) List(ctx context.Context) ([]models.User, error) {
	if m.ListFunc != nil {
		if err := m.ListFunc(); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Get(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("user", id)
	}
	return &u, nil
}

func (m *memUsers) Create(ctx context.Context, u models.User) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(u); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID] = u
	return nil
}

func (m *memUsers) Update(ctx context.Context, id string, p models.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return notFoundErr("user", id)
	}
	p.Apply(&u)
	m.rows[id] = u
	return nil
}

func (m *memUsers) SetApartment(ctx context.Context, id string, apartmentID *string, status models.UserStatus) error {
	if m.SetApartmentFunc != nil {
		if err := m.SetApartmentFunc(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return notFoundErr("user", id)
	}
	u.ApartmentID = apartmentID
	if !models.Blocked(u.Status) {
		u.Status = status
	}
	m.rows[id] = u
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return notFoundErr("user", id)
	}
	delete(m.rows, id)
	return nil
}

func (m *memUsers) get(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type memApartments struct {
	mu            sync.Mutex
	rows          map[string]models.Apartment
	seq           int
	SetTenantFunc func(id string) error
}

func newMemApartments(apartments ...models.Apartment) *memApartments {
	m := &memApartments{rows: map[string]models.Apartment{}}
	for _, a := range apartments {
		m.rows[a.ID] = a
	}
	return m
}

func (m *memApartments) List(ctx context.Context) ([]models.Apartment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Apartment, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memApartments) Get(ctx context.Context, id string) (*models.Apartment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("apartment", id)
	}
	return &a, nil
}

func (m *memApartments) Create(ctx context.Context, a models.Apartment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	a.ID = fmt.Sprintf("apt-%d", m.seq)
	m.rows[a.ID] = a
	return a.ID, nil
}

func (m *memApartments) Update(ctx context.Context, id string, p models.ApartmentPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return notFoundErr("apartment", id)
	}
	p.Apply(&a)
	m.rows[id] = a
	return nil
}

func (m *memApartments) SetTenant(ctx context.Context, id string, tenantID *string, status models.ApartmentStatus) error {
	if m.SetTenantFunc != nil {
		if err := m.SetTenantFunc(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return notFoundErr("apartment", id)
	}
	a.TenantID = tenantID
	a.Status = status
	m.rows[id] = a
	return nil
}

func (m *memApartments) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return notFoundErr("apartment", id)
	}
	delete(m.rows, id)
	return nil
}

func (m *memApartments) get(id string) models.Apartment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type memPayments struct {
	rows map[string]models.Payment
	seq  int
}

func newMemPayments(payments ...models.Payment) *memPayments {
	m := &memPayments{rows: map[string]models.Payment{}}
	for _, p := range payments {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memPayments) List(ctx context.Context) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPayments) ListByTenant(ctx context.Context, tenantID string) ([]models.Payment, error) {
	all, _ := m.List(ctx)
	out := []models.Payment{}
	for _, p := range all {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) Get(ctx context.Context, id string) (*models.Payment, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("payment", id)
	}
	return &p, nil
}

func (m *memPayments) Create(ctx context.Context, p models.Payment) (string, error) {
	m.seq++
	p.ID = fmt.Sprintf("pay-%d", m.seq)
	m.rows[p.ID] = p
	return p.ID, nil
}

func (m *memPayments) Update(ctx context.Context, id string, pp models.PaymentPatch) error {
	p, ok := m.rows[id]
	if !ok {
		return notFoundErr("payment", id)
	}
	pp.Apply(&p)
	m.rows[id] = p
	return nil
}

func (m *memPayments) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return notFoundErr("payment", id)
	}
	delete(m.rows, id)
	return nil
}

type memMaintenance struct {
	rows map[string]models.MaintenanceRequest
	seq  int
}

func newMemMaintenance(requests ...models.MaintenanceRequest) *memMaintenance {
	m := &memMaintenance{rows: map[string]models.MaintenanceRequest{}}
	for _, r := range requests {
		m.rows[r.ID] = r
	}
	return m
}

func (m *memMaintenance) List(ctx context.Context) ([]models.MaintenanceRequest, error) {
	out := []models.MaintenanceRequest{}
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memMaintenance) filter(keep func(models.MaintenanceRequest) bool) []models.MaintenanceRequest {
	all, _ := m.List(context.Background())
	out := []models.MaintenanceRequest{}
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memMaintenance) ListByApartment(ctx context.Context, apartmentID string) ([]models.MaintenanceRequest, error) {
	return m.filter(func(r models.MaintenanceRequest) bool { return r.ApartmentID == apartmentID }), nil
}

func (m *memMaintenance) ListByRequester(ctx context.Context, userID string) ([]models.MaintenanceRequest, error) {
	return m.filter(func(r models.MaintenanceRequest) bool { return r.RequestedBy == userID }), nil
}

func (m *memMaintenance) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("maintenance request", id)
	}
	return &r, nil
}

func (m *memMaintenance) Create(ctx context.Context, r models.MaintenanceRequest) (string, error) {
	m.seq++
	r.ID = fmt.Sprintf("mnt-%d", m.seq)
	m.rows[r.ID] = r
	return r.ID, nil
}

func (m *memMaintenance) Update(ctx context.Context, id string, p models.MaintenancePatch) error {
	r, ok := m.rows[id]
	if !ok {
		return notFoundErr("maintenance request", id)
	}
	p.Apply(&r)
	m.rows[id] = r
	return nil
}

func (m *memMaintenance) SetPayment(ctx context.Context, id, paymentID string) error {
	r, ok := m.rows[id]
	if !ok {
		return notFoundErr("maintenance request", id)
	}
	r.PaymentID = &paymentID
	m.rows[id] = r
	return nil
}

func (m *memMaintenance) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return notFoundErr("maintenance request", id)
	}
	delete(m.rows, id)
	return nil
}

type memIdentities struct {
	rows map[string]models.Identity
}

func newMemIdentities() *memIdentities {
	return &memIdentities{rows: map[string]models.Identity{}}
}

func (m *memIdentities) Create(ctx context.Context, id models.Identity) error {
	for _, existing := range m.rows {
		if existing.Email == id.Email {
			return apperr.New(apperr.EmailAlreadyInUse, "")
		}
	}
	m.rows[id.ID] = id
	return nil
}

func (m *memIdentities) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	for _, id := range m.rows {
		if id.Email == email {
			return &id, nil
		}
	}
	return nil, notFoundErr("identity", email)
}

func (m *memIdentities) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return notFoundErr("identity", id)
	}
	delete(m.rows, id)
	return nil
}

type memTokens struct {
	revoked map[string]time.Time
}

func newMemTokens() *memTokens {
	return &memTokens{revoked: map[string]time.Time{}}
}

func (m *memTokens) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memTokens) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func adminSession() models.Session {
	return models.Session{User: models.User{ID: "admin", Role: models.RoleAdmin, Status: models.UserActive}}
}

func tenantSession(u models.User) models.Session {
	return models.Session{User: u}
}

func tenant(id string) models.User {
	return models.User{ID: id, Email: id + "@example.com", Role: models.RoleTenant, Status: models.UserActive}
}

func apartment(id string) models.Apartment {
	return models.Apartment{ID: id, Number: "Apt " + id, Building: "Building A", Status: models.ApartmentAvailable}
}
