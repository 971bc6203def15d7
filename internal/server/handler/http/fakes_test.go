package http

import (
	"context"
	"io"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/clivebixby0/myapt-2/internal/service"
)

// fakeAuthService implements AuthService and middleware.Authenticator for testing.
// Tokens of the form "admin" and "tenant" resolve to fixed sessions.
type fakeAuthService struct {
	SignUpFunc func(ctx context.Context, reg models.Registration) (*models.SignInResult, error)
	SignInFunc func(ctx context.Context, creds models.Credentials) (*models.SignInResult, error)
	signedOut  []string
}

var (
	adminUser  = models.User{ID: "admin", Role: models.RoleAdmin, Status: models.UserActive}
	tenantUser = models.User{ID: "u1", Role: models.RoleTenant, Status: models.UserAssigned, ApartmentID: models.StringPtr("a1")}
)

func (f *fakeAuthService) SignUp(ctx context.Context, reg models.Registration) (*models.SignInResult, error) {
	return f.SignUpFunc(ctx, reg)
}

func (f *fakeAuthService) SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error) {
	return f.SignInFunc(ctx, creds)
}

func (f *fakeAuthService) SignOut(ctx context.Context, sess models.Session) error {
	f.signedOut = append(f.signedOut, sess.TokenID)
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	switch token {
	case "admin":
		return &models.Session{TokenID: "t-admin", User: adminUser}, nil
	case "tenant":
		return &models.Session{TokenID: "t-tenant", User: tenantUser}, nil
	}
	return nil, apperr.New(apperr.Unauthenticated, "")
}

type fakeUserService struct {
	ListFunc      func(ctx context.Context, sess models.Session) ([]models.UserWithApartment, error)
	ListPlainFunc func(ctx context.Context, sess models.Session) ([]models.User, error)
	UpdateFunc    func(ctx context.Context, sess models.Session, id string, p models.UserPatch) error
}

func (f *fakeUserService) List(ctx context.Context, sess models.Session) ([]models.UserWithApartment, error) {
	return f.ListFunc(ctx, sess)
}

func (f *fakeUserService) ListPlain(ctx context.Context, sess models.Session) ([]models.User, error) {
	return f.ListPlainFunc(ctx, sess)
}

func (f *fakeUserService) Get(ctx context.Context, sess models.Session, id string) (*models.UserWithApartment, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeUserService) Create(ctx context.Context, sess models.Session, reg models.Registration) (string, error) {
	return "new-user", nil
}

func (f *fakeUserService) Update(ctx context.Context, sess models.Session, id string, p models.UserPatch) error {
	return f.UpdateFunc(ctx, sess, id, p)
}

func (f *fakeUserService) Delete(ctx context.Context, sess models.Session, id string) error {
	return nil
}

type fakeApartmentService struct {
	AssignFunc   func(ctx context.Context, sess models.Session, id, tenantID string) error
	UnassignFunc func(ctx context.Context, sess models.Session, id, tenantID string) error
}

func (f *fakeApartmentService) List(ctx context.Context, sess models.Session) ([]models.ApartmentWithTenant, error) {
	return []models.ApartmentWithTenant{}, nil
}

func (f *fakeApartmentService) Get(ctx context.Context, sess models.Session, id string) (*models.ApartmentWithTenant, error) {
	return &models.ApartmentWithTenant{Apartment: models.Apartment{ID: id}}, nil
}

func (f *fakeApartmentService) Create(ctx context.Context, sess models.Session, a models.Apartment) (string, error) {
	return "apt-1", nil
}

func (f *fakeApartmentService) Update(ctx context.Context, sess models.Session, id string, p models.ApartmentPatch) error {
	return nil
}

func (f *fakeApartmentService) Delete(ctx context.Context, sess models.Session, id string) error {
	return nil
}

func (f *fakeApartmentService) Assign(ctx context.Context, sess models.Session, id, tenantID string) error {
	return f.AssignFunc(ctx, sess, id, tenantID)
}

func (f *fakeApartmentService) Unassign(ctx context.Context, sess models.Session, id, tenantID string) error {
	return f.UnassignFunc(ctx, sess, id, tenantID)
}

type fakePaymentService struct {
	ListByTenantFunc func(ctx context.Context, sess models.Session, tenantID string) ([]models.Payment, error)
	CreateFunc       func(ctx context.Context, sess models.Session, p models.Payment) (string, error)
}

func (f *fakePaymentService) List(ctx context.Context, sess models.Session) ([]models.Payment, error) {
	return []models.Payment{}, nil
}

func (f *fakePaymentService) ListByTenant(ctx context.Context, sess models.Session, tenantID string) ([]models.Payment, error) {
	return f.ListByTenantFunc(ctx, sess, tenantID)
}

func (f *fakePaymentService) Get(ctx context.Context, sess models.Session, id string) (*models.Payment, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakePaymentService) Details(ctx context.Context, sess models.Session, id string) (*models.PaymentDetails, error) {
	return &models.PaymentDetails{Payment: models.Payment{ID: id}}, nil
}

func (f *fakePaymentService) Create(ctx context.Context, sess models.Session, p models.Payment) (string, error) {
	return f.CreateFunc(ctx, sess, p)
}

func (f *fakePaymentService) Update(ctx context.Context, sess models.Session, id string, p models.PaymentPatch) error {
	return nil
}

func (f *fakePaymentService) Delete(ctx context.Context, sess models.Session, id string) error {
	return nil
}

type fakeMaintenanceService struct {
	ListByApartmentFunc func(ctx context.Context, sess models.Session, apartmentID string) ([]models.MaintenanceRequest, error)
	LinkPaymentFunc     func(ctx context.Context, sess models.Session, id, paymentID string) error
}

func (f *fakeMaintenanceService) List(ctx context.Context, sess models.Session) ([]models.MaintenanceRequest, error) {
	return []models.MaintenanceRequest{}, nil
}

func (f *fakeMaintenanceService) ListByApartment(ctx context.Context, sess models.Session, apartmentID string) ([]models.MaintenanceRequest, error) {
	return f.ListByApartmentFunc(ctx, sess, apartmentID)
}

func (f *fakeMaintenanceService) ListByRequester(ctx context.Context, sess models.Session, userID string) ([]models.MaintenanceRequest, error) {
	return []models.MaintenanceRequest{}, nil
}

func (f *fakeMaintenanceService) Get(ctx context.Context, sess models.Session, id string) (*models.MaintenanceRequest, error) {
	return &models.MaintenanceRequest{ID: id}, nil
}

func (f *fakeMaintenanceService) Details(ctx context.Context, sess models.Session, id string) (*models.MaintenanceDetails, error) {
	return &models.MaintenanceDetails{MaintenanceRequest: models.MaintenanceRequest{ID: id}}, nil
}

func (f *fakeMaintenanceService) Create(ctx context.Context, sess models.Session, m models.MaintenanceRequest) (string, error) {
	return "mnt-1", nil
}

func (f *fakeMaintenanceService) Update(ctx context.Context, sess models.Session, id string, p models.MaintenancePatch) error {
	return nil
}

func (f *fakeMaintenanceService) LinkPayment(ctx context.Context, sess models.Session, id, paymentID string) error {
	return f.LinkPaymentFunc(ctx, sess, id, paymentID)
}

func (f *fakeMaintenanceService) Delete(ctx context.Context, sess models.Session, id string) error {
	return nil
}

type fakeFileStore struct {
	UploadFunc func(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
}

func (f *fakeFileStore) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	return f.UploadFunc(ctx, path, body, contentType)
}

type fakeReconciler struct {
	calls int
}

func (f *fakeReconciler) Reconcile(ctx context.Context) (*service.ReconcileReport, error) {
	f.calls++
	return &service.ReconcileReport{Users: 2, Apartments: 1, Repairs: []service.Repair{}}, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }
