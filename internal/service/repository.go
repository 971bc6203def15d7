// Package service implements the business rules of the property management
// backend: authorization, the user/apartment relationship, and the identity
// provider. Persistence is delegated to the repository interfaces below.
package service

import (
	"context"
	"time"

	"github.com/clivebixby0/myapt-2/internal/models"
)

// UserRepository defines the persistence operations on user documents.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u models.User) error
	Update(ctx context.Context, id string, p models.UserPatch) error
	// SetApartment writes the apartment reference and the status. A disabled
	// or suspended user keeps its status.
	SetApartment(ctx context.Context, id string, apartmentID *string, status models.UserStatus) error
	Delete(ctx context.Context, id string) error
}

// ApartmentRepository defines the persistence operations on apartments.
type ApartmentRepository interface {
	List(ctx context.Context) ([]models.Apartment, error)
	Get(ctx context.Context, id string) (*models.Apartment, error)
	Create(ctx context.Context, a models.Apartment) (string, error)
	Update(ctx context.Context, id string, p models.ApartmentPatch) error
	SetTenant(ctx context.Context, id string, tenantID *string, status models.ApartmentStatus) error
	Delete(ctx context.Context, id string) error
}

// PaymentRepository defines the persistence operations on payments.
type PaymentRepository interface {
	List(ctx context.Context) ([]models.Payment, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, p models.Payment) (string, error)
	Update(ctx context.Context, id string, p models.PaymentPatch) error
	Delete(ctx context.Context, id string) error
}

// MaintenanceRepository defines the persistence operations on maintenance
// requests.
type MaintenanceRepository interface {
	List(ctx context.Context) ([]models.MaintenanceRequest, error)
	ListByApartment(ctx context.Context, apartmentID string) ([]models.MaintenanceRequest, error)
	ListByRequester(ctx context.Context, userID string) ([]models.MaintenanceRequest, error)
	Get(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	Create(ctx context.Context, m models.MaintenanceRequest) (string, error)
	Update(ctx context.Context, id string, p models.MaintenancePatch) error
	SetPayment(ctx context.Context, id, paymentID string) error
	Delete(ctx context.Context, id string) error
}

// IdentityRepository stores login credentials.
type IdentityRepository interface {
	Create(ctx context.Context, id models.Identity) error
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	Delete(ctx context.Context, id string) error
}

// TokenRepository tracks signed-out session tokens.
type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
