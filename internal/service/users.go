package service

import (
	"context"
	"errors"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// Accounts creates and removes login identities together with their user
// document. It is implemented by AuthService.
type Accounts interface {
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	RemoveIdentity(ctx context.Context, id string) error
}

// UserService implements the users collection operations.
type UserService struct {
	users      UserRepository
	apartments ApartmentRepository
	rel        *Relationships
	accounts   Accounts
	log        *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users UserRepository, apartments ApartmentRepository, rel *Relationships, accounts Accounts, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, apartments: apartments, rel: rel, accounts: accounts, log: log}
}

// List returns the users visible to the caller, each joined with its
// apartment. Tenants see only themselves.
func (s *UserService) List(ctx context.Context, sess models.Session) ([]models.UserWithApartment, error) {
	if !sess.IsAdmin() {
		u, err := s.Get(ctx, sess, sess.UserID())
		if err != nil {
			return nil, err
		}
		return []models.UserWithApartment{*u}, nil
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	apartments, err := s.apartments.List(ctx)
	if err != nil {
		return nil, err
	}
	return joinUsers(users, apartments), nil
}

// ListPlain returns the visible users without joining apartments.
func (s *UserService) ListPlain(ctx context.Context, sess models.Session) ([]models.User, error) {
	if !sess.IsAdmin() {
		u, err := s.users.Get(ctx, sess.UserID())
		if err != nil {
			return nil, err
		}
		return []models.User{*u}, nil
	}
	return s.users.List(ctx)
}

// Get returns one user joined with its apartment.
func (s *UserService) Get(ctx context.Context, sess models.Session, id string) (*models.UserWithApartment, error) {
	if err := requireSelfOrAdmin(sess, id); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row := models.UserWithApartment{User: *u}
	if u.ApartmentID != nil {
		a, err := s.apartments.Get(ctx, *u.ApartmentID)
		switch {
		case err == nil:
			row.Apartment = a
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return &row, nil
}

// Create registers a new account on behalf of an admin and returns its id.
func (s *UserService) Create(ctx context.Context, sess models.Session, reg models.Registration) (string, error) {
	if err := requireAdmin(sess); err != nil {
		return "", err
	}
	u, err := s.accounts.Register(ctx, reg)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// Update applies a partial update. Tenants may only edit their own contact
// details. When the patch carries apartmentId the apartments are updated to
// match and the status follows the new reference unless the patch sets one.
func (s *UserService) Update(ctx context.Context, sess models.Session, id string, p models.UserPatch) error {
	if err := requireSelfOrAdmin(sess, id); err != nil {
		return err
	}
	if !sess.IsAdmin() && (p.Email != nil || p.Role != nil || p.Status != nil || p.ApartmentID.Set) {
		return apperr.New(apperr.PermissionDenied, "Only an admin can change email, role, status or apartment.")
	}
	if p.Role != nil && *p.Role != models.RoleAdmin && *p.Role != models.RoleTenant {
		return apperr.Validationf("unknown role %q", *p.Role)
	}

	old, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.ApartmentID.Set && p.Status == nil {
		st := UserStatusFor(old.Status, p.ApartmentID.ID)
		p.Status = &st
	}
	if err := s.users.Update(ctx, id, p); err != nil {
		return err
	}
	if p.ApartmentID.Set {
		s.rel.OnUserApartmentChanged(ctx, id, old.ApartmentID, p.ApartmentID.ID)
	}
	return nil
}

// Delete removes a user: the apartment it rented is released first, then the
// document and finally the login identity.
func (s *UserService) Delete(ctx context.Context, sess models.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	s.rel.OnUserDeleted(ctx, *u)
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.accounts.RemoveIdentity(ctx, id); err != nil {
		s.log.Error("failed to remove identity of deleted user", zap.String("id", id), zap.Error(err))
	}
	return nil
}
