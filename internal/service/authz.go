package service

import (
	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
)

func requireAdmin(s models.Session) error {
	if !s.IsAdmin() {
		return apperr.New(apperr.PermissionDenied, "")
	}
	return nil
}

// requireSelfOrAdmin allows admins and the user identified by userID.
func requireSelfOrAdmin(s models.Session, userID string) error {
	if s.IsAdmin() || s.UserID() == userID {
		return nil
	}
	return apperr.New(apperr.PermissionDenied, "")
}

// ownsApartment reports whether the caller rents the apartment.
func ownsApartment(s models.Session, a models.Apartment) bool {
	if a.TenantID != nil && *a.TenantID == s.UserID() {
		return true
	}
	return s.User.ApartmentID != nil && *s.User.ApartmentID == a.ID
}
