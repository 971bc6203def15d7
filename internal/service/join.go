package service

import "github.com/clivebixby0/myapt-2/internal/models"

// joinUsers attaches to each user the apartment it points at. A reference to
// a missing apartment leaves Apartment nil.
func joinUsers(users []models.User, apartments []models.Apartment) []models.UserWithApartment {
	byID := make(map[string]models.Apartment, len(apartments))
	for _, a := range apartments {
		byID[a.ID] = a
	}
	out := make([]models.UserWithApartment, 0, len(users))
	for _, u := range users {
		row := models.UserWithApartment{User: u}
		if u.ApartmentID != nil {
			if a, ok := byID[*u.ApartmentID]; ok {
				row.Apartment = &a
			}
		}
		out = append(out, row)
	}
	return out
}

// joinApartments attaches to each apartment the user it points at.
func joinApartments(apartments []models.Apartment, users []models.User) []models.ApartmentWithTenant {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]models.ApartmentWithTenant, 0, len(apartments))
	for _, a := range apartments {
		row := models.ApartmentWithTenant{Apartment: a}
		if a.TenantID != nil {
			if u, ok := byID[*a.TenantID]; ok {
				row.Tenant = &u
			}
		}
		out = append(out, row)
	}
	return out
}
