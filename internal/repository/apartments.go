package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/google/uuid"
)

const apartmentColumns = `id, apartment_number, building, floor, bedrooms, bathrooms, square_feet, monthly_rent, description, status, tenant_id, created_at, updated_at`

// PostgresApartmentRepository stores apartments in PostgreSQL.
type PostgresApartmentRepository struct {
	DB *sql.DB
}

// NewPostgresApartmentRepository creates a PostgresApartmentRepository.
func NewPostgresApartmentRepository(db *sql.DB) *PostgresApartmentRepository {
	return &PostgresApartmentRepository{DB: db}
}

func scanApartment(s scanner) (models.Apartment, error) {
	var (
		a      models.Apartment
		tenant sql.NullString
	)
	err := s.Scan(&a.ID, &a.Number, &a.Building, &a.Floor, &a.Bedrooms, &a.Bathrooms, &a.SquareFeet,
		&a.MonthlyRent, &a.Description, &a.Status, &tenant, &a.CreatedAt, &a.UpdatedAt)
	a.TenantID = refFromNull(tenant)
	return a, err
}

// List returns every apartment ordered by building and number.
func (r *PostgresApartmentRepository) List(ctx context.Context) ([]models.Apartment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+apartmentColumns+` FROM apartments ORDER BY building, apartment_number`)
	if err != nil {
		return nil, classify("list apartments", err)
	}
	defer rows.Close()

	apartments := []models.Apartment{}
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		apartments = append(apartments, a)
	}
	return apartments, rows.Err()
}

// Get fetches a single apartment by id.
func (r *PostgresApartmentRepository) Get(ctx context.Context, id string) (*models.Apartment, error) {
	a, err := scanApartment(r.DB.QueryRowContext(ctx, `SELECT `+apartmentColumns+` FROM apartments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound("apartment", id, err)
	}
	return &a, nil
}

// Create inserts an apartment without a tenant and returns its new id.
func (r *PostgresApartmentRepository) Create(ctx context.Context, a models.Apartment) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO apartments (id, apartment_number, building, floor, bedrooms, bathrooms, square_feet, monthly_rent, description, status, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)
	`, id, a.Number, a.Building, a.Floor, a.Bedrooms, a.Bathrooms, a.SquareFeet, a.MonthlyRent, a.Description, a.Status)
	if err != nil {
		return "", classify("create apartment", err)
	}
	return id, nil
}

// Update writes the fields present in p. An empty patch is a no-op.
func (r *PostgresApartmentRepository) Update(ctx context.Context, id string, p models.ApartmentPatch) error {
	var s setList
	addPtr(&s, "apartment_number", p.Number)
	addPtr(&s, "building", p.Building)
	addPtr(&s, "floor", p.Floor)
	addPtr(&s, "bedrooms", p.Bedrooms)
	addPtr(&s, "bathrooms", p.Bathrooms)
	addPtr(&s, "square_feet", p.SquareFeet)
	addPtr(&s, "monthly_rent", p.MonthlyRent)
	addPtr(&s, "description", p.Description)
	addPtr(&s, "status", p.Status)
	if p.TenantID.Set {
		s.add("tenant_id", nullable(p.TenantID.ID))
	}
	if s.empty() {
		return nil
	}
	q, args := s.query("apartments", id)
	return execOne(ctx, r.DB, "apartment", id, q, args...)
}

// SetTenant points the apartment at tenantID (nil clears it) and sets the
// status.
func (r *PostgresApartmentRepository) SetTenant(ctx context.Context, id string, tenantID *string, status models.ApartmentStatus) error {
	return execOne(ctx, r.DB, "apartment", id,
		`UPDATE apartments SET tenant_id = $1, status = $2, updated_at = now() WHERE id = $3`,
		nullable(tenantID), status, id)
}

// Delete removes the apartment.
func (r *PostgresApartmentRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, "apartment", id, `DELETE FROM apartments WHERE id = $1`, id)
}
