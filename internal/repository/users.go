package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clivebixby0/myapt-2/internal/models"
)

const userColumns = `id, email, username, full_name, phone, address, country, role, status, apartment_id, created_at, updated_at`

// PostgresUserRepository stores user documents in PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func scanUser(s scanner) (models.User, error) {
	var (
		u   models.User
		apt sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.Phone, &u.Address, &u.Country,
		&u.Role, &u.Status, &apt, &u.CreatedAt, &u.UpdatedAt)
	u.ApartmentID = refFromNull(apt)
	return u, err
}

// List returns every user ordered by creation time.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get fetches a single user by id. A missing user yields apperr.ErrNotFound.
func (r *PostgresUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound("user", id, err)
	}
	return &u, nil
}

// Create inserts a user document. The id must already be set to the
// identity subject id.
func (r *PostgresUserRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, username, full_name, phone, address, country, role, status, apartment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.Username, u.FullName, u.Phone, u.Address, u.Country, u.Role, u.Status, nullable(u.ApartmentID))
	return classify("create user", err)
}

// Update writes the fields present in p. An empty patch is a no-op.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, p models.UserPatch) error {
	var s setList
	addPtr(&s, "email", p.Email)
	addPtr(&s, "username", p.Username)
	addPtr(&s, "full_name", p.FullName)
	addPtr(&s, "phone", p.Phone)
	addPtr(&s, "address", p.Address)
	addPtr(&s, "country", p.Country)
	addPtr(&s, "role", p.Role)
	addPtr(&s, "status", p.Status)
	if p.ApartmentID.Set {
		s.add("apartment_id", nullable(p.ApartmentID.ID))
	}
	if s.empty() {
		return nil
	}
	q, args := s.query("users", id)
	return execOne(ctx, r.DB, "user", id, q, args...)
}

// SetApartment points the user at apartmentID (nil clears it) and sets the
// status, except that a disabled or suspended user keeps its status.
func (r *PostgresUserRepository) SetApartment(ctx context.Context, id string, apartmentID *string, status models.UserStatus) error {
	return execOne(ctx, r.DB, "user", id, `
		UPDATE users
		   SET apartment_id = $1,
		       status = CASE WHEN status IN ('disabled', 'suspended') THEN status ELSE $2 END,
		       updated_at = now()
		 WHERE id = $3
	`, nullable(apartmentID), status, id)
}

// Delete removes the user document.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, "user", id, `DELETE FROM users WHERE id = $1`, id)
}
