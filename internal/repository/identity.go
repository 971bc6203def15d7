package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// PostgresIdentityRepository stores the identity provider's credentials.
type PostgresIdentityRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresIdentityRepository creates a PostgresIdentityRepository with the given database connection.
func NewPostgresIdentityRepository(db *sql.DB) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{DB: db}
}

// Create inserts an identity. A duplicate email yields an
// apperr.EmailAlreadyInUse error.
func (r *PostgresIdentityRepository) Create(ctx context.Context, id models.Identity) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash) VALUES ($1, $2, $3)`,
		id.ID, id.Email, id.PasswordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Wrap(apperr.EmailAlreadyInUse, err)
	}
	return classify("create identity", err)
}

// GetByEmail looks an identity up by its login email.
func (r *PostgresIdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var id models.Identity
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM identities WHERE email = $1`, email,
	).Scan(&id.ID, &id.Email, &id.PasswordHash, &id.CreatedAt)
	if err != nil {
		return nil, notFound("identity", email, err)
	}
	return &id, nil
}

// Delete removes an identity.
func (r *PostgresIdentityRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, "identity", id, `DELETE FROM identities WHERE id = $1`, id)
}

// PostgresTokenRepository records revoked session tokens until they expire.
type PostgresTokenRepository struct {
	DB *sql.DB
}

// NewPostgresTokenRepository creates a PostgresTokenRepository.
func NewPostgresTokenRepository(db *sql.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{DB: db}
}

// Revoke marks tokenID as signed out. Revoking twice is not an error.
func (r *PostgresTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		tokenID, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been signed out.
func (r *PostgresTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID,
	).Scan(&revoked)
	return revoked, err
}
