package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/google/uuid"
)

const paymentColumns = `id, tenant_id, apartment_id, amount, payment_type, payment_method, payment_date, status, description, maintenance_id, created_at, updated_at`

// PostgresPaymentRepository stores payments in PostgreSQL.
type PostgresPaymentRepository struct {
	DB *sql.DB
}

// NewPostgresPaymentRepository creates a PostgresPaymentRepository.
func NewPostgresPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{DB: db}
}

func scanPayment(s scanner) (models.Payment, error) {
	var (
		p           models.Payment
		maintenance sql.NullString
	)
	err := s.Scan(&p.ID, &p.TenantID, &p.ApartmentID, &p.Amount, &p.Type, &p.Method, &p.Date,
		&p.Status, &p.Description, &maintenance, &p.CreatedAt, &p.UpdatedAt)
	p.MaintenanceID = refFromNull(maintenance)
	return p, err
}

func (r *PostgresPaymentRepository) query(ctx context.Context, op, q string, args ...any) ([]models.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// List returns every payment, newest first.
func (r *PostgresPaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	return r.query(ctx, "list payments",
		`SELECT `+paymentColumns+` FROM payments ORDER BY payment_date DESC`)
}

// ListByTenant returns the payments made by one tenant, newest first.
func (r *PostgresPaymentRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Payment, error) {
	return r.query(ctx, "list payments by tenant",
		`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = $1 ORDER BY payment_date DESC`, tenantID)
}

// Get fetches a single payment by id.
func (r *PostgresPaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	p, err := scanPayment(r.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound("payment", id, err)
	}
	return &p, nil
}

// Create inserts a payment and returns its new id.
func (r *PostgresPaymentRepository) Create(ctx context.Context, p models.Payment) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO payments (id, tenant_id, apartment_id, amount, payment_type, payment_method, payment_date, status, description, maintenance_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, p.TenantID, p.ApartmentID, p.Amount, p.Type, p.Method, p.Date, p.Status, p.Description, nullable(p.MaintenanceID))
	if err != nil {
		return "", classify("create payment", err)
	}
	return id, nil
}

// Update writes the fields present in p. An empty patch is a no-op.
func (r *PostgresPaymentRepository) Update(ctx context.Context, id string, p models.PaymentPatch) error {
	var s setList
	addPtr(&s, "tenant_id", p.TenantID)
	addPtr(&s, "apartment_id", p.ApartmentID)
	addPtr(&s, "amount", p.Amount)
	addPtr(&s, "payment_type", p.Type)
	addPtr(&s, "payment_method", p.Method)
	addPtr(&s, "payment_date", p.Date)
	addPtr(&s, "status", p.Status)
	addPtr(&s, "description", p.Description)
	if s.empty() {
		return nil
	}
	q, args := s.query("payments", id)
	return execOne(ctx, r.DB, "payment", id, q, args...)
}

// Delete removes the payment. The maintenance request it covers keeps its
// payment_id.
func (r *PostgresPaymentRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, "payment", id, `DELETE FROM payments WHERE id = $1`, id)
}
