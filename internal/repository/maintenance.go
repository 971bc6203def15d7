package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/google/uuid"
)

const maintenanceColumns = `id, apartment_id, requested_by, issue_type, issue, priority, status, assigned_to, notes, estimated_cost, requires_payment, request_date, payment_id, created_at, updated_at`

// PostgresMaintenanceRepository stores maintenance requests in PostgreSQL.
type PostgresMaintenanceRepository struct {
	DB *sql.DB
}

// NewPostgresMaintenanceRepository creates a PostgresMaintenanceRepository.
func NewPostgresMaintenanceRepository(db *sql.DB) *PostgresMaintenanceRepository {
	return &PostgresMaintenanceRepository{DB: db}
}

func scanMaintenance(s scanner) (models.MaintenanceRequest, error) {
	var (
		m       models.MaintenanceRequest
		payment sql.NullString
	)
	err := s.Scan(&m.ID, &m.ApartmentID, &m.RequestedBy, &m.IssueType, &m.Issue, &m.Priority, &m.Status,
		&m.AssignedTo, &m.Notes, &m.EstimatedCost, &m.RequiresPayment, &m.RequestDate, &payment,
		&m.CreatedAt, &m.UpdatedAt)
	m.PaymentID = refFromNull(payment)
	return m, err
}

func (r *PostgresMaintenanceRepository) query(ctx context.Context, op, q string, args ...any) ([]models.MaintenanceRequest, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	requests := []models.MaintenanceRequest{}
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		requests = append(requests, m)
	}
	return requests, rows.Err()
}

// List returns every maintenance request, newest first.
func (r *PostgresMaintenanceRepository) List(ctx context.Context) ([]models.MaintenanceRequest, error) {
	return r.query(ctx, "list maintenance",
		`SELECT `+maintenanceColumns+` FROM maintenance ORDER BY request_date DESC`)
}

// ListByApartment returns the requests raised for one apartment.
func (r *PostgresMaintenanceRepository) ListByApartment(ctx context.Context, apartmentID string) ([]models.MaintenanceRequest, error) {
	return r.query(ctx, "list maintenance by apartment",
		`SELECT `+maintenanceColumns+` FROM maintenance WHERE apartment_id = $1 ORDER BY request_date DESC`, apartmentID)
}

// ListByRequester returns the requests raised by one user.
func (r *PostgresMaintenanceRepository) ListByRequester(ctx context.Context, userID string) ([]models.MaintenanceRequest, error) {
	return r.query(ctx, "list maintenance by requester",
		`SELECT `+maintenanceColumns+` FROM maintenance WHERE requested_by = $1 ORDER BY request_date DESC`, userID)
}

// Get fetches a single maintenance request by id.
func (r *PostgresMaintenanceRepository) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	m, err := scanMaintenance(r.DB.QueryRowContext(ctx, `SELECT `+maintenanceColumns+` FROM maintenance WHERE id = $1`, id))
	if err != nil {
		return nil, notFound("maintenance request", id, err)
	}
	return &m, nil
}

// Create inserts a maintenance request without a payment and returns its
// new id.
func (r *PostgresMaintenanceRepository) Create(ctx context.Context, m models.MaintenanceRequest) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO maintenance (id, apartment_id, requested_by, issue_type, issue, priority, status, assigned_to, notes, estimated_cost, requires_payment, request_date, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL)
	`, id, m.ApartmentID, m.RequestedBy, m.IssueType, m.Issue, m.Priority, m.Status, m.AssignedTo, m.Notes,
		m.EstimatedCost, m.RequiresPayment, m.RequestDate)
	if err != nil {
		return "", classify("create maintenance request", err)
	}
	return id, nil
}

// Update writes the fields present in p. An empty patch is a no-op.
func (r *PostgresMaintenanceRepository) Update(ctx context.Context, id string, p models.MaintenancePatch) error {
	var s setList
	addPtr(&s, "issue_type", p.IssueType)
	addPtr(&s, "issue", p.Issue)
	addPtr(&s, "priority", p.Priority)
	addPtr(&s, "status", p.Status)
	addPtr(&s, "assigned_to", p.AssignedTo)
	addPtr(&s, "notes", p.Notes)
	addPtr(&s, "estimated_cost", p.EstimatedCost)
	addPtr(&s, "requires_payment", p.RequiresPayment)
	if s.empty() {
		return nil
	}
	q, args := s.query("maintenance", id)
	return execOne(ctx, r.DB, "maintenance request", id, q, args...)
}

// SetPayment links the request to the payment covering its cost.
func (r *PostgresMaintenanceRepository) SetPayment(ctx context.Context, id, paymentID string) error {
	return execOne(ctx, r.DB, "maintenance request", id,
		`UPDATE maintenance SET payment_id = $1, updated_at = now() WHERE id = $2`, paymentID, id)
}

// Delete removes the maintenance request. A payment pointing at it keeps its
// maintenance_id.
func (r *PostgresMaintenanceRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, "maintenance request", id, `DELETE FROM maintenance WHERE id = $1`, id)
}
