package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCreate_WithMaintenanceLink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresPaymentRepository(db)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := models.Payment{TenantID: "u1", ApartmentID: "a1", Amount: 1200, Type: "Rent", Method: "Credit Card",
		Date: date, Status: models.PaymentPaid, MaintenanceID: models.StringPtr("m1")}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).
		WithArgs(sqlmock.AnyArg(), "u1", "a1", 1200.0, "Rent", "Credit Card", date, models.PaymentPaid, "", "m1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentListByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresPaymentRepository(db)

	now := time.Now()
	cols := []string{"id", "tenant_id", "apartment_id", "amount", "payment_type", "payment_method", "payment_date",
		"status", "description", "maintenance_id", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE tenant_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "u1", "a1", 500.0, "Deposit", "Bank Transfer", now, "paid", "Security deposit", nil, now, now))

	got, err := repo.ListByTenant(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Nil(t, got[0].MaintenanceID)
}

func TestPaymentDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payments WHERE id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), "p1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
}

func TestPaymentList_ConnectionFailureIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments`)).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, err = repo.List(context.Background())
	assert.Equal(t, apperr.Unavailable, apperr.CodeOf(err))
}
