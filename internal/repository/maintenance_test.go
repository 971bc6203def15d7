package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresMaintenanceRepository(db)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	m := models.MaintenanceRequest{ApartmentID: "a1", RequestedBy: "u1", IssueType: "Plumbing",
		Issue: "Kitchen sink is leaking", Priority: "Medium", Status: models.MaintenancePending, RequestDate: date}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO maintenance`)).
		WithArgs(sqlmock.AnyArg(), "a1", "u1", "Plumbing", "Kitchen sink is leaking", "Medium",
			models.MaintenancePending, "", "", 0.0, false, date).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Create(context.Background(), m)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceSetPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresMaintenanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE maintenance SET payment_id = $1, updated_at = now() WHERE id = $2`)).
		WithArgs("p1", "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetPayment(context.Background(), "m1", "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresMaintenanceRepository(db)

	st := models.MaintenanceInProgress
	who := "Mike the Plumber"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE maintenance SET status = $1, assigned_to = $2, updated_at = now() WHERE id = $3`)).
		WithArgs(st, who, "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "m1", models.MaintenancePatch{Status: &st, AssignedTo: &who}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
