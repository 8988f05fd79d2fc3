package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/pkg/errors"
)

func TestVisitRepository_CreatePostsCharge(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVisitRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM patients WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0.00"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET balance = $1 WHERE id = $2")).
		WithArgs(decimalArg("-500"), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO visits")).
		WithArgs(int64(1), fixedTime, "Ultrasound therapy", 45, nil, decimalArg("500")).
		WillReturnRows(sqlmock.NewRows(visitCols).
			AddRow(10, 1, fixedTime, "Ultrasound therapy", 45, nil, "500.00", fixedTime))
	mock.ExpectCommit()

	v := &model.Visit{
		PatientID:         1,
		VisitDate:         fixedTime,
		TreatmentProvided: "Ultrasound therapy",
		Duration:          45,
		Charges:           model.NewMoney(decimal.RequireFromString("500.00")),
	}
	require.NoError(t, repo.Create(context.Background(), v))
	assert.Equal(t, int64(10), v.ID)
}

func TestVisitRepository_CreateRollsBackLedgerOnInsertFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVisitRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM patients")).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0.00"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET balance")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO visits")).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Visit{PatientID: 1, Charges: model.NewMoney(decimal.NewFromInt(80))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create visit")
}

func TestVisitRepository_CreateUnknownPatient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVisitRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM patients")).
		WithArgs(int64(77)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Visit{PatientID: 77, Charges: model.NewMoney(decimal.NewFromInt(80))})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "patient not found", appErr.Message)
}

func TestVisitRepository_ListJoinsPatient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVisitRepository(db)

	cols := append(append([]string{}, visitCols...),
		"patient.id", "patient.name", "patient.age", "patient.gender", "patient.phone",
		"patient.email", "patient.address", "patient.medical_history",
		"patient.emergency_contact", "patient.balance", "patient.created_at", "has_payment")
	rows := sqlmock.NewRows(cols).
		AddRow(10, 1, fixedTime, "Massage", 30, nil, "200.00", fixedTime,
			1, "Asha Rao", 34, "female", "555-0100", nil, nil, nil, nil, "-200.00", fixedTime, true)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN patients p ON p.id = v.patient_id")).WillReturnRows(rows)

	visits, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, int64(10), visits[0].ID)
	assert.Equal(t, "Asha Rao", visits[0].Patient.Name)
	assert.Equal(t, int64(1), visits[0].Patient.ID)
	assert.True(t, visits[0].HasPayment)
}

func TestVisitRepository_UpdateDoesNotTouchBalance(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVisitRepository(db)

	charges := decimal.RequireFromString("750.00")
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE visits SET charges = $1 WHERE id = $2 RETURNING")).
		WithArgs(decimalArg("750"), int64(10)).
		WillReturnRows(sqlmock.NewRows(visitCols).
			AddRow(10, 1, fixedTime, "Massage", 30, nil, "750.00", fixedTime))

	v, err := repo.Update(context.Background(), 10, &model.UpdateVisitRequest{Charges: &charges})
	require.NoError(t, err)
	assert.Equal(t, "750.00", v.Charges.String())
}

func TestVisitRepository_DeleteUnpaid(t *testing.T) {
	t.Run("refuses when payments exist", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewVisitRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM visits WHERE id = $1 FOR UPDATE")).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments WHERE visit_id = $1")).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectCommit()

		count, err := repo.DeleteUnpaid(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("deletes unpaid visit", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewVisitRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM visits")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM visits WHERE id = $1")).
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		count, err := repo.DeleteUnpaid(context.Background(), 10)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("missing visit", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewVisitRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM visits")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.DeleteUnpaid(context.Background(), 99)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}
