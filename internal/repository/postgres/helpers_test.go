package postgres

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

// decimalArg matches a driver value holding the given decimal amount.
type decimalArg string

func (d decimalArg) Match(v driver.Value) bool {
	var got decimal.Decimal
	switch val := v.(type) {
	case string:
		var err error
		if got, err = decimal.NewFromString(val); err != nil {
			return false
		}
	case []byte:
		var err error
		if got, err = decimal.NewFromString(string(val)); err != nil {
			return false
		}
	default:
		return false
	}
	return got.Equal(decimal.RequireFromString(string(d)))
}

var fixedTime = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

var patientCols = []string{
	"id", "name", "age", "gender", "phone", "email", "address", "medical_history",
	"emergency_contact", "balance", "created_at",
}

func patientRow(id int64, name, balance string) *sqlmock.Rows {
	return sqlmock.NewRows(patientCols).
		AddRow(id, name, 34, "female", "555-0100", nil, nil, nil, nil, balance, fixedTime)
}

var visitCols = []string{
	"id", "patient_id", "visit_date", "treatment_provided", "duration", "notes", "charges", "created_at",
}

var paymentCols = []string{
	"id", "patient_id", "visit_id", "amount", "payment_type", "payment_method",
	"payment_date", "notes", "created_at",
}

var inventoryCols = []string{
	"id", "name", "category", "current_stock", "min_stock_level", "unit_price",
	"supplier", "description", "last_restocked", "created_at",
}

func inventoryRow(id int64, name string, stock, min int) *sqlmock.Rows {
	return sqlmock.NewRows(inventoryCols).
		AddRow(id, name, "supplies", stock, min, "12.50", nil, nil, nil, fixedTime)
}
