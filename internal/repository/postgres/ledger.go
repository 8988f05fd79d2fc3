package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/physiotrack/clinic-api/internal/ledger"
)

// applyBalanceDelta posts one ledger entry inside tx. The patient row is
// locked for the rest of the transaction, so concurrent postings against the
// same patient serialize instead of losing updates.
func applyBalanceDelta(ctx context.Context, tx *sqlx.Tx, patientID int64, amount decimal.Decimal, kind ledger.Kind) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM patients WHERE id = $1 FOR UPDATE`, patientID)
	if err != nil {
		return decimal.Zero, mapError(err, "patient")
	}

	next, err := ledger.Apply(balance, kind, amount)
	if err != nil {
		return decimal.Zero, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE patients SET balance = $1 WHERE id = $2`, next, patientID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update patient balance: %w", err)
	}
	return next, nil
}
