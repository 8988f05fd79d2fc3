package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
)

// dashboardRepository answers the read-only aggregate queries. All windows
// are half-open: [from, to).
type dashboardRepository struct {
	BaseRepository
}

func NewDashboardRepository(db *sqlx.DB) repository.DashboardRepository {
	return &dashboardRepository{NewBaseRepository(db)}
}

func (r *dashboardRepository) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

func (r *dashboardRepository) SumPaymentsSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE payment_type = 'payment' AND payment_date >= $1
	`
	var sum decimal.Decimal
	if err := r.db.GetContext(ctx, &sum, query, since); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return sum, nil
}

func (r *dashboardRepository) Totals(ctx context.Context) (*model.Totals, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(charges), 0) FROM visits) AS charges,
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payment_type = 'payment') AS payments
	`
	var totals model.Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	return &totals, nil
}

func (r *dashboardRepository) CountVisitsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM visits WHERE visit_date >= $1 AND visit_date < $2`

	var n int64
	if err := r.db.GetContext(ctx, &n, query, from, to); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return n, nil
}

func (r *dashboardRepository) MonthFigures(ctx context.Context, from, to time.Time) (*model.MonthFigures, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(amount), 0)
				FROM payments
				WHERE payment_type = 'payment'
				AND payment_date >= $1 AND payment_date < $2) AS revenue,
			(SELECT COALESCE(SUM(charges), 0)
				FROM visits
				WHERE visit_date >= $1 AND visit_date < $2) AS visit_charges,
			(SELECT COALESCE(SUM(pm.amount), 0)
				FROM payments pm
				JOIN visits v ON v.id = pm.visit_id
				WHERE pm.payment_type = 'payment'
				AND v.visit_date >= $1 AND v.visit_date < $2) AS visit_payments
	`
	var figures model.MonthFigures
	if err := r.db.GetContext(ctx, &figures, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to compute month figures: %w", err)
	}
	return &figures, nil
}
