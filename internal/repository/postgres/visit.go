package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
)

const visitColumns = `id, patient_id, visit_date, treatment_provided, duration, notes, charges, created_at`

type visitRepository struct {
	BaseRepository
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{NewBaseRepository(db)}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	query := `
		INSERT INTO visits (
			patient_id, visit_date, treatment_provided, duration, notes, charges
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + visitColumns

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := applyBalanceDelta(ctx, tx, visit.PatientID, visit.Charges.Decimal, ledger.KindCharge); err != nil {
			return err
		}

		err := tx.GetContext(ctx, visit, query,
			visit.PatientID,
			visit.VisitDate,
			visit.TreatmentProvided,
			visit.Duration,
			visit.Notes,
			visit.Charges,
		)
		if err != nil {
			return fmt.Errorf("failed to create visit: %w", mapError(err, "patient"))
		}
		return nil
	})
}

func (r *visitRepository) Get(ctx context.Context, id int64) (*model.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE id = $1`

	var visit model.Visit
	if err := r.db.GetContext(ctx, &visit, query, id); err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", mapError(err, "visit"))
	}
	return &visit, nil
}

func (r *visitRepository) List(ctx context.Context) ([]*model.VisitWithPatient, error) {
	query := `
		SELECT
			v.id, v.patient_id, v.visit_date, v.treatment_provided, v.duration,
			v.notes, v.charges, v.created_at,
			p.id AS "patient.id", p.name AS "patient.name", p.age AS "patient.age",
			p.gender AS "patient.gender", p.phone AS "patient.phone",
			p.email AS "patient.email", p.address AS "patient.address",
			p.medical_history AS "patient.medical_history",
			p.emergency_contact AS "patient.emergency_contact",
			p.balance AS "patient.balance", p.created_at AS "patient.created_at",
			EXISTS (SELECT 1 FROM payments pm WHERE pm.visit_id = v.id) AS has_payment
		FROM visits v
		JOIN patients p ON p.id = v.patient_id
		ORDER BY v.visit_date DESC, v.id DESC
	`

	visits := []*model.VisitWithPatient{}
	if err := r.db.SelectContext(ctx, &visits, query); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE patient_id = $1 ORDER BY visit_date DESC, id DESC`

	visits := []*model.Visit{}
	if err := r.db.SelectContext(ctx, &visits, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient visits: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) Update(ctx context.Context, id int64, req *model.UpdateVisitRequest) (*model.Visit, error) {
	var b updateBuilder
	if req.VisitDate != nil {
		b.set("visit_date", *req.VisitDate)
	}
	if req.TreatmentProvided != nil {
		b.set("treatment_provided", *req.TreatmentProvided)
	}
	if req.Duration != nil {
		b.set("duration", *req.Duration)
	}
	if req.Notes != nil {
		b.set("notes", *req.Notes)
	}
	if req.Charges != nil {
		b.set("charges", *req.Charges)
	}

	if b.empty() {
		return r.Get(ctx, id)
	}

	query, args := b.build("visits", id, visitColumns)
	var visit model.Visit
	if err := r.db.GetContext(ctx, &visit, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update visit: %w", mapError(err, "visit"))
	}
	return &visit, nil
}

func (r *visitRepository) DeleteUnpaid(ctx context.Context, id int64) (int, error) {
	var paymentsCount int
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Locking the visit blocks payments that would reference it until
		// this transaction ends.
		var locked int64
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM visits WHERE id = $1 FOR UPDATE`, id); err != nil {
			return mapError(err, "visit")
		}

		if err := tx.GetContext(ctx, &paymentsCount, `SELECT COUNT(*) FROM payments WHERE visit_id = $1`, id); err != nil {
			return fmt.Errorf("failed to count visit payments: %w", err)
		}
		if paymentsCount > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete visit: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return paymentsCount, nil
}

