package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/errors"
)

const paymentColumns = `id, patient_id, visit_id, amount, payment_type, payment_method,
	payment_date, notes, created_at`

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(db)}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			patient_id, visit_id, amount, payment_type, payment_method, payment_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + paymentColumns

	kind := ledger.KindForPayment(payment.PaymentType)

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := applyBalanceDelta(ctx, tx, payment.PatientID, payment.Amount.Decimal, kind); err != nil {
			return err
		}

		err := tx.GetContext(ctx, payment, query,
			payment.PatientID,
			payment.VisitID,
			payment.Amount,
			payment.PaymentType,
			payment.PaymentMethod,
			payment.PaymentDate,
			payment.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", mapError(err, "patient"))
		}
		return nil
	})
}

func (r *paymentRepository) Get(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var payment model.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", mapError(err, "payment"))
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*model.PaymentWithPatient, error) {
	query := `
		SELECT
			pm.id, pm.patient_id, pm.visit_id, pm.amount, pm.payment_type,
			pm.payment_method, pm.payment_date, pm.notes, pm.created_at,
			p.id AS "patient.id", p.name AS "patient.name", p.age AS "patient.age",
			p.gender AS "patient.gender", p.phone AS "patient.phone",
			p.email AS "patient.email", p.address AS "patient.address",
			p.medical_history AS "patient.medical_history",
			p.emergency_contact AS "patient.emergency_contact",
			p.balance AS "patient.balance", p.created_at AS "patient.created_at"
		FROM payments pm
		JOIN patients p ON p.id = pm.patient_id
		ORDER BY pm.payment_date DESC, pm.id DESC
	`

	payments := []*model.PaymentWithPatient{}
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE patient_id = $1 ORDER BY payment_date DESC, id DESC`

	payments := []*model.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) ListByVisit(ctx context.Context, visitID int64) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE visit_id = $1 ORDER BY payment_date DESC, id DESC`

	payments := []*model.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, visitID); err != nil {
		return nil, fmt.Errorf("failed to list visit payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error) {
	var b updateBuilder
	if req.VisitID != nil {
		b.set("visit_id", *req.VisitID)
	}
	if req.Amount != nil {
		b.set("amount", *req.Amount)
	}
	if req.PaymentType != nil {
		b.set("payment_type", *req.PaymentType)
	}
	if req.PaymentMethod != nil {
		b.set("payment_method", *req.PaymentMethod)
	}
	if req.PaymentDate != nil {
		b.set("payment_date", *req.PaymentDate)
	}
	if req.Notes != nil {
		b.set("notes", *req.Notes)
	}

	if b.empty() {
		return r.Get(ctx, id)
	}

	query, args := b.build("payments", id, paymentColumns)
	var payment model.Payment
	if err := r.db.GetContext(ctx, &payment, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", mapError(err, "payment"))
	}
	return &payment, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return errors.NotFound("payment", nil)
	}
	return nil
}
