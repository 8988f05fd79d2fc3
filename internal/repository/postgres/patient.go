package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/errors"
)

const patientColumns = `id, name, age, gender, phone, email, address, medical_history,
	emergency_contact, balance, created_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			name, age, gender, phone, email, address, medical_history, emergency_contact
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + patientColumns

	err := r.db.GetContext(ctx, patient, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.MedicalHistory,
		patient.EmergencyContact,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", mapError(err, "patient"))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC, id DESC`

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	var b updateBuilder
	if req.Name != nil {
		b.set("name", *req.Name)
	}
	if req.Age != nil {
		b.set("age", *req.Age)
	}
	if req.Gender != nil {
		b.set("gender", *req.Gender)
	}
	if req.Phone != nil {
		b.set("phone", *req.Phone)
	}
	if req.Email != nil {
		// An empty email clears the column, matching create.
		if *req.Email == "" {
			b.set("email", nil)
		} else {
			b.set("email", *req.Email)
		}
	}
	if req.Address != nil {
		b.set("address", *req.Address)
	}
	if req.MedicalHistory != nil {
		b.set("medical_history", *req.MedicalHistory)
	}
	if req.EmergencyContact != nil {
		b.set("emergency_contact", *req.EmergencyContact)
	}

	if b.empty() {
		return r.Get(ctx, id)
	}

	query, args := b.build("patients", id, patientColumns)
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", mapError(err, "patient"))
	}
	return &patient, nil
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return errors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) ApplyBalanceDelta(ctx context.Context, patientID int64, amount decimal.Decimal, kind ledger.Kind) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		balance, err = applyBalanceDelta(ctx, tx, patientID, amount, kind)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
