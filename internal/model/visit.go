package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Visit struct {
	Base
	PatientID         int64           `db:"patient_id" json:"patientId"`
	VisitDate         time.Time       `db:"visit_date" json:"visitDate"`
	TreatmentProvided string          `db:"treatment_provided" json:"treatmentProvided"`
	Duration          int             `db:"duration" json:"duration"`
	Notes             *string         `db:"notes" json:"notes"`
	Charges           Money           `db:"charges" json:"charges"`
}

// VisitWithPatient is the list view of a visit.
type VisitWithPatient struct {
	Visit
	Patient    Patient `db:"patient" json:"patient"`
	HasPayment bool    `db:"has_payment" json:"hasPayment"`
}

type CreateVisitRequest struct {
	PatientID         *int64           `json:"patientId" binding:"required,gt=0"`
	VisitDate         *time.Time       `json:"visitDate" binding:"required"`
	TreatmentProvided string           `json:"treatmentProvided" binding:"required"`
	Duration          *int             `json:"duration" binding:"required,gt=0"`
	Notes             *string          `json:"notes"`
	Charges           *decimal.Decimal `json:"charges" binding:"required,money"`
}

func (r *CreateVisitRequest) ToVisit() *Visit {
	return &Visit{
		PatientID:         *r.PatientID,
		VisitDate:         *r.VisitDate,
		TreatmentProvided: r.TreatmentProvided,
		Duration:          *r.Duration,
		Notes:             r.Notes,
		Charges:           NewMoney(*r.Charges),
	}
}

// UpdateVisitRequest is a partial update. Changing charges here does not
// touch the patient's balance.
type UpdateVisitRequest struct {
	VisitDate         *time.Time       `json:"visitDate"`
	TreatmentProvided *string          `json:"treatmentProvided" binding:"omitempty,min=1"`
	Duration          *int             `json:"duration" binding:"omitempty,gt=0"`
	Notes             *string          `json:"notes"`
	Charges           *decimal.Decimal `json:"charges" binding:"omitempty,money"`
}
