package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypePayment PaymentType = "payment"
	PaymentTypeAdvance PaymentType = "advance"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

type Payment struct {
	Base
	PatientID     int64           `db:"patient_id" json:"patientId"`
	VisitID       *int64          `db:"visit_id" json:"visitId"`
	Amount        Money           `db:"amount" json:"amount"`
	PaymentType   PaymentType     `db:"payment_type" json:"paymentType"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PaymentDate   time.Time       `db:"payment_date" json:"paymentDate"`
	Notes         *string         `db:"notes" json:"notes"`
}

// PaymentWithPatient is the list view of a payment.
type PaymentWithPatient struct {
	Payment
	Patient Patient `db:"patient" json:"patient"`
}

type CreatePaymentRequest struct {
	PatientID     *int64           `json:"patientId" binding:"required,gt=0"`
	VisitID       *int64           `json:"visitId" binding:"omitempty,gt=0"`
	Amount        *decimal.Decimal `json:"amount" binding:"required,money"`
	PaymentType   string           `json:"paymentType" binding:"required,oneof=payment advance"`
	PaymentMethod string           `json:"paymentMethod" binding:"required,oneof=cash card transfer"`
	PaymentDate   *time.Time       `json:"paymentDate"`
	Notes         *string          `json:"notes"`
}

// ToPayment builds the row; a missing payment date defaults to now.
func (r *CreatePaymentRequest) ToPayment(now time.Time) *Payment {
	p := &Payment{
		PatientID:     *r.PatientID,
		VisitID:       r.VisitID,
		Amount:        NewMoney(*r.Amount),
		PaymentType:   PaymentType(r.PaymentType),
		PaymentMethod: PaymentMethod(r.PaymentMethod),
		PaymentDate:   now,
		Notes:         r.Notes,
	}
	if r.PaymentDate != nil {
		p.PaymentDate = *r.PaymentDate
	}
	return p
}

// UpdatePaymentRequest is a partial update. The ledger is not adjusted.
type UpdatePaymentRequest struct {
	VisitID       *int64           `json:"visitId" binding:"omitempty,gt=0"`
	Amount        *decimal.Decimal `json:"amount" binding:"omitempty,money"`
	PaymentType   *string          `json:"paymentType" binding:"omitempty,oneof=payment advance"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,oneof=cash card transfer"`
	PaymentDate   *time.Time       `json:"paymentDate"`
	Notes         *string          `json:"notes"`
}
