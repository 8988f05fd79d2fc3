package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
)

type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
		Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
		Delete(ctx context.Context, id int64) error
		// ApplyBalanceDelta posts one ledger entry in its own transaction and
		// returns the new balance. Visit and payment creation post inside
		// their insert transaction instead; this is the standalone entry
		// point for adjustments outside those flows.
		ApplyBalanceDelta(ctx context.Context, patientID int64, amount decimal.Decimal, kind ledger.Kind) (decimal.Decimal, error)
	}

	VisitRepository interface {
		// Create inserts the visit and posts its charges to the patient's
		// balance in one transaction.
		Create(ctx context.Context, visit *model.Visit) error
		Get(ctx context.Context, id int64) (*model.Visit, error)
		List(ctx context.Context) ([]*model.VisitWithPatient, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.Visit, error)
		Update(ctx context.Context, id int64, req *model.UpdateVisitRequest) (*model.Visit, error)
		// DeleteUnpaid removes the visit unless payments reference it, in
		// which case nothing is deleted and the payment count is returned.
		DeleteUnpaid(ctx context.Context, id int64) (paymentsCount int, err error)
	}

	PaymentRepository interface {
		// Create inserts the payment and credits the patient's balance in one
		// transaction.
		Create(ctx context.Context, payment *model.Payment) error
		Get(ctx context.Context, id int64) (*model.Payment, error)
		List(ctx context.Context) ([]*model.PaymentWithPatient, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.Payment, error)
		ListByVisit(ctx context.Context, visitID int64) ([]*model.Payment, error)
		Update(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error)
		Delete(ctx context.Context, id int64) error
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.InventoryItem) error
		Get(ctx context.Context, id int64) (*model.InventoryItem, error)
		List(ctx context.Context) ([]*model.InventoryItem, error)
		ListLowStock(ctx context.Context) ([]*model.InventoryItem, error)
		Update(ctx context.Context, id int64, req *model.UpdateInventoryRequest) (*model.InventoryItem, error)
		Delete(ctx context.Context, id int64) error
		// ReduceStock decrements stock, refusing to go below zero. When the
		// result is at or under the minimum a low stock event is queued in
		// the same transaction.
		ReduceStock(ctx context.Context, id int64, quantity int) (*model.InventoryItem, error)
	}

	DashboardRepository interface {
		CountPatients(ctx context.Context) (int64, error)
		SumPaymentsSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
		Totals(ctx context.Context) (*model.Totals, error)
		CountVisitsBetween(ctx context.Context, from, to time.Time) (int64, error)
		MonthFigures(ctx context.Context, from, to time.Time) (*model.MonthFigures, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending marks up to limit due events as processing and
		// returns them. Concurrent callers never receive the same event.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
