package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

type Service interface {
	// CreatePayment records a payment or advance and credits the patient.
	CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error)
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	ListPayments(ctx context.Context) ([]*model.PaymentWithPatient, error)
	ListPatientPayments(ctx context.Context, patientID int64) ([]*model.Payment, error)
	ListVisitPayments(ctx context.Context, visitID int64) ([]*model.Payment, error)
	UpdatePayment(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type service struct {
	repo        repository.PaymentRepository
	patientRepo repository.PatientRepository
	visitRepo   repository.VisitRepository
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewService(
	repo repository.PaymentRepository,
	patientRepo repository.PatientRepository,
	visitRepo repository.VisitRepository,
	m *metrics.Metrics,
) Service {
	return &service{
		repo:        repo,
		patientRepo: patientRepo,
		visitRepo:   visitRepo,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *service) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error) {
	payment := req.ToPayment(s.now())
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	s.metrics.LedgerPostings.WithLabelValues(string(ledger.KindForPayment(payment.PaymentType))).Inc()
	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context) ([]*model.PaymentWithPatient, error) {
	payments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *service) ListPatientPayments(ctx context.Context, patientID int64) ([]*model.Payment, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	payments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient payments: %w", err)
	}
	return payments, nil
}

func (s *service) ListVisitPayments(ctx context.Context, visitID int64) ([]*model.Payment, error) {
	if _, err := s.visitRepo.Get(ctx, visitID); err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	payments, err := s.repo.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visit payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment edits the row only; the balance posted at creation stays.
func (s *service) UpdatePayment(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error) {
	payment, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return payment, nil
}

func (s *service) DeletePayment(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
