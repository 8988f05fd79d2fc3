package visit

import (
	"context"
	"fmt"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/errors"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

type Service interface {
	// CreateVisit records the visit and charges the patient for it.
	CreateVisit(ctx context.Context, req *model.CreateVisitRequest) (*model.Visit, error)
	GetVisit(ctx context.Context, id int64) (*model.Visit, error)
	ListVisits(ctx context.Context) ([]*model.VisitWithPatient, error)
	ListPatientVisits(ctx context.Context, patientID int64) ([]*model.Visit, error)
	UpdateVisit(ctx context.Context, id int64, req *model.UpdateVisitRequest) (*model.Visit, error)
	DeleteVisit(ctx context.Context, id int64) error
}

type service struct {
	repo        repository.VisitRepository
	patientRepo repository.PatientRepository
	metrics     *metrics.Metrics
}

func NewService(repo repository.VisitRepository, patientRepo repository.PatientRepository, m *metrics.Metrics) Service {
	return &service{
		repo:        repo,
		patientRepo: patientRepo,
		metrics:     m,
	}
}

func (s *service) CreateVisit(ctx context.Context, req *model.CreateVisitRequest) (*model.Visit, error) {
	visit := req.ToVisit()
	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}
	s.metrics.LedgerPostings.WithLabelValues(string(ledger.KindCharge)).Inc()
	return visit, nil
}

func (s *service) GetVisit(ctx context.Context, id int64) (*model.Visit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return visit, nil
}

func (s *service) ListVisits(ctx context.Context) ([]*model.VisitWithPatient, error) {
	visits, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// ListPatientVisits returns NotFound for an unknown patient rather than an
// empty list.
func (s *service) ListPatientVisits(ctx context.Context, patientID int64) ([]*model.Visit, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	visits, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient visits: %w", err)
	}
	return visits, nil
}

// UpdateVisit edits the visit in place. A changed charge is not re-posted to
// the patient's balance.
func (s *service) UpdateVisit(ctx context.Context, id int64, req *model.UpdateVisitRequest) (*model.Visit, error) {
	visit, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update visit: %w", err)
	}
	return visit, nil
}

// DeleteVisit refuses to remove a visit that payments still reference.
func (s *service) DeleteVisit(ctx context.Context, id int64) error {
	count, err := s.repo.DeleteUnpaid(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	if count > 0 {
		return errors.Conflict("cannot delete visit with associated payments").
			WithDetail("paymentsCount", count)
	}
	return nil
}
