// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/physiotrack/clinic-api/internal/ledger"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
)

var (
	_ repository.PatientRepository   = (*PatientRepository)(nil)
	_ repository.VisitRepository     = (*VisitRepository)(nil)
	_ repository.PaymentRepository   = (*PaymentRepository)(nil)
	_ repository.InventoryRepository = (*InventoryRepository)(nil)
	_ repository.DashboardRepository = (*DashboardRepository)(nil)
	_ repository.OutboxRepository    = (*OutboxRepository)(nil)
)

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	args := m.Called(ctx, id)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	args := m.Called(ctx)
	patients, _ := args.Get(0).([]*model.Patient)
	return patients, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	args := m.Called(ctx, id, req)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) ApplyBalanceDelta(ctx context.Context, patientID int64, amount decimal.Decimal, kind ledger.Kind) (decimal.Decimal, error) {
	args := m.Called(ctx, patientID, amount, kind)
	balance, _ := args.Get(0).(decimal.Decimal)
	return balance, args.Error(1)
}

type VisitRepository struct {
	mock.Mock
}

func (m *VisitRepository) Create(ctx context.Context, visit *model.Visit) error {
	return m.Called(ctx, visit).Error(0)
}

func (m *VisitRepository) Get(ctx context.Context, id int64) (*model.Visit, error) {
	args := m.Called(ctx, id)
	visit, _ := args.Get(0).(*model.Visit)
	return visit, args.Error(1)
}

func (m *VisitRepository) List(ctx context.Context) ([]*model.VisitWithPatient, error) {
	args := m.Called(ctx)
	visits, _ := args.Get(0).([]*model.VisitWithPatient)
	return visits, args.Error(1)
}

func (m *VisitRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Visit, error) {
	args := m.Called(ctx, patientID)
	visits, _ := args.Get(0).([]*model.Visit)
	return visits, args.Error(1)
}

func (m *VisitRepository) Update(ctx context.Context, id int64, req *model.UpdateVisitRequest) (*model.Visit, error) {
	args := m.Called(ctx, id, req)
	visit, _ := args.Get(0).(*model.Visit)
	return visit, args.Error(1)
}

func (m *VisitRepository) DeleteUnpaid(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *PaymentRepository) Get(ctx context.Context, id int64) (*model.Payment, error) {
	args := m.Called(ctx, id)
	payment, _ := args.Get(0).(*model.Payment)
	return payment, args.Error(1)
}

func (m *PaymentRepository) List(ctx context.Context) ([]*model.PaymentWithPatient, error) {
	args := m.Called(ctx)
	payments, _ := args.Get(0).([]*model.PaymentWithPatient)
	return payments, args.Error(1)
}

func (m *PaymentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Payment, error) {
	args := m.Called(ctx, patientID)
	payments, _ := args.Get(0).([]*model.Payment)
	return payments, args.Error(1)
}

func (m *PaymentRepository) ListByVisit(ctx context.Context, visitID int64) ([]*model.Payment, error) {
	args := m.Called(ctx, visitID)
	payments, _ := args.Get(0).([]*model.Payment)
	return payments, args.Error(1)
}

func (m *PaymentRepository) Update(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error) {
	args := m.Called(ctx, id, req)
	payment, _ := args.Get(0).(*model.Payment)
	return payment, args.Error(1)
}

func (m *PaymentRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type InventoryRepository struct {
	mock.Mock
}

func (m *InventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *InventoryRepository) Get(ctx context.Context, id int64) (*model.InventoryItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*model.InventoryItem)
	return item, args.Error(1)
}

func (m *InventoryRepository) List(ctx context.Context) ([]*model.InventoryItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*model.InventoryItem)
	return items, args.Error(1)
}

func (m *InventoryRepository) ListLowStock(ctx context.Context) ([]*model.InventoryItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*model.InventoryItem)
	return items, args.Error(1)
}

func (m *InventoryRepository) Update(ctx context.Context, id int64, req *model.UpdateInventoryRequest) (*model.InventoryItem, error) {
	args := m.Called(ctx, id, req)
	item, _ := args.Get(0).(*model.InventoryItem)
	return item, args.Error(1)
}

func (m *InventoryRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *InventoryRepository) ReduceStock(ctx context.Context, id int64, quantity int) (*model.InventoryItem, error) {
	args := m.Called(ctx, id, quantity)
	item, _ := args.Get(0).(*model.InventoryItem)
	return item, args.Error(1)
}

type DashboardRepository struct {
	mock.Mock
}

func (m *DashboardRepository) CountPatients(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *DashboardRepository) SumPaymentsSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, since)
	sum, _ := args.Get(0).(decimal.Decimal)
	return sum, args.Error(1)
}

func (m *DashboardRepository) Totals(ctx context.Context) (*model.Totals, error) {
	args := m.Called(ctx)
	totals, _ := args.Get(0).(*model.Totals)
	return totals, args.Error(1)
}

func (m *DashboardRepository) CountVisitsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *DashboardRepository) MonthFigures(ctx context.Context, from, to time.Time) (*model.MonthFigures, error) {
	args := m.Called(ctx, from, to)
	figures, _ := args.Get(0).(*model.MonthFigures)
	return figures, args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*model.OutboxEvent)
	return events, args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	return m.Called(ctx, id, errMsg, retryAt).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
