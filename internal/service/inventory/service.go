package inventory

import (
	"context"
	"fmt"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/errors"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

type Service interface {
	CreateItem(ctx context.Context, req *model.CreateInventoryRequest) (*model.InventoryItem, error)
	GetItem(ctx context.Context, id int64) (*model.InventoryItem, error)
	ListItems(ctx context.Context) ([]*model.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id int64, req *model.UpdateInventoryRequest) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id int64) error
	// ReduceStock takes quantity units out of stock. It never lets stock go
	// below zero.
	ReduceStock(ctx context.Context, id int64, quantity int) (*model.InventoryItem, error)
}

type service struct {
	repo    repository.InventoryRepository
	metrics *metrics.Metrics
}

func NewService(repo repository.InventoryRepository, m *metrics.Metrics) Service {
	return &service{repo: repo, metrics: m}
}

func (s *service) CreateItem(ctx context.Context, req *model.CreateInventoryRequest) (*model.InventoryItem, error) {
	item := req.ToItem()
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id int64) (*model.InventoryItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context) ([]*model.InventoryItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]*model.InventoryItem, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	return items, nil
}

func (s *service) UpdateItem(ctx context.Context, id int64, req *model.UpdateInventoryRequest) (*model.InventoryItem, error) {
	item, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

func (s *service) ReduceStock(ctx context.Context, id int64, quantity int) (*model.InventoryItem, error) {
	if quantity <= 0 {
		return nil, errors.Validation("quantity must be a positive integer",
			errors.FieldError{Field: "quantity", Message: "must be greater than 0"})
	}

	item, err := s.repo.ReduceStock(ctx, id, quantity)
	if err != nil {
		s.metrics.StockReductions.WithLabelValues(reductionResult(err)).Inc()
		return nil, fmt.Errorf("failed to reduce stock: %w", err)
	}

	result := "ok"
	if item.LowStock {
		result = "low_stock"
	}
	s.metrics.StockReductions.WithLabelValues(result).Inc()
	return item, nil
}

func reductionResult(err error) string {
	switch {
	case errors.Is(err, errors.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, errors.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
