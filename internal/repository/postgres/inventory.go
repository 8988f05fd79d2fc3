package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/errors"
)

const inventoryColumns = `id, name, category, current_stock, min_stock_level, unit_price,
	supplier, description, last_restocked, created_at`

type inventoryRepository struct {
	BaseRepository
	now func() time.Time
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{BaseRepository: NewBaseRepository(db), now: time.Now}
}

func markLowStock(items ...*model.InventoryItem) {
	for _, item := range items {
		item.LowStock = item.IsLowStock()
	}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
		INSERT INTO inventory (
			name, category, current_stock, min_stock_level, unit_price,
			supplier, description, last_restocked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + inventoryColumns

	err := r.db.GetContext(ctx, item, query,
		item.Name,
		item.Category,
		item.CurrentStock,
		item.MinStockLevel,
		item.UnitPrice,
		item.Supplier,
		item.Description,
		item.LastRestocked,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	markLowStock(item)
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id int64) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1`

	var item model.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", mapError(err, "inventory item"))
	}
	markLowStock(&item)
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context) ([]*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory ORDER BY name, id`

	items := []*model.InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	markLowStock(items...)
	return items, nil
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]*model.InventoryItem, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory
		WHERE current_stock <= min_stock_level
		ORDER BY current_stock, name`

	items := []*model.InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	markLowStock(items...)
	return items, nil
}

func (r *inventoryRepository) Update(ctx context.Context, id int64, req *model.UpdateInventoryRequest) (*model.InventoryItem, error) {
	var b updateBuilder
	if req.Name != nil {
		b.set("name", *req.Name)
	}
	if req.Category != nil {
		b.set("category", *req.Category)
	}
	if req.CurrentStock != nil {
		b.set("current_stock", *req.CurrentStock)
	}
	if req.MinStockLevel != nil {
		b.set("min_stock_level", *req.MinStockLevel)
	}
	if req.UnitPrice != nil {
		b.set("unit_price", *req.UnitPrice)
	}
	if req.Supplier != nil {
		b.set("supplier", *req.Supplier)
	}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.LastRestocked != nil {
		b.set("last_restocked", *req.LastRestocked)
	}

	if b.empty() {
		return r.Get(ctx, id)
	}

	query, args := b.build("inventory", id, inventoryColumns)
	var item model.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", mapError(err, "inventory item"))
	}
	markLowStock(&item)
	return &item, nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", mapError(err, "inventory item"))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return errors.NotFound("inventory item", nil)
	}
	return nil
}

func (r *inventoryRepository) ReduceStock(ctx context.Context, id int64, quantity int) (*model.InventoryItem, error) {
	var item model.InventoryItem

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		selectQuery := `SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &item, selectQuery, id); err != nil {
			return mapError(err, "inventory item")
		}

		newStock := item.CurrentStock - quantity
		if newStock < 0 {
			return errors.InsufficientStock(quantity, item.CurrentStock)
		}

		updateQuery := `UPDATE inventory SET current_stock = $1 WHERE id = $2 RETURNING ` + inventoryColumns
		if err := tx.GetContext(ctx, &item, updateQuery, newStock, id); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		if !item.IsLowStock() {
			return nil
		}

		event, err := model.NewOutboxEvent(model.EventInventoryLowStock, model.LowStockAlert{
			ItemID:        item.ID,
			Name:          item.Name,
			Category:      string(item.Category),
			CurrentStock:  item.CurrentStock,
			MinStockLevel: item.MinStockLevel,
			ReducedBy:     quantity,
			OccurredAt:    r.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to build low stock event: %w", err)
		}
		return insertOutboxEvent(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	markLowStock(&item)
	return &item, nil
}
