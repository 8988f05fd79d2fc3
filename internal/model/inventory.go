package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryCategory string

const (
	CategoryEquipment InventoryCategory = "equipment"
	CategorySupplies  InventoryCategory = "supplies"
)

type InventoryItem struct {
	Base
	Name          string            `db:"name" json:"name"`
	Category      InventoryCategory `db:"category" json:"category"`
	CurrentStock  int               `db:"current_stock" json:"currentStock"`
	MinStockLevel int               `db:"min_stock_level" json:"minStockLevel"`
	UnitPrice     *Money            `db:"unit_price" json:"unitPrice"`
	Supplier      *string           `db:"supplier" json:"supplier"`
	Description   *string           `db:"description" json:"description"`
	LastRestocked *time.Time        `db:"last_restocked" json:"lastRestocked"`
	LowStock      bool              `db:"-" json:"isLowStock"`
}

// IsLowStock reports whether stock has fallen to or below the minimum.
func (i *InventoryItem) IsLowStock() bool {
	return i.CurrentStock <= i.MinStockLevel
}

type CreateInventoryRequest struct {
	Name          string           `json:"name" binding:"required"`
	Category      string           `json:"category" binding:"required,oneof=equipment supplies"`
	CurrentStock  *int             `json:"currentStock" binding:"required,min=0"`
	MinStockLevel *int             `json:"minStockLevel" binding:"required,min=0"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" binding:"omitempty,money"`
	Supplier      *string          `json:"supplier"`
	Description   *string          `json:"description"`
	LastRestocked *time.Time       `json:"lastRestocked"`
}

func (r *CreateInventoryRequest) ToItem() *InventoryItem {
	item := &InventoryItem{
		Name:          r.Name,
		Category:      InventoryCategory(r.Category),
		CurrentStock:  *r.CurrentStock,
		MinStockLevel: *r.MinStockLevel,
		Supplier:      r.Supplier,
		Description:   r.Description,
		LastRestocked: r.LastRestocked,
	}
	if r.UnitPrice != nil {
		price := NewMoney(*r.UnitPrice)
		item.UnitPrice = &price
	}
	return item
}

type UpdateInventoryRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1"`
	Category      *string          `json:"category" binding:"omitempty,oneof=equipment supplies"`
	CurrentStock  *int             `json:"currentStock" binding:"omitempty,min=0"`
	MinStockLevel *int             `json:"minStockLevel" binding:"omitempty,min=0"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" binding:"omitempty,money"`
	Supplier      *string          `json:"supplier"`
	Description   *string          `json:"description"`
	LastRestocked *time.Time       `json:"lastRestocked"`
}

type ReduceStockRequest struct {
	Quantity *int `json:"quantity" binding:"required,gt=0"`
}

// InventoryUsage records consumption of an item, optionally during a visit.
// The table exists for parity with the clinic schema; nothing writes it yet.
type InventoryUsage struct {
	Base
	InventoryID  int64     `db:"inventory_id" json:"inventoryId"`
	VisitID      *int64    `db:"visit_id" json:"visitId"`
	QuantityUsed int       `db:"quantity_used" json:"quantityUsed"`
	UsageDate    time.Time `db:"usage_date" json:"usageDate"`
	Notes        *string   `db:"notes" json:"notes"`
}

// LowStockAlert is the payload of the inventory.low_stock event.
type LowStockAlert struct {
	ItemID        int64     `json:"itemId"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	CurrentStock  int       `json:"currentStock"`
	MinStockLevel int       `json:"minStockLevel"`
	ReducedBy     int       `json:"reducedBy"`
	OccurredAt    time.Time `json:"occurredAt"`
}
