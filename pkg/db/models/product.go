package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a sellable item scoped to a store. StockQty is only ever
// mutated through the inventory ledger's conditional decrement; it never goes
// negative.
type Product struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	StoreID    uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index"`
	SKU        string     `gorm:"column:sku;not null"`
	Name       string     `gorm:"column:name;not null"`
	PriceCents int64      `gorm:"column:price_cents;not null"`
	StockQty   int64      `gorm:"column:stock_qty;not null;default:0"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
