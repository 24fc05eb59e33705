package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionItem snapshots one cart line at the moment of sale. Name and
// price are denormalized so later product edits cannot corrupt historical
// totals. SubtotalCents is always Qty * UnitPriceCents.
type TransactionItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID  uuid.UUID  `gorm:"column:transaction_id;type:uuid;not null;index"`
	StoreID        uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string     `gorm:"column:product_name;not null"`
	CategoryID     *uuid.UUID `gorm:"column:category_id;type:uuid"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Qty            int64      `gorm:"column:qty;not null"`
	SubtotalCents  int64      `gorm:"column:subtotal_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
