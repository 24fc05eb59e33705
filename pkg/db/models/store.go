package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store represents the canonical tenant model. Every downstream record and
// every query carries the store id; nothing crosses this boundary.
type Store struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	TaxRatePercent decimal.Decimal `gorm:"column:tax_rate_percent;type:numeric(5,2);not null;default:0"`
	CurrencyCode   string          `gorm:"column:currency_code;not null;default:'IDR'"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	OwnerID        uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
