package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satriaputra/tokopos-backend/pkg/enums"
)

// Transaction is the durable settlement record for one sale. Monetary fields
// are computed once at creation and never recomputed; items are immutable
// snapshots. Only the reconciliation service mutates status.
type Transaction struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	StoreID        uuid.UUID               `gorm:"column:store_id;type:uuid;not null;index"`
	CashierID      uuid.UUID               `gorm:"column:cashier_id;type:uuid;not null"`
	Status         enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod  enums.PaymentMethod     `gorm:"column:payment_method;type:text;not null"`
	TaxRatePercent decimal.Decimal         `gorm:"column:tax_rate_percent;type:numeric(5,2);not null"`
	SubtotalCents  int64                   `gorm:"column:subtotal_cents;not null"`
	TaxCents       int64                   `gorm:"column:tax_cents;not null"`
	TotalCents     int64                   `gorm:"column:total_cents;not null"`
	PaidCents      int64                   `gorm:"column:paid_cents;not null;default:0"`
	ChangeCents    int64                   `gorm:"column:change_cents;not null;default:0"`

	GatewayToken       *string    `gorm:"column:gateway_token"`
	GatewayRedirectURL *string    `gorm:"column:gateway_redirect_url"`
	GatewayExpiresAt   *time.Time `gorm:"column:gateway_expires_at"`

	CompletionSource *enums.CompletionSource `gorm:"column:completion_source;type:text"`
	CompletedAt      *time.Time              `gorm:"column:completed_at"`
	CancelledAt      *time.Time              `gorm:"column:cancelled_at"`
	ExpiredAt        *time.Time              `gorm:"column:expired_at"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
