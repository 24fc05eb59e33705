package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
)

// CheckoutItemInput is one requested cart line.
type CheckoutItemInput struct {
	ProductID uuid.UUID
	Qty       int64
}

// CheckoutInput captures everything needed to settle a sale.
type CheckoutInput struct {
	PaymentMethod enums.PaymentMethod
	Items         []CheckoutItemInput
	// PaidCents is the cash tendered; ignored for gateway methods.
	PaidCents int64
}

// ItemDTO is the immutable snapshot view of a sold line.
type ItemDTO struct {
	ProductID      uuid.UUID  `json:"product_id"`
	ProductName    string     `json:"product_name"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Qty            int64      `json:"qty"`
	SubtotalCents  int64      `json:"subtotal_cents"`
}

// TransactionDTO is the service-level view of a transaction.
type TransactionDTO struct {
	ID             uuid.UUID               `json:"id"`
	StoreID        uuid.UUID               `json:"store_id"`
	CashierID      uuid.UUID               `json:"cashier_id"`
	Status         enums.TransactionStatus `json:"status"`
	PaymentMethod  enums.PaymentMethod     `json:"payment_method"`
	TaxRatePercent decimal.Decimal         `json:"tax_rate_percent"`
	SubtotalCents  int64                   `json:"subtotal_cents"`
	TaxCents       int64                   `json:"tax_cents"`
	TotalCents     int64                   `json:"total_cents"`
	PaidCents      int64                   `json:"paid_cents"`
	ChangeCents    int64                   `json:"change_cents"`

	GatewayToken       *string    `json:"gateway_session_token,omitempty"`
	GatewayRedirectURL *string    `json:"gateway_redirect_url,omitempty"`
	GatewayExpiresAt   *time.Time `json:"gateway_expires_at,omitempty"`

	CompletionSource *enums.CompletionSource `json:"completion_source,omitempty"`
	CompletedAt      *time.Time              `json:"completed_at,omitempty"`
	CancelledAt      *time.Time              `json:"cancelled_at,omitempty"`
	ExpiredAt        *time.Time              `json:"expired_at,omitempty"`

	Items []ItemDTO `json:"items"`

	CreatedAt time.Time `json:"created_at"`
}

// Page is one cursor page of transactions.
type Page struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted transaction onto the DTO.
func FromModel(txn *models.Transaction) *TransactionDTO {
	if txn == nil {
		return nil
	}
	dto := &TransactionDTO{
		ID:                 txn.ID,
		StoreID:            txn.StoreID,
		CashierID:          txn.CashierID,
		Status:             txn.Status,
		PaymentMethod:      txn.PaymentMethod,
		TaxRatePercent:     txn.TaxRatePercent,
		SubtotalCents:      txn.SubtotalCents,
		TaxCents:           txn.TaxCents,
		TotalCents:         txn.TotalCents,
		PaidCents:          txn.PaidCents,
		ChangeCents:        txn.ChangeCents,
		GatewayToken:       txn.GatewayToken,
		GatewayRedirectURL: txn.GatewayRedirectURL,
		GatewayExpiresAt:   txn.GatewayExpiresAt,
		CompletionSource:   txn.CompletionSource,
		CompletedAt:        txn.CompletedAt,
		CancelledAt:        txn.CancelledAt,
		ExpiredAt:          txn.ExpiredAt,
		CreatedAt:          txn.CreatedAt,
		Items:              make([]ItemDTO, 0, len(txn.Items)),
	}
	for _, item := range txn.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			CategoryID:     item.CategoryID,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			SubtotalCents:  item.SubtotalCents,
		})
	}
	return dto
}
