package stores

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
)

// StoreDTO is the service-level view of a store.
type StoreDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	CurrencyCode   string          `json:"currency_code"`
	IsActive       bool            `json:"is_active"`
}

// FromModel maps a persisted store row onto the DTO.
func FromModel(store *models.Store) *StoreDTO {
	if store == nil {
		return nil
	}
	return &StoreDTO{
		ID:             store.ID,
		Name:           store.Name,
		TaxRatePercent: store.TaxRatePercent,
		CurrencyCode:   store.CurrencyCode,
		IsActive:       store.IsActive,
	}
}
