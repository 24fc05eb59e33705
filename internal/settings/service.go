package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satriaputra/tokopos-backend/internal/stores"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

const (
	// KeyTaxRatePercent overrides the store's default tax rate when present.
	KeyTaxRatePercent = "tax_rate_percent"
	// KeyReceiptFooter is free text printed under every receipt.
	KeyReceiptFooter = "receipt_footer"

	cacheTTL = 5 * time.Minute
)

var knownKeys = map[string]struct{}{
	KeyTaxRatePercent: {},
	KeyReceiptFooter:  {},
}

type settingsRepository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.StoreSetting, error)
	Upsert(ctx context.Context, storeID uuid.UUID, key, value string) error
}

type settingsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// SettingsDTO is the flattened key/value view handed to controllers.
type SettingsDTO struct {
	StoreID  uuid.UUID         `json:"store_id"`
	Values   map[string]string `json:"values"`
	CachedAt *time.Time        `json:"-"`
}

// UpdateInput carries the keys to overwrite.
type UpdateInput struct {
	Values map[string]string
}

// Service reads and writes per-store settings with a Redis read-through cache.
type Service interface {
	Get(ctx context.Context, storeID uuid.UUID) (*SettingsDTO, error)
	Update(ctx context.Context, storeID uuid.UUID, input UpdateInput) (*SettingsDTO, error)
	TaxRateFor(ctx context.Context, store *stores.StoreDTO) (decimal.Decimal, error)
}

type service struct {
	repo  settingsRepository
	cache settingsCache
}

// NewService builds the settings service. The cache is optional; without it
// every read goes to the database.
func NewService(repo settingsRepository, cache settingsCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo, cache: cache}, nil
}

func (s *service) Get(ctx context.Context, storeID uuid.UUID) (*SettingsDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	if cached := s.fromCache(ctx, storeID); cached != nil {
		return cached, nil
	}

	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	dto := &SettingsDTO{
		StoreID: storeID,
		Values:  make(map[string]string, len(rows)),
	}
	for _, row := range rows {
		dto.Values[row.Key] = row.Value
	}

	s.toCache(ctx, dto)
	return dto, nil
}

func (s *service) Update(ctx context.Context, storeID uuid.UUID, input UpdateInput) (*SettingsDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if len(input.Values) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no settings provided")
	}

	for key, value := range input.Values {
		if _, ok := knownKeys[key]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown setting %q", key))
		}
		if key == KeyTaxRatePercent {
			if err := validateTaxRate(value); err != nil {
				return nil, err
			}
		}
	}

	for key, value := range input.Values {
		if err := s.repo.Upsert(ctx, storeID, key, value); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, storeID)
	return s.Get(ctx, storeID)
}

// TaxRateFor resolves the effective tax rate: the store-level override wins,
// otherwise the store's default applies.
func (s *service) TaxRateFor(ctx context.Context, store *stores.StoreDTO) (decimal.Decimal, error) {
	if store == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "store required")
	}

	dto, err := s.Get(ctx, store.ID)
	if err != nil {
		return decimal.Zero, err
	}
	raw, ok := dto.Values[KeyTaxRatePercent]
	if !ok || raw == "" {
		return store.TaxRatePercent, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored tax rate is malformed")
	}
	return rate, nil
}

func validateTaxRate(value string) error {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be a decimal number")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be between 0 and 100")
	}
	return nil
}

func (s *service) cacheKey(storeID uuid.UUID) string {
	return s.cache.CacheKey("settings", storeID.String())
}

func (s *service) fromCache(ctx context.Context, storeID uuid.UUID) *SettingsDTO {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cacheKey(storeID))
	if err != nil {
		return nil
	}
	var dto SettingsDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil
	}
	return &dto
}

func (s *service) toCache(ctx context.Context, dto *SettingsDTO) {
	if s.cache == nil || dto == nil {
		return
	}
	payload, err := json.Marshal(dto)
	if err != nil {
		return
	}
	// Cache failures are non-fatal; the next read falls through to the DB.
	_ = s.cache.Set(ctx, s.cacheKey(dto.StoreID), string(payload), cacheTTL)
}

func (s *service) invalidate(ctx context.Context, storeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cacheKey(storeID))
}
