package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

const maxRangeDays = 366

type reportsRepository interface {
	Summary(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) (*Summary, error)
	SalesByDay(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) ([]DayBucket, error)
	SalesByPaymentMethod(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) ([]MethodBucket, error)
	BestSellers(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter, limit int) ([]ProductSales, error)
	TopCategories(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter, limit int) ([]CategorySales, error)
}

// Dashboard is the full reporting payload for one window, with
// period-over-period growth against the preceding window of equal length.
type Dashboard struct {
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
	Current         *Summary         `json:"current"`
	Previous        *Summary         `json:"previous"`
	GrowthPercent   *decimal.Decimal `json:"growth_percent,omitempty"`
	ByDay           []DayBucket      `json:"by_day"`
	ByPaymentMethod []MethodBucket   `json:"by_payment_method"`
	BestSellers     []ProductSales   `json:"best_sellers"`
	TopCategories   []CategorySales  `json:"top_categories"`
}

// Service exposes reporting reads.
type Service interface {
	Summary(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) (*Summary, error)
	Dashboard(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) (*Dashboard, error)
}

type service struct {
	repo reportsRepository
}

// NewService builds the reporting service.
func NewService(repo reportsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Summary(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) (*Summary, error) {
	if err := validateWindow(storeID, from, to); err != nil {
		return nil, err
	}
	return s.repo.Summary(ctx, storeID, from, to, filter)
}

func (s *service) Dashboard(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) (*Dashboard, error) {
	if err := validateWindow(storeID, from, to); err != nil {
		return nil, err
	}

	current, err := s.repo.Summary(ctx, storeID, from, to, filter)
	if err != nil {
		return nil, err
	}

	// The comparison window is the same length, ending where this one starts.
	span := to.Sub(from)
	previous, err := s.repo.Summary(ctx, storeID, from.Add(-span), from, filter)
	if err != nil {
		return nil, err
	}

	byDay, err := s.repo.SalesByDay(ctx, storeID, from, to, filter)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.repo.SalesByPaymentMethod(ctx, storeID, from, to, filter)
	if err != nil {
		return nil, err
	}
	bestSellers, err := s.repo.BestSellers(ctx, storeID, from, to, filter, 10)
	if err != nil {
		return nil, err
	}
	topCategories, err := s.repo.TopCategories(ctx, storeID, from, to, filter, 10)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		From:            from,
		To:              to,
		Current:         current,
		Previous:        previous,
		GrowthPercent:   growthPercent(current.GrossCents, previous.GrossCents),
		ByDay:           byDay,
		ByPaymentMethod: byMethod,
		BestSellers:     bestSellers,
		TopCategories:   topCategories,
	}, nil
}

// growthPercent reports the relative change in gross sales. Nil when the
// previous window had no sales, since the ratio is undefined.
func growthPercent(current, previous int64) *decimal.Decimal {
	if previous == 0 {
		return nil
	}
	growth := decimal.NewFromInt(current - previous).
		Div(decimal.NewFromInt(previous)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return &growth
}

func validateWindow(storeID uuid.UUID, from, to time.Time) error {
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if from.IsZero() || to.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	if !to.After(from) {
		return pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return pkgerrors.New(pkgerrors.CodeValidation, "window exceeds one year")
	}
	return nil
}
