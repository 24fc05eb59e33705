package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/internal/money"
	"github.com/satriaputra/tokopos-backend/internal/stores"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByIDsAndStore(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

type storeService interface {
	GetActive(ctx context.Context, id uuid.UUID) (*stores.StoreDTO, error)
}

type taxResolver interface {
	TaxRateFor(ctx context.Context, store *stores.StoreDTO) (decimal.Decimal, error)
}

// Service executes checkout and read paths for transactions.
type Service interface {
	Checkout(ctx context.Context, storeID, cashierID uuid.UUID, input CheckoutInput) (*TransactionDTO, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*TransactionDTO, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	products productLoader
	stores   storeService
	tax      taxResolver
	sessions gatewaySessions
}

// NewService builds the transaction service.
func NewService(
	tx txRunner,
	repo Repository,
	products productLoader,
	storeSvc storeService,
	tax taxResolver,
	sessions gatewaySessions,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if storeSvc == nil {
		return nil, fmt.Errorf("store service required")
	}
	if tax == nil {
		return nil, fmt.Errorf("tax resolver required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		products: products,
		stores:   storeSvc,
		tax:      tax,
		sessions: sessions,
	}, nil
}

func (s *service) Checkout(ctx context.Context, storeID, cashierID uuid.UUID, input CheckoutInput) (*TransactionDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if cashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	store, err := s.stores.GetActive(ctx, storeID)
	if err != nil {
		return nil, err
	}

	rate, err := s.tax.TaxRateFor(ctx, store)
	if err != nil {
		return nil, err
	}

	items, lines, err := s.snapshotItems(ctx, storeID, input.Items)
	if err != nil {
		return nil, err
	}

	totals, err := money.ComputeTotals(lines, rate)
	if err != nil {
		return nil, err
	}

	strategy, err := resolveStrategy(input.PaymentMethod, s.sessions)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:             uuid.New(),
		StoreID:        storeID,
		CashierID:      cashierID,
		PaymentMethod:  input.PaymentMethod,
		TaxRatePercent: rate,
		SubtotalCents:  totals.SubtotalCents,
		TaxCents:       totals.TaxCents,
		TotalCents:     totals.TotalCents,
		Items:          items,
	}
	for i := range txn.Items {
		txn.Items[i].TransactionID = txn.ID
	}

	if err := strategy.Begin(ctx, txn, input); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, txn); err != nil {
			return err
		}
		return strategy.Settle(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	return FromModel(txn), nil
}

// snapshotItems freezes the product name and price into item rows so later
// catalog edits never rewrite history.
func (s *service) snapshotItems(ctx context.Context, storeID uuid.UUID, inputs []CheckoutItemInput) ([]models.TransactionItem, []money.LineInput, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, item := range inputs {
		if item.ProductID == uuid.Nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if item.Qty <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		ids = append(ids, item.ProductID)
	}

	loaded, err := s.products.FindByIDsAndStore(ctx, storeID, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*models.Product, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = &loaded[i]
	}

	items := make([]models.TransactionItem, 0, len(inputs))
	lines := make([]money.LineInput, 0, len(inputs))
	for _, input := range inputs {
		product, ok := byID[input.ProductID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !product.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q is inactive", product.Name))
		}

		subtotal, err := money.LineSubtotal(product.PriceCents, input.Qty)
		if err != nil {
			return nil, nil, err
		}

		items = append(items, models.TransactionItem{
			ID:             uuid.New(),
			StoreID:        storeID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			CategoryID:     product.CategoryID,
			UnitPriceCents: product.PriceCents,
			Qty:            input.Qty,
			SubtotalCents:  subtotal,
		})
		lines = append(lines, money.LineInput{
			UnitPriceCents: product.PriceCents,
			Qty:            input.Qty,
		})
	}
	return items, lines, nil
}

func (s *service) GetByID(ctx context.Context, storeID, id uuid.UUID) (*TransactionDTO, error) {
	if storeID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and transaction id required")
	}

	txn, err := s.repo.FindByIDAndStore(ctx, id, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Tenant mismatches are reported identically so transaction IDs
			// never leak across stores.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return FromModel(txn), nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter")
	}
	if filter.PaymentMethod != "" && !filter.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method filter")
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is empty")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	txns, err := s.repo.List(ctx, storeID, filter, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}

	page := &Page{Transactions: make([]TransactionDTO, 0, limit)}
	for i, txn := range txns {
		if i == limit {
			last := txns[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
			break
		}
		page.Transactions = append(page.Transactions, *FromModel(&txn))
	}
	return page, nil
}
