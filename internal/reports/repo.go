package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/pkg/enums"
)

// Repository aggregates persisted transaction totals. Every query reads the
// stored cents columns; nothing is ever recomputed from prices or tax rates.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to reporting queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows report queries. A category filter keeps transactions that
// sold at least one item snapshotted under that category; header-level sums
// stay intact so they always match the persisted totals.
type Filter struct {
	CategoryID *uuid.UUID
}

// Summary is the rollup of completed transactions in a window.
type Summary struct {
	TransactionCount int64 `json:"transaction_count"`
	SubtotalCents    int64 `json:"subtotal_cents"`
	TaxCents         int64 `json:"tax_cents"`
	GrossCents       int64 `json:"gross_cents"`
}

// DayBucket is one calendar day's completed sales.
type DayBucket struct {
	Day              string `json:"day"`
	TransactionCount int64  `json:"transaction_count"`
	GrossCents       int64  `json:"gross_cents"`
}

// MethodBucket is completed sales for one payment method.
type MethodBucket struct {
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	TransactionCount int64               `json:"transaction_count"`
	GrossCents       int64               `json:"gross_cents"`
}

// ProductSales is the aggregated quantity and revenue of one product.
type ProductSales struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	QtySold      int64     `json:"qty_sold"`
	RevenueCents int64     `json:"revenue_cents"`
}

// CategorySales is the aggregated quantity and revenue of one category.
// Uncategorized items roll up under a nil category id.
type CategorySales struct {
	CategoryID   *uuid.UUID `json:"category_id"`
	QtySold      int64      `json:"qty_sold"`
	RevenueCents int64      `json:"revenue_cents"`
}

const categoryExistsClause = `
		  AND EXISTS (
			SELECT 1 FROM transaction_items ti
			WHERE ti.transaction_id = transactions.id AND ti.category_id = ?)`

// Summary rolls up completed transactions between from (inclusive) and to
// (exclusive).
func (r *Repository) Summary(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) (*Summary, error) {
	query := `
		SELECT
			COUNT(*) AS transaction_count,
			COALESCE(SUM(subtotal_cents), 0) AS subtotal_cents,
			COALESCE(SUM(tax_cents), 0) AS tax_cents,
			COALESCE(SUM(total_cents), 0) AS gross_cents
		FROM transactions
		WHERE store_id = ?
		  AND status = ?
		  AND completed_at >= ? AND completed_at < ?`
	args := []any{storeID, enums.TransactionStatusCompleted, from, to}
	if filter.CategoryID != nil {
		query += categoryExistsClause
		args = append(args, *filter.CategoryID)
	}

	var summary Summary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// SalesByDay groups completed sales by the calendar day they settled.
func (r *Repository) SalesByDay(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) ([]DayBucket, error) {
	query := `
		SELECT
			date(completed_at) AS day,
			COUNT(*) AS transaction_count,
			COALESCE(SUM(total_cents), 0) AS gross_cents
		FROM transactions
		WHERE store_id = ?
		  AND status = ?
		  AND completed_at >= ? AND completed_at < ?`
	args := []any{storeID, enums.TransactionStatusCompleted, from, to}
	if filter.CategoryID != nil {
		query += categoryExistsClause
		args = append(args, *filter.CategoryID)
	}
	query += `
		GROUP BY date(completed_at)
		ORDER BY day ASC`

	var buckets []DayBucket
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&buckets).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}

// SalesByPaymentMethod groups completed sales by tender type.
func (r *Repository) SalesByPaymentMethod(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter) ([]MethodBucket, error) {
	query := `
		SELECT
			payment_method,
			COUNT(*) AS transaction_count,
			COALESCE(SUM(total_cents), 0) AS gross_cents
		FROM transactions
		WHERE store_id = ?
		  AND status = ?
		  AND completed_at >= ? AND completed_at < ?`
	args := []any{storeID, enums.TransactionStatusCompleted, from, to}
	if filter.CategoryID != nil {
		query += categoryExistsClause
		args = append(args, *filter.CategoryID)
	}
	query += `
		GROUP BY payment_method
		ORDER BY gross_cents DESC`

	var buckets []MethodBucket
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&buckets).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}

// BestSellers ranks products by quantity sold across completed transactions,
// reading the immutable item snapshots so renamed products keep their
// historical name.
func (r *Repository) BestSellers(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT
			ti.product_id,
			ti.product_name,
			COALESCE(SUM(ti.qty), 0) AS qty_sold,
			COALESCE(SUM(ti.subtotal_cents), 0) AS revenue_cents
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.store_id = ?
		  AND t.status = ?
		  AND t.completed_at >= ? AND t.completed_at < ?`
	args := []any{storeID, enums.TransactionStatusCompleted, from, to}
	if filter.CategoryID != nil {
		query += `
		  AND ti.category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	query += `
		GROUP BY ti.product_id, ti.product_name
		ORDER BY qty_sold DESC, revenue_cents DESC
		LIMIT ?`
	args = append(args, limit)

	var rows []ProductSales
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopCategories ranks item-snapshot categories by revenue across completed
// transactions.
func (r *Repository) TopCategories(ctx context.Context, storeID uuid.UUID, from, to time.Time, filter Filter, limit int) ([]CategorySales, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT
			ti.category_id,
			COALESCE(SUM(ti.qty), 0) AS qty_sold,
			COALESCE(SUM(ti.subtotal_cents), 0) AS revenue_cents
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.store_id = ?
		  AND t.status = ?
		  AND t.completed_at >= ? AND t.completed_at < ?`
	args := []any{storeID, enums.TransactionStatusCompleted, from, to}
	if filter.CategoryID != nil {
		query += `
		  AND ti.category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	query += `
		GROUP BY ti.category_id
		ORDER BY revenue_cents DESC, qty_sold DESC
		LIMIT ?`
	args = append(args, limit)

	var rows []CategorySales
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
