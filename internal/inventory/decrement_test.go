package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

func TestDecrement(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	productA := seedProduct(t, db, storeID, 5)
	productB := seedProduct(t, db, storeID, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, storeID, []DecrementRequest{
			{ProductID: productA, Qty: 3},
			{ProductID: productB, Qty: 2},
		})
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	if got := loadStock(t, db, productA); got != 2 {
		t.Fatalf("expected product a stock 2, got %d", got)
	}
	if got := loadStock(t, db, productB); got != 0 {
		t.Fatalf("expected product b stock 0, got %d", got)
	}
}

func TestDecrementAllOrNothing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	productA := seedProduct(t, db, storeID, 5)
	productB := seedProduct(t, db, storeID, 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, storeID, []DecrementRequest{
			{ProductID: productA, Qty: 3},
			{ProductID: productB, Qty: 2},
		})
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	if details["product_id"] != productB.String() {
		t.Fatalf("expected shortfall details for product b, got %v", details)
	}
	if details["requested"] != int64(2) || details["available"] != int64(1) {
		t.Fatalf("unexpected shortfall amounts: %v", details)
	}

	// Rollback must restore product a too.
	if got := loadStock(t, db, productA); got != 5 {
		t.Fatalf("expected product a stock unchanged at 5, got %d", got)
	}
	if got := loadStock(t, db, productB); got != 1 {
		t.Fatalf("expected product b stock unchanged at 1, got %d", got)
	}
}

func TestDecrementMergesDuplicateLines(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	product := seedProduct(t, db, storeID, 5)

	// 3 + 3 exceeds the 5 in stock even though each line alone fits.
	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, storeID, []DecrementRequest{
			{ProductID: product, Qty: 3},
			{ProductID: product, Qty: 3},
		})
	})
	if err == nil {
		t.Fatal("expected insufficient stock for combined quantity")
	}
	if got := loadStock(t, db, product); got != 5 {
		t.Fatalf("expected stock unchanged at 5, got %d", got)
	}
}

func TestDecrementScopedToStore(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	otherStore := uuid.New()
	product := seedProduct(t, db, storeID, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, otherStore, []DecrementRequest{
			{ProductID: product, Qty: 1},
		})
	})
	if err == nil {
		t.Fatal("expected not found for foreign store")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := loadStock(t, db, product); got != 5 {
		t.Fatalf("expected stock unchanged at 5, got %d", got)
	}
}

func TestDecrementInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	product := seedProduct(t, db, storeID, 5)

	err := Decrement(ctx, db, storeID, []DecrementRequest{{ProductID: product, Qty: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func loadStock(t *testing.T, db *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.StockQty
}

func seedProduct(t *testing.T, db *gorm.DB, storeID uuid.UUID, stock int64) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		StoreID:    storeID,
		SKU:        uuid.NewString()[:8],
		Name:       "test product",
		PriceCents: 1000,
		StockQty:   stock,
		IsActive:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}
