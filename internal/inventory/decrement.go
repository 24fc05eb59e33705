package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

// DecrementRequest asks for stock to be taken from one product.
type DecrementRequest struct {
	ProductID uuid.UUID
	Qty       int64
}

// Decrement reduces stock for every request or none of them. Each row is
// claimed with a conditional update so a concurrent sale can never push
// stock negative; the first shortfall aborts with the product's live
// availability and the surrounding transaction rolls the rest back.
//
// Callers must invoke this inside a transaction.
func Decrement(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, requests []DecrementRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction handle required")
	}
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if len(requests) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one decrement is required")
	}

	merged, err := mergeRequests(requests)
	if err != nil {
		return err
	}

	for _, req := range merged {
		result := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND store_id = ? AND stock_qty >= ?", req.ProductID, storeID, req.Qty).
			UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", req.Qty))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shortfallError(ctx, tx, storeID, req)
		}
	}
	return nil
}

// mergeRequests combines duplicate product lines so the conditional check
// covers the combined quantity, and orders rows to keep lock order stable.
func mergeRequests(requests []DecrementRequest) ([]DecrementRequest, error) {
	byProduct := make(map[uuid.UUID]int64, len(requests))
	for _, req := range requests {
		if req.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "decrement quantity must be positive")
		}
		byProduct[req.ProductID] += req.Qty
	}

	merged := make([]DecrementRequest, 0, len(byProduct))
	for productID, qty := range byProduct {
		merged = append(merged, DecrementRequest{ProductID: productID, Qty: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID.String() < merged[j].ProductID.String()
	})
	return merged, nil
}

func shortfallError(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, req DecrementRequest) error {
	var product models.Product
	err := tx.WithContext(ctx).
		Where("id = ? AND store_id = ?", req.ProductID, storeID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return err
	}
	return pkgerrors.InsufficientStock(req.ProductID, req.Qty, product.StockQty)
}
