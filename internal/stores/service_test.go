package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

type fakeStoreRepo struct {
	stores map[uuid.UUID]*models.Store
}

func (f *fakeStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return store, nil
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	svc, err := NewService(&fakeStoreRepo{stores: map[uuid.UUID]*models.Store{
		storeID: {
			ID:             storeID,
			Name:           "Warung Sinar",
			TaxRatePercent: decimal.RequireFromString("11"),
			CurrencyCode:   "IDR",
			IsActive:       true,
		},
	}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.GetByID(context.Background(), storeID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if dto.Name != "Warung Sinar" || !dto.TaxRatePercent.Equal(decimal.RequireFromString("11")) {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&fakeStoreRepo{stores: map[uuid.UUID]*models.Store{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetActiveRejectsDeactivatedStore(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	svc, err := NewService(&fakeStoreRepo{stores: map[uuid.UUID]*models.Store{
		storeID: {ID: storeID, Name: "closed", IsActive: false},
	}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetActive(context.Background(), storeID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}
