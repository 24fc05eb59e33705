package settings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/satriaputra/tokopos-backend/internal/stores"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/redis"
)

type fakeSettingsRepo struct {
	rows      map[uuid.UUID]map[string]string
	listCalls int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: make(map[uuid.UUID]map[string]string)}
}

func (f *fakeSettingsRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]models.StoreSetting, error) {
	f.listCalls++
	out := make([]models.StoreSetting, 0)
	for key, value := range f.rows[storeID] {
		out = append(out, models.StoreSetting{StoreID: storeID, Key: key, Value: value})
	}
	return out, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, storeID uuid.UUID, key, value string) error {
	if f.rows[storeID] == nil {
		f.rows[storeID] = make(map[string]string)
	}
	f.rows[storeID][key] = value
	return nil
}

type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCache) CacheKey(parts ...string) string {
	return "tokopos:cache:" + strings.Join(parts, ":")
}

func TestGetReadsThroughCache(t *testing.T) {
	t.Parallel()

	repo := newFakeSettingsRepo()
	cache := newFakeCache()
	storeID := uuid.New()
	repo.rows[storeID] = map[string]string{KeyReceiptFooter: "Terima kasih"}

	svc, err := NewService(repo, cache)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	first, err := svc.Get(context.Background(), storeID)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first.Values[KeyReceiptFooter] != "Terima kasih" {
		t.Fatalf("unexpected values: %v", first.Values)
	}

	second, err := svc.Get(context.Background(), storeID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second.Values[KeyReceiptFooter] != "Terima kasih" {
		t.Fatalf("unexpected cached values: %v", second.Values)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.listCalls)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	t.Parallel()

	repo := newFakeSettingsRepo()
	cache := newFakeCache()
	storeID := uuid.New()

	svc, err := NewService(repo, cache)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Get(context.Background(), storeID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	updated, err := svc.Update(context.Background(), storeID, UpdateInput{
		Values: map[string]string{KeyTaxRatePercent: "12.5"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Values[KeyTaxRatePercent] != "12.5" {
		t.Fatalf("unexpected values after update: %v", updated.Values)
	}
}

func TestUpdateRejectsUnknownKeyAndBadRate(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newFakeSettingsRepo(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Update(context.Background(), uuid.New(), UpdateInput{
		Values: map[string]string{"mystery_key": "x"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown key, got %v", err)
	}

	_, err = svc.Update(context.Background(), uuid.New(), UpdateInput{
		Values: map[string]string{KeyTaxRatePercent: "200"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for out-of-range rate, got %v", err)
	}
}

func TestTaxRateFor(t *testing.T) {
	t.Parallel()

	repo := newFakeSettingsRepo()
	storeID := uuid.New()
	store := &stores.StoreDTO{ID: storeID, TaxRatePercent: decimal.RequireFromString("11")}

	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// No override: store default applies.
	rate, err := svc.TaxRateFor(context.Background(), store)
	if err != nil {
		t.Fatalf("tax rate: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("11")) {
		t.Fatalf("expected store default 11, got %s", rate)
	}

	// Override wins.
	repo.rows[storeID] = map[string]string{KeyTaxRatePercent: "8.25"}
	rate, err = svc.TaxRateFor(context.Background(), store)
	if err != nil {
		t.Fatalf("tax rate with override: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("8.25")) {
		t.Fatalf("expected override 8.25, got %s", rate)
	}
}
