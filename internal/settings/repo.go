package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
)

// Repository handles per-store setting rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to settings operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStore returns every setting row for the store.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.StoreSetting, error) {
	var rows []models.StoreSetting
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert writes one key for the store, replacing any existing value.
func (r *Repository) Upsert(ctx context.Context, storeID uuid.UUID, key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key is required")
	}
	row := models.StoreSetting{
		ID:      uuid.New(),
		StoreID: storeID,
		Key:     key,
		Value:   value,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}
