package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreSetting is one key/value configuration row scoped to a store.
type StoreSetting struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_store_settings_store_key"`
	Key       string    `gorm:"column:key;not null;uniqueIndex:idx_store_settings_store_key"`
	Value     string    `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
