package models

import (
	"time"

	"github.com/google/uuid"
)

// ConfigurationDraft persists a saved configuration snapshot as JSON.
type ConfigurationDraft struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ModelID   uuid.UUID `gorm:"column:model_id;type:uuid;not null;index"`
	Payload   string    `gorm:"column:payload;type:jsonb;not null"`
	SavedAt   time.Time `gorm:"column:saved_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
