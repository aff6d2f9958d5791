package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleModel is a configurable vehicle line offered in the catalog.
type VehicleModel struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Type      string          `gorm:"column:type;not null"`
	Brand     string          `gorm:"column:brand;not null"`
	BasePrice decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	ImageURL  *string         `gorm:"column:image_url"`
	AssetURL  *string         `gorm:"column:asset_url"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
