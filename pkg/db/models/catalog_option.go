package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
)

// CatalogOption stores every selectable option; Category discriminates engines,
// transmissions, colors, rims, interiors and features.
type CatalogOption struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Category        enums.OptionCategory   `gorm:"column:category;not null"`
	FeatureCategory *enums.FeatureCategory `gorm:"column:feature_category"`
	Name            string                 `gorm:"column:name;not null"`
	Brand           string                 `gorm:"column:brand;not null;default:''"`
	AdditionalPrice decimal.Decimal        `gorm:"column:additional_price;type:numeric(12,2);not null;default:0"`
	Position        int                    `gorm:"column:position;not null;default:0"`
	IsActive        bool                   `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
