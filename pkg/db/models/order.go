package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
)

// Order is a submitted vehicle configuration.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	ModelID       uuid.UUID           `gorm:"column:model_id;type:uuid;not null"`
	DraftID       *uuid.UUID          `gorm:"column:draft_id;type:uuid"`
	Snapshot      string              `gorm:"column:snapshot;type:jsonb;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Financing     *string             `gorm:"column:financing;type:jsonb"`
	TotalPrice    decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'submitted'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
