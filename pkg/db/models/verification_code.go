package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode holds the argon2id hash of an emailed verification code.
type VerificationCode struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"column:customer_id;type:uuid;not null;index"`
	CodeHash   string     `gorm:"column:code_hash;not null"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null"`
	ConsumedAt *time.Time `gorm:"column:consumed_at"`
	Attempts   int        `gorm:"column:attempts;not null;default:0"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
