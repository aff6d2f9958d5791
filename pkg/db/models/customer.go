package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the identity an order is attached to.
type Customer struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email         string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName     string     `gorm:"column:first_name;not null"`
	LastName      string     `gorm:"column:last_name;not null"`
	EmailVerified bool       `gorm:"column:email_verified;not null;default:false"`
	VerifiedAt    *time.Time `gorm:"column:verified_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
