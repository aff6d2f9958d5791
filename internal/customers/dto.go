package customers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/configurator-backend/pkg/db/models"
)

// CustomerDTO is the transport shape of a customer.
type CustomerDTO struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ResolveInput identifies a customer by email; names are only used on creation.
type ResolveInput struct {
	Email     string
	FirstName string
	LastName  string
}

// Issued describes a verification code that was sent. The code itself never leaves
// the service.
type Issued struct {
	CustomerID uuid.UUID `json:"customer_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:            c.ID,
		Email:         c.Email,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		EmailVerified: c.EmailVerified,
		VerifiedAt:    c.VerifiedAt,
		CreatedAt:     c.CreatedAt,
	}
}

func (in ResolveInput) toModel() *models.Customer {
	return &models.Customer{
		ID:        uuid.New(),
		Email:     normalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
