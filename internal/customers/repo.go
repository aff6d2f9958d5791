package customers

import (
	"context"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes customer and verification-code persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// FindByEmail matches the normalized email case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("lower(email) = ?", normalizeEmail(email)).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCode stores a new hashed verification code.
func (r *Repository) CreateCode(ctx context.Context, code *models.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// LatestActiveCode returns the newest unconsumed code for the customer.
func (r *Repository) LatestActiveCode(ctx context.Context, customerID uuid.UUID) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND consumed_at IS NULL", customerID).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// IncrementAttempts counts one verification attempt against the code.
func (r *Repository) IncrementAttempts(ctx context.Context, codeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ?", codeID).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// ConfirmCode consumes the code and marks its customer verified in one transaction.
func (r *Repository) ConfirmCode(ctx context.Context, codeID, customerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VerificationCode{}).
			Where("id = ?", codeID).
			UpdateColumn("consumed_at", at).Error; err != nil {
			return err
		}
		return tx.Model(&models.Customer{}).
			Where("id = ?", customerID).
			Updates(map[string]any{"email_verified": true, "verified_at": at}).Error
	})
}
