package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingProfileSource implements the BillingProfileSource read port on
// the customer profile tables
type GormBillingProfileSource struct {
	db *gorm.DB
}

// NewGormBillingProfileSource creates a new GormBillingProfileSource
func NewGormBillingProfileSource(db *gorm.DB) *GormBillingProfileSource {
	return &GormBillingProfileSource{db: db}
}

// ProfileFor returns the billing profile for one customer, with departments
// ordered by name for stable invoice sections
func (r *GormBillingProfileSource) ProfileFor(ctx context.Context, customerID uuid.UUID) (*billing.CustomerBillingProfile, error) {
	var model models.CustomerProfileModel
	if err := r.db.WithContext(ctx).
		Preload("Departments", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("ProductCharges", func(db *gorm.DB) *gorm.DB {
			return db.Order("description ASC")
		}).
		First(&model, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
