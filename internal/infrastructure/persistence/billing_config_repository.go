package persistence

import (
	"context"
	"errors"

	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBillingConfigRepository implements BillingConfigSource using GORM
type GormBillingConfigRepository struct {
	db *gorm.DB
}

// NewGormBillingConfigRepository creates a new GormBillingConfigRepository
func NewGormBillingConfigRepository(db *gorm.DB) *GormBillingConfigRepository {
	return &GormBillingConfigRepository{db: db}
}

// ActiveConfig returns the active billing configuration
func (r *GormBillingConfigRepository) ActiveConfig(ctx context.Context) (*billing.BillingConfig, error) {
	var model models.BillingConfigModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SeedIfEmpty installs an active configuration from the startup defaults
// when no configuration exists yet. An existing configuration, active or
// not, is left untouched.
func (r *GormBillingConfigRepository) SeedIfEmpty(ctx context.Context, dayOfMonth int, defaultMinimumFee decimal.Decimal) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BillingConfigModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	model := models.BillingConfigModel{
		BillingDayOfMonth: dayOfMonth,
		DefaultMinimumFee: defaultMinimumFee,
		Active:            true,
	}
	model.FromDomainBaseEntity(shared.NewBaseEntity())
	return r.db.WithContext(ctx).Create(&model).Error
}
