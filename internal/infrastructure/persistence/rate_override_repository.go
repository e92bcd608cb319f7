package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateOverrideRepository implements RateOverrideRepository using GORM
type GormRateOverrideRepository struct {
	db *gorm.DB
}

// NewGormRateOverrideRepository creates a new GormRateOverrideRepository
func NewGormRateOverrideRepository(db *gorm.DB) *GormRateOverrideRepository {
	return &GormRateOverrideRepository{db: db}
}

// FindByID finds an override by its ID
func (r *GormRateOverrideRepository) FindByID(ctx context.Context, id uuid.UUID) (*rates.CustomerRateOverride, error) {
	var model models.CustomerRateOverrideModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveForCustomerScope finds the currently active override for a
// (customer, scope)
func (r *GormRateOverrideRepository) FindActiveForCustomerScope(ctx context.Context, customerID uuid.UUID, scope rates.RateScope) (*rates.CustomerRateOverride, error) {
	var model models.CustomerRateOverrideModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND category = ? AND type = ? AND state = ?",
			customerID, scope.Category, scope.Type, rates.RateStateActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveAsOf finds active, date-valid overrides for a (customer, scope),
// most recently effective first
func (r *GormRateOverrideRepository) FindActiveAsOf(ctx context.Context, customerID uuid.UUID, scope rates.RateScope, asOf time.Time) ([]rates.CustomerRateOverride, error) {
	var overrideModels []models.CustomerRateOverrideModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND category = ? AND type = ? AND state = ?",
			customerID, scope.Category, scope.Type, rates.RateStateActive).
		Where("effective_date <= ?", asOf).
		Where("expiration_date IS NULL OR expiration_date >= ?", asOf).
		Order("effective_date DESC").
		Find(&overrideModels).Error; err != nil {
		return nil, err
	}

	overrides := make([]rates.CustomerRateOverride, len(overrideModels))
	for i := range overrideModels {
		overrides[i] = *overrideModels[i].ToDomain()
	}
	return overrides, nil
}

// FindByCustomer returns all overrides for a customer, newest first
func (r *GormRateOverrideRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]rates.CustomerRateOverride, error) {
	var overrideModels []models.CustomerRateOverrideModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("effective_date DESC").
		Find(&overrideModels).Error; err != nil {
		return nil, err
	}

	overrides := make([]rates.CustomerRateOverride, len(overrideModels))
	for i := range overrideModels {
		overrides[i] = *overrideModels[i].ToDomain()
	}
	return overrides, nil
}

// Save creates or updates an override
func (r *GormRateOverrideRepository) Save(ctx context.Context, override *rates.CustomerRateOverride) error {
	model := models.CustomerRateOverrideModelFromDomain(override)
	return r.db.WithContext(ctx).Save(model).Error
}

// ActivateSuperseding persists an activated override and supersedes the
// prior active set for its (customer, scope) in one transaction. All rows
// for the (customer, scope) are locked before the active set is read, so
// concurrent activations serialize and exactly one override stays ACTIVE.
func (r *GormRateOverrideRepository) ActivateSuperseding(ctx context.Context, override *rates.CustomerRateOverride) ([]rates.CustomerRateOverride, error) {
	var superseded []rates.CustomerRateOverride
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []models.CustomerRateOverrideModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("customer_id = ? AND category = ? AND type = ?",
				override.CustomerID, override.Scope.Category, override.Scope.Type).
			Find(&locked).Error; err != nil {
			return err
		}
		for i := range locked {
			if locked[i].State != rates.RateStateActive || locked[i].ID == override.ID {
				continue
			}
			prior := locked[i].ToDomain()
			if err := prior.Supersede(); err != nil {
				return err
			}
			if err := tx.Save(models.CustomerRateOverrideModelFromDomain(prior)).Error; err != nil {
				return err
			}
			superseded = append(superseded, *prior)
		}
		return tx.Save(models.CustomerRateOverrideModelFromDomain(override)).Error
	})
	if err != nil {
		return nil, err
	}
	return superseded, nil
}
