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

// GormRateCatalogRepository implements RateCatalogRepository using GORM
type GormRateCatalogRepository struct {
	db *gorm.DB
}

// NewGormRateCatalogRepository creates a new GormRateCatalogRepository
func NewGormRateCatalogRepository(db *gorm.DB) *GormRateCatalogRepository {
	return &GormRateCatalogRepository{db: db}
}

// FindByID finds a catalog entry by its ID
func (r *GormRateCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*rates.RateCatalogEntry, error) {
	var model models.RateCatalogEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveForScope finds the currently active entry for a scope
func (r *GormRateCatalogRepository) FindActiveForScope(ctx context.Context, scope rates.RateScope) (*rates.RateCatalogEntry, error) {
	var model models.RateCatalogEntryModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND type = ? AND state = ?", scope.Category, scope.Type, rates.RateStateActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveAsOf finds active, date-valid entries for a scope, most recently
// effective first
func (r *GormRateCatalogRepository) FindActiveAsOf(ctx context.Context, scope rates.RateScope, asOf time.Time) ([]rates.RateCatalogEntry, error) {
	var entryModels []models.RateCatalogEntryModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND type = ? AND state = ?", scope.Category, scope.Type, rates.RateStateActive).
		Where("effective_date <= ?", asOf).
		Where("expiration_date IS NULL OR expiration_date >= ?", asOf).
		Order("effective_date DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]rates.RateCatalogEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// FindAllForScope returns the full version history for a scope, newest first
func (r *GormRateCatalogRepository) FindAllForScope(ctx context.Context, scope rates.RateScope) ([]rates.RateCatalogEntry, error) {
	var entryModels []models.RateCatalogEntryModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND type = ?", scope.Category, scope.Type).
		Order("effective_date DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]rates.RateCatalogEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// Save creates or updates a catalog entry
func (r *GormRateCatalogRepository) Save(ctx context.Context, entry *rates.RateCatalogEntry) error {
	model := models.RateCatalogEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// ActivateSuperseding persists an activated entry and supersedes the prior
// active set for its scope in one transaction. All scope rows are locked
// before the active set is read, so a concurrent activation for the same
// scope waits here and then sees this entry as the prior active to
// supersede. The prior-active decision is never made from an untransacted
// read.
func (r *GormRateCatalogRepository) ActivateSuperseding(ctx context.Context, entry *rates.RateCatalogEntry) ([]rates.RateCatalogEntry, error) {
	var superseded []rates.RateCatalogEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []models.RateCatalogEntryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("category = ? AND type = ?", entry.Scope.Category, entry.Scope.Type).
			Find(&locked).Error; err != nil {
			return err
		}
		for i := range locked {
			if locked[i].State != rates.RateStateActive || locked[i].ID == entry.ID {
				continue
			}
			prior := locked[i].ToDomain()
			if err := prior.Supersede(); err != nil {
				return err
			}
			if err := tx.Save(models.RateCatalogEntryModelFromDomain(prior)).Error; err != nil {
				return err
			}
			superseded = append(superseded, *prior)
		}
		return tx.Save(models.RateCatalogEntryModelFromDomain(entry)).Error
	})
	if err != nil {
		return nil, err
	}
	return superseded, nil
}
