package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingPeriodRepository implements BillingPeriodRepository using GORM
type GormBillingPeriodRepository struct {
	db *gorm.DB
}

// NewGormBillingPeriodRepository creates a new GormBillingPeriodRepository
func NewGormBillingPeriodRepository(db *gorm.DB) *GormBillingPeriodRepository {
	return &GormBillingPeriodRepository{db: db}
}

// FindByID loads a period with all its lines in calculation order
func (r *GormBillingPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingPeriod, error) {
	var model models.BillingPeriodModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists periods matching the filter, without lines, newest first
func (r *GormBillingPeriodRepository) FindAll(ctx context.Context, filter billing.PeriodFilter) ([]billing.BillingPeriod, error) {
	query := r.db.WithContext(ctx).Model(&models.BillingPeriodModel{})
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.FromDate != nil {
		query = query.Where("end_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("start_date <= ?", *filter.ToDate)
	}
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	var periodModels []models.BillingPeriodModel
	if err := query.Order("start_date DESC").Find(&periodModels).Error; err != nil {
		return nil, err
	}

	periods := make([]billing.BillingPeriod, len(periodModels))
	for i := range periodModels {
		periods[i] = *periodModels[i].ToDomain()
	}
	return periods, nil
}

// FindOverlapping returns periods whose date range overlaps [start, end]
func (r *GormBillingPeriodRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]billing.BillingPeriod, error) {
	var periodModels []models.BillingPeriodModel
	if err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Find(&periodModels).Error; err != nil {
		return nil, err
	}

	periods := make([]billing.BillingPeriod, len(periodModels))
	for i := range periodModels {
		periods[i] = *periodModels[i].ToDomain()
	}
	return periods, nil
}

// Save persists a period and replaces its line set in one transaction
func (r *GormBillingPeriodRepository) Save(ctx context.Context, period *billing.BillingPeriod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BillingPeriodModelFromDomain(period)
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		return r.replaceLines(tx, period)
	})
}

// SaveWithVersion persists the period only if the stored version still
// matches expectedVersion. The version check is what makes the
// calculating-state claim safe against concurrent runs.
func (r *GormBillingPeriodRepository) SaveWithVersion(ctx context.Context, period *billing.BillingPeriod, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BillingPeriodModelFromDomain(period)
		result := tx.Model(&models.BillingPeriodModel{}).
			Where("id = ? AND version = ?", period.ID, expectedVersion).
			Omit("Lines").
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.replaceLines(tx, period)
	})
}

// replaceLines deletes the period's stored lines and inserts the current set
func (r *GormBillingPeriodRepository) replaceLines(tx *gorm.DB, period *billing.BillingPeriod) error {
	if err := tx.Where("period_id = ?", period.ID).Delete(&models.BillingLineModel{}).Error; err != nil {
		return err
	}
	if len(period.Lines) == 0 {
		return nil
	}
	lineModels := make([]models.BillingLineModel, len(period.Lines))
	for i := range period.Lines {
		lineModels[i] = *models.BillingLineModelFromDomain(&period.Lines[i], i)
	}
	return tx.Create(&lineModels).Error
}
