package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/forecast"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScenarioRepository implements ScenarioRepository using GORM
type GormScenarioRepository struct {
	db *gorm.DB
}

// NewGormScenarioRepository creates a new GormScenarioRepository
func NewGormScenarioRepository(db *gorm.DB) *GormScenarioRepository {
	return &GormScenarioRepository{db: db}
}

// FindByID loads a scenario with its lines
func (r *GormScenarioRepository) FindByID(ctx context.Context, id uuid.UUID) (*forecast.RevenueForecastScenario, error) {
	var model models.ForecastScenarioModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("customer_name ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent lists the most recently created scenarios, without lines
func (r *GormScenarioRepository) FindRecent(ctx context.Context, limit int) ([]forecast.RevenueForecastScenario, error) {
	var scenarioModels []models.ForecastScenarioModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&scenarioModels).Error; err != nil {
		return nil, err
	}

	scenarios := make([]forecast.RevenueForecastScenario, len(scenarioModels))
	for i := range scenarioModels {
		scenarios[i] = *scenarioModels[i].ToDomain()
	}
	return scenarios, nil
}

// Save persists a scenario and replaces its line set
func (r *GormScenarioRepository) Save(ctx context.Context, scenario *forecast.RevenueForecastScenario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ForecastScenarioModelFromDomain(scenario)
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("scenario_id = ?", scenario.ID).Delete(&models.ForecastLineModel{}).Error; err != nil {
			return err
		}
		if len(scenario.Lines) == 0 {
			return nil
		}
		lineModels := make([]models.ForecastLineModel, len(scenario.Lines))
		for i := range scenario.Lines {
			lineModels[i] = *models.ForecastLineModelFromDomain(&scenario.Lines[i])
		}
		return tx.Create(&lineModels).Error
	})
}

// Delete discards a scenario and its lines
func (r *GormScenarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scenario_id = ?", id).Delete(&models.ForecastLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ForecastScenarioModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
