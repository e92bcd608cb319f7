package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/forecast"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupScenarioTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ForecastScenarioModel{}, &models.ForecastLineModel{})
	require.NoError(t, err)

	return db
}

func completedScenario(t *testing.T, name string) *forecast.RevenueForecastScenario {
	t.Helper()
	targetID := uuid.New()
	scenario, err := forecast.NewScenario(name, forecast.ScenarioCustomerSpecific, forecast.ScenarioParameters{
		AdjustmentKind:    forecast.AdjustmentPercentage,
		AdjustmentValue:   decimal.NewFromInt(10),
		TargetCustomerIDs: []uuid.UUID{targetID},
	})
	require.NoError(t, err)

	lines := []forecast.RevenueForecastLine{
		{
			BaseEntity:       shared.NewBaseEntity(),
			ScenarioID:       scenario.ID,
			CustomerID:       targetID,
			CustomerName:     "Meridian Health Partners",
			CurrentRevenue:   decimal.NewFromInt(100),
			ProjectedRevenue: decimal.NewFromInt(110),
			RevenueDelta:     decimal.NewFromInt(10),
		},
	}
	require.NoError(t, scenario.Complete(
		lines,
		decimal.NewFromInt(100), decimal.NewFromInt(110),
		1, forecast.RiskLow,
	))
	return scenario
}

func TestGormScenarioRepository_Save(t *testing.T) {
	db := setupScenarioTestDB(t)
	repo := NewGormScenarioRepository(db)
	ctx := context.Background()

	t.Run("round-trips a completed scenario with lines", func(t *testing.T) {
		scenario := completedScenario(t, "10% increase for key accounts")
		require.NoError(t, repo.Save(ctx, scenario))

		found, err := repo.FindByID(ctx, scenario.ID)
		require.NoError(t, err)
		assert.Equal(t, scenario.Name, found.Name)
		assert.Equal(t, forecast.ScenarioStateCompleted, found.State)
		assert.Equal(t, scenario.Parameters.TargetCustomerIDs, found.Parameters.TargetCustomerIDs)
		assert.True(t, found.CurrentMonthlyRevenue.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.ProjectedMonthlyRevenue.Equal(decimal.NewFromInt(110)))
		assert.Equal(t, 1, found.RiskScore)
		assert.Equal(t, forecast.RiskLow, found.RiskLevel)
		require.NotNil(t, found.RanAt)

		require.Len(t, found.Lines, 1)
		assert.Equal(t, "Meridian Health Partners", found.Lines[0].CustomerName)
		assert.True(t, found.Lines[0].RevenueDelta.Equal(decimal.NewFromInt(10)))
	})

	t.Run("missing scenario returns not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormScenarioRepository_FindRecent(t *testing.T) {
	db := setupScenarioTestDB(t)
	repo := NewGormScenarioRepository(db)
	ctx := context.Background()

	older := completedScenario(t, "older scenario")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer := completedScenario(t, "newer scenario")
	require.NoError(t, repo.Save(ctx, newer))

	t.Run("lists newest first within the limit", func(t *testing.T) {
		scenarios, err := repo.FindRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, scenarios, 1)
		assert.Equal(t, newer.ID, scenarios[0].ID)
	})
}

func TestGormScenarioRepository_Delete(t *testing.T) {
	db := setupScenarioTestDB(t)
	repo := NewGormScenarioRepository(db)
	ctx := context.Background()

	t.Run("discards the scenario and its lines", func(t *testing.T) {
		scenario := completedScenario(t, "disposable")
		require.NoError(t, repo.Save(ctx, scenario))

		require.NoError(t, repo.Delete(ctx, scenario.ID))

		_, err := repo.FindByID(ctx, scenario.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var lineCount int64
		require.NoError(t, db.Model(&models.ForecastLineModel{}).
			Where("scenario_id = ?", scenario.ID).
			Count(&lineCount).Error)
		assert.Zero(t, lineCount)
	})

	t.Run("deleting a missing scenario returns not found", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
