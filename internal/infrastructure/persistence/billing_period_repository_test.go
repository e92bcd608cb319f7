package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingPeriodTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.BillingPeriodModel{}, &models.BillingLineModel{})
	require.NoError(t, err)

	return db
}

func monthPeriod(t *testing.T, year int, month time.Month) *billing.BillingPeriod {
	t.Helper()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	period, err := billing.NewBillingPeriod(start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	return period
}

func storageLine(t *testing.T, periodID, customerID uuid.UUID, description string, quantity, rate float64) billing.BillingLine {
	t.Helper()
	line, err := billing.NewBillingLine(
		periodID, customerID, nil,
		billing.LineTypeStorage, description,
		decimal.NewFromFloat(quantity), decimal.NewFromFloat(rate),
	)
	require.NoError(t, err)
	return *line
}

func TestGormBillingPeriodRepository_Save(t *testing.T) {
	db := setupBillingPeriodTestDB(t)
	repo := NewGormBillingPeriodRepository(db)
	ctx := context.Background()

	t.Run("round-trips a period with its lines in order", func(t *testing.T) {
		period := monthPeriod(t, 2026, time.January)
		customerID := uuid.New()
		lines := []billing.BillingLine{
			storageLine(t, period.ID, customerID, "standard container storage", 45, 2.50),
			storageLine(t, period.ID, customerID, "map container storage", 3, 4.00),
		}
		require.NoError(t, period.BeginCalculation())
		require.NoError(t, period.CompleteCalculation(lines))
		require.NoError(t, repo.Save(ctx, period))

		found, err := repo.FindByID(ctx, period.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PeriodStateReady, found.State)
		require.Len(t, found.Lines, 2)
		assert.Equal(t, "standard container storage", found.Lines[0].Description)
		assert.Equal(t, "map container storage", found.Lines[1].Description)
		assert.True(t, found.TotalAmount().Equal(decimal.NewFromFloat(124.50)))
		require.NotNil(t, found.CalculatedAt)
	})

	t.Run("recalculation replaces the stored line set", func(t *testing.T) {
		period := monthPeriod(t, 2026, time.February)
		customerID := uuid.New()
		require.NoError(t, period.BeginCalculation())
		require.NoError(t, period.CompleteCalculation([]billing.BillingLine{
			storageLine(t, period.ID, customerID, "standard container storage", 10, 2.50),
		}))
		require.NoError(t, repo.Save(ctx, period))

		require.NoError(t, period.BeginCalculation())
		require.NoError(t, period.CompleteCalculation([]billing.BillingLine{
			storageLine(t, period.ID, customerID, "standard container storage", 12, 2.50),
		}))
		require.NoError(t, repo.Save(ctx, period))

		found, err := repo.FindByID(ctx, period.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.True(t, found.Lines[0].Amount.Equal(decimal.NewFromInt(30)))
	})

	t.Run("missing period returns not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBillingPeriodRepository_SaveWithVersion(t *testing.T) {
	db := setupBillingPeriodTestDB(t)
	repo := NewGormBillingPeriodRepository(db)
	ctx := context.Background()

	t.Run("persists when the stored version matches", func(t *testing.T) {
		period := monthPeriod(t, 2026, time.March)
		require.NoError(t, repo.Save(ctx, period))

		stored := period.Version
		require.NoError(t, period.BeginCalculation())
		require.NoError(t, repo.SaveWithVersion(ctx, period, stored))

		found, err := repo.FindByID(ctx, period.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PeriodStateCalculating, found.State)
		assert.Equal(t, period.Version, found.Version)
	})

	t.Run("a stale version is a concurrency conflict", func(t *testing.T) {
		period := monthPeriod(t, 2026, time.April)
		require.NoError(t, repo.Save(ctx, period))

		stored := period.Version
		require.NoError(t, period.BeginCalculation())
		require.NoError(t, repo.SaveWithVersion(ctx, period, stored))

		// a second writer still holding the old version loses
		err := repo.SaveWithVersion(ctx, period, stored)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormBillingPeriodRepository_Queries(t *testing.T) {
	db := setupBillingPeriodTestDB(t)
	repo := NewGormBillingPeriodRepository(db)
	ctx := context.Background()

	january := monthPeriod(t, 2026, time.January)
	february := monthPeriod(t, 2026, time.February)
	require.NoError(t, repo.Save(ctx, january))
	require.NoError(t, repo.Save(ctx, february))

	t.Run("lists periods newest first", func(t *testing.T) {
		periods, err := repo.FindAll(ctx, billing.PeriodFilter{})
		require.NoError(t, err)
		require.Len(t, periods, 2)
		assert.Equal(t, february.ID, periods[0].ID)
		assert.Equal(t, january.ID, periods[1].ID)
	})

	t.Run("filters by state", func(t *testing.T) {
		state := billing.PeriodStateDraft
		periods, err := repo.FindAll(ctx, billing.PeriodFilter{State: &state})
		require.NoError(t, err)
		assert.Len(t, periods, 2)

		state = billing.PeriodStateClosed
		periods, err = repo.FindAll(ctx, billing.PeriodFilter{State: &state})
		require.NoError(t, err)
		assert.Empty(t, periods)
	})

	t.Run("filters by date range", func(t *testing.T) {
		from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		periods, err := repo.FindAll(ctx, billing.PeriodFilter{FromDate: &from})
		require.NoError(t, err)
		require.Len(t, periods, 1)
		assert.Equal(t, february.ID, periods[0].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		periods, err := repo.FindAll(ctx, billing.PeriodFilter{Filter: shared.Filter{Page: 2, PageSize: 1}})
		require.NoError(t, err)
		require.Len(t, periods, 1)
		assert.Equal(t, january.ID, periods[0].ID)
	})

	t.Run("detects overlapping periods", func(t *testing.T) {
		overlapping, err := repo.FindOverlapping(ctx,
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Len(t, overlapping, 2)

		overlapping, err = repo.FindOverlapping(ctx,
			time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Empty(t, overlapping)
	})
}
