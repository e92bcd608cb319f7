package forecast

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/application/request"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/forecast"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memScenarioRepo struct {
	scenarios map[uuid.UUID]forecast.RevenueForecastScenario
}

func newMemScenarioRepo() *memScenarioRepo {
	return &memScenarioRepo{scenarios: make(map[uuid.UUID]forecast.RevenueForecastScenario)}
}

func (m *memScenarioRepo) FindByID(_ context.Context, id uuid.UUID) (*forecast.RevenueForecastScenario, error) {
	s, ok := m.scenarios[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	s.Lines = append([]forecast.RevenueForecastLine(nil), s.Lines...)
	return &s, nil
}

func (m *memScenarioRepo) FindRecent(_ context.Context, limit int) ([]forecast.RevenueForecastScenario, error) {
	out := make([]forecast.RevenueForecastScenario, 0, len(m.scenarios))
	for _, s := range m.scenarios {
		s.Lines = nil
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memScenarioRepo) Save(_ context.Context, scenario *forecast.RevenueForecastScenario) error {
	cp := *scenario
	cp.Lines = append([]forecast.RevenueForecastLine(nil), scenario.Lines...)
	m.scenarios[scenario.ID] = cp
	return nil
}

func (m *memScenarioRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.scenarios[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.scenarios, id)
	return nil
}

type stubCatalog struct {
	entry *rates.RateCatalogEntry
}

func (s *stubCatalog) FindByID(_ context.Context, _ uuid.UUID) (*rates.RateCatalogEntry, error) {
	return nil, shared.ErrNotFound
}

func (s *stubCatalog) FindActiveForScope(_ context.Context, scope rates.RateScope) (*rates.RateCatalogEntry, error) {
	if s.entry != nil && s.entry.Scope == scope {
		return s.entry, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubCatalog) FindActiveAsOf(_ context.Context, scope rates.RateScope, asOf time.Time) ([]rates.RateCatalogEntry, error) {
	if s.entry != nil && s.entry.Scope == scope && s.entry.IsEffectiveOn(asOf) {
		return []rates.RateCatalogEntry{*s.entry}, nil
	}
	return nil, nil
}

func (s *stubCatalog) FindAllForScope(_ context.Context, scope rates.RateScope) ([]rates.RateCatalogEntry, error) {
	if s.entry != nil && s.entry.Scope == scope {
		return []rates.RateCatalogEntry{*s.entry}, nil
	}
	return nil, nil
}

func (s *stubCatalog) Save(_ context.Context, _ *rates.RateCatalogEntry) error { return nil }

func (s *stubCatalog) ActivateSuperseding(_ context.Context, _ *rates.RateCatalogEntry) ([]rates.RateCatalogEntry, error) {
	return nil, nil
}

type stubOverrides struct{}

func (s *stubOverrides) FindByID(_ context.Context, _ uuid.UUID) (*rates.CustomerRateOverride, error) {
	return nil, shared.ErrNotFound
}

func (s *stubOverrides) FindActiveForCustomerScope(_ context.Context, _ uuid.UUID, _ rates.RateScope) (*rates.CustomerRateOverride, error) {
	return nil, shared.ErrNotFound
}

func (s *stubOverrides) FindActiveAsOf(_ context.Context, _ uuid.UUID, _ rates.RateScope, _ time.Time) ([]rates.CustomerRateOverride, error) {
	return nil, nil
}

func (s *stubOverrides) FindByCustomer(_ context.Context, _ uuid.UUID) ([]rates.CustomerRateOverride, error) {
	return nil, nil
}

func (s *stubOverrides) Save(_ context.Context, _ *rates.CustomerRateOverride) error { return nil }

func (s *stubOverrides) ActivateSuperseding(_ context.Context, _ *rates.CustomerRateOverride) ([]rates.CustomerRateOverride, error) {
	return nil, nil
}

type stubInventory struct {
	counts map[uuid.UUID]int64
}

func (s *stubInventory) CountByCustomer(_ context.Context, customerID uuid.UUID) ([]billing.ContainerGroup, error) {
	count, ok := s.counts[customerID]
	if !ok {
		return nil, nil
	}
	return []billing.ContainerGroup{
		{CustomerID: customerID, Classification: billing.ClassificationStandard, Count: count},
	}, nil
}

func (s *stubInventory) BillableCustomerIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(s.counts))
	for id := range s.counts {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubProfiles struct{}

func (s *stubProfiles) ProfileFor(_ context.Context, customerID uuid.UUID) (*billing.CustomerBillingProfile, error) {
	return &billing.CustomerBillingProfile{CustomerID: customerID}, nil
}

func serviceFixture(t *testing.T, counts map[uuid.UUID]int64) (*ForecastService, *memScenarioRepo) {
	t.Helper()
	entry, err := rates.NewRateCatalogEntry(
		rates.RateScope{Category: rates.CategoryStorage, Type: rates.TypeStandardStorage},
		rates.RatePerContainer,
		decimal.NewFromFloat(2.50), decimal.Zero,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil,
	)
	require.NoError(t, err)
	require.NoError(t, entry.Activate())

	forecaster := forecast.NewForecaster(
		rates.NewResolver(&stubCatalog{entry: entry}, &stubOverrides{}),
		&stubInventory{counts: counts},
		&stubProfiles{},
	)
	repo := newMemScenarioRepo()
	return NewForecastService(repo, forecaster, nil, zap.NewNop()), repo
}

func globalIncreaseRequest() RunScenarioRequest {
	return RunScenarioRequest{
		Name:                  "Storage increase FY26",
		Type:                  string(forecast.ScenarioGlobalIncrease),
		AdjustmentKind:        string(forecast.AdjustmentPercentage),
		AdjustmentValue:       decimal.NewFromInt(10),
		CustomerRetentionRate: decimal.NewFromInt(100),
	}
}

func TestForecastServiceRunScenario(t *testing.T) {
	ctx := context.Background()
	rc := request.Context{ActingUser: uuid.New()}

	t.Run("resolves the baseline as of the request date", func(t *testing.T) {
		service, _ := serviceFixture(t, map[uuid.UUID]int64{uuid.New(): 40})

		// the fixture rate is effective from 2025-01-01; an earlier as-of
		// date must resolve no revenue
		early := request.Context{
			ActingUser: uuid.New(),
			AsOf:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		resp, err := service.RunScenario(ctx, early, globalIncreaseRequest())
		require.NoError(t, err)
		assert.True(t, resp.CurrentMonthlyRevenue.IsZero())
	})

	t.Run("runs and persists a completed scenario", func(t *testing.T) {
		customerID := uuid.New()
		service, repo := serviceFixture(t, map[uuid.UUID]int64{customerID: 40})

		resp, err := service.RunScenario(ctx, rc, globalIncreaseRequest())
		require.NoError(t, err)
		assert.Equal(t, string(forecast.ScenarioStateCompleted), resp.State)
		assert.True(t, resp.CurrentMonthlyRevenue.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.ProjectedMonthlyRevenue.Equal(decimal.NewFromInt(110)))
		assert.True(t, resp.RevenuePercentageChange.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.AnnualRevenueImpact.Equal(decimal.NewFromInt(120)))
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, customerID, resp.Lines[0].CustomerID)
		require.NotNil(t, resp.RanAt)

		stored, err := repo.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, forecast.ScenarioStateCompleted, stored.State)
		assert.Len(t, stored.Lines, 1)
	})

	t.Run("rejects an invalid scenario type without saving", func(t *testing.T) {
		service, repo := serviceFixture(t, map[uuid.UUID]int64{uuid.New(): 10})

		req := globalIncreaseRequest()
		req.Type = "SEASONAL"
		_, err := service.RunScenario(ctx, rc, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_SCENARIO_TYPE", domainErr.Code)
		assert.Empty(t, repo.scenarios)
	})

	t.Run("rejects a competitive scenario without a base rate", func(t *testing.T) {
		service, _ := serviceFixture(t, map[uuid.UUID]int64{uuid.New(): 10})

		req := globalIncreaseRequest()
		req.Type = string(forecast.ScenarioCompetitiveAnalysis)
		req.CompetitorRateFactor = decimal.NewFromFloat(1.05)
		_, err := service.RunScenario(ctx, rc, req)
		assert.Error(t, err)
	})
}

func TestForecastServiceQueries(t *testing.T) {
	ctx := context.Background()
	rc := request.Context{ActingUser: uuid.New()}

	t.Run("get returns lines", func(t *testing.T) {
		service, _ := serviceFixture(t, map[uuid.UUID]int64{uuid.New(): 20})

		created, err := service.RunScenario(ctx, rc, globalIncreaseRequest())
		require.NoError(t, err)

		got, err := service.GetScenario(ctx, rc, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Len(t, got.Lines, 1)
	})

	t.Run("get unknown scenario", func(t *testing.T) {
		service, _ := serviceFixture(t, nil)

		_, err := service.GetScenario(ctx, rc, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list omits lines and defaults the limit", func(t *testing.T) {
		service, _ := serviceFixture(t, map[uuid.UUID]int64{uuid.New(): 20})

		_, err := service.RunScenario(ctx, rc, globalIncreaseRequest())
		require.NoError(t, err)
		second := globalIncreaseRequest()
		second.Name = "Follow-up increase"
		_, err = service.RunScenario(ctx, rc, second)
		require.NoError(t, err)

		scenarios, err := service.ListScenarios(ctx, rc, 0)
		require.NoError(t, err)
		require.Len(t, scenarios, 2)
		for _, s := range scenarios {
			assert.Empty(t, s.Lines)
		}

		limited, err := service.ListScenarios(ctx, rc, 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
	})

	t.Run("delete removes the scenario", func(t *testing.T) {
		service, repo := serviceFixture(t, map[uuid.UUID]int64{uuid.New(): 20})

		created, err := service.RunScenario(ctx, rc, globalIncreaseRequest())
		require.NoError(t, err)

		require.NoError(t, service.DeleteScenario(ctx, rc, created.ID))
		assert.Empty(t, repo.scenarios)

		err = service.DeleteScenario(ctx, rc, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
