package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/application/request"
	"github.com/recordvault/backend/internal/domain/forecast"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ForecastService runs revenue forecast scenarios and manages their results
type ForecastService struct {
	scenarioRepo forecast.ScenarioRepository
	forecaster   *forecast.Forecaster
	audit        shared.AuditLog
	logger       *zap.Logger
}

// NewForecastService creates a new ForecastService
func NewForecastService(
	scenarioRepo forecast.ScenarioRepository,
	forecaster *forecast.Forecaster,
	audit shared.AuditLog,
	logger *zap.Logger,
) *ForecastService {
	return &ForecastService{
		scenarioRepo: scenarioRepo,
		forecaster:   forecaster,
		audit:        audit,
		logger:       logger,
	}
}

// ===================== Requests and responses =====================

// RunScenarioRequest is the input for creating and running a scenario
type RunScenarioRequest struct {
	Name                  string          `json:"name" binding:"required"`
	Type                  string          `json:"type" binding:"required"`
	AdjustmentKind        string          `json:"adjustment_kind" binding:"required"`
	AdjustmentValue       decimal.Decimal `json:"adjustment_value"`
	TargetCategory        string          `json:"target_category,omitempty"`
	TargetCustomerIDs     []uuid.UUID     `json:"target_customer_ids,omitempty"`
	CustomerRetentionRate decimal.Decimal `json:"customer_retention_rate"`
	MarketGrowthRate      decimal.Decimal `json:"market_growth_rate"`
	CompetitorBaseRate    decimal.Decimal `json:"competitor_base_rate"`
	CompetitorRateFactor  decimal.Decimal `json:"competitor_rate_factor"`
	ForecastPeriod        string          `json:"forecast_period,omitempty"`
}

// ForecastLineResponse is one per-customer projection row
type ForecastLineResponse struct {
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	CurrentRevenue   decimal.Decimal `json:"current_revenue"`
	ProjectedRevenue decimal.Decimal `json:"projected_revenue"`
	RevenueDelta     decimal.Decimal `json:"revenue_delta"`
}

// ScenarioResponse represents a forecast scenario in API responses
type ScenarioResponse struct {
	ID                      uuid.UUID              `json:"id"`
	Name                    string                 `json:"name"`
	Type                    string                 `json:"type"`
	State                   string                 `json:"state"`
	CurrentMonthlyRevenue   decimal.Decimal        `json:"current_monthly_revenue"`
	ProjectedMonthlyRevenue decimal.Decimal        `json:"projected_monthly_revenue"`
	RevenuePercentageChange decimal.Decimal        `json:"revenue_percentage_change"`
	AnnualRevenueImpact     decimal.Decimal        `json:"annual_revenue_impact"`
	RiskScore               int                    `json:"risk_score"`
	RiskLevel               string                 `json:"risk_level"`
	Lines                   []ForecastLineResponse `json:"lines,omitempty"`
	CreatedAt               time.Time              `json:"created_at"`
	RanAt                   *time.Time             `json:"ran_at,omitempty"`
}

func toScenarioResponse(s *forecast.RevenueForecastScenario, includeLines bool) *ScenarioResponse {
	resp := &ScenarioResponse{
		ID:                      s.ID,
		Name:                    s.Name,
		Type:                    string(s.Type),
		State:                   string(s.State),
		CurrentMonthlyRevenue:   s.CurrentMonthlyRevenue,
		ProjectedMonthlyRevenue: s.ProjectedMonthlyRevenue,
		RevenuePercentageChange: s.RevenuePercentageChange,
		AnnualRevenueImpact:     s.AnnualRevenueImpact,
		RiskScore:               s.RiskScore,
		RiskLevel:               string(s.RiskLevel),
		CreatedAt:               s.CreatedAt,
		RanAt:                   s.RanAt,
	}
	if includeLines {
		resp.Lines = make([]ForecastLineResponse, 0, len(s.Lines))
		for _, line := range s.Lines {
			resp.Lines = append(resp.Lines, ForecastLineResponse{
				CustomerID:       line.CustomerID,
				CustomerName:     line.CustomerName,
				CurrentRevenue:   line.CurrentRevenue,
				ProjectedRevenue: line.ProjectedRevenue,
				RevenueDelta:     line.RevenueDelta,
			})
		}
	}
	return resp
}

// ===================== Operations =====================

// RunScenario creates a scenario from the request, runs the projection, and
// persists the completed result in one call
func (s *ForecastService) RunScenario(ctx context.Context, rc request.Context, req RunScenarioRequest) (*ScenarioResponse, error) {
	var targetCategory rates.ServiceCategory
	if req.TargetCategory != "" {
		targetCategory = rates.ServiceCategory(req.TargetCategory)
	}

	scenario, err := forecast.NewScenario(req.Name, forecast.ScenarioType(req.Type), forecast.ScenarioParameters{
		AdjustmentKind:        forecast.AdjustmentKind(req.AdjustmentKind),
		AdjustmentValue:       req.AdjustmentValue,
		TargetCategory:        targetCategory,
		TargetCustomerIDs:     req.TargetCustomerIDs,
		CustomerRetentionRate: req.CustomerRetentionRate,
		MarketGrowthRate:      req.MarketGrowthRate,
		CompetitorBaseRate:    req.CompetitorBaseRate,
		CompetitorRateFactor:  req.CompetitorRateFactor,
		ForecastPeriod:        forecast.ForecastPeriod(req.ForecastPeriod),
	})
	if err != nil {
		return nil, err
	}

	if err := s.forecaster.RunForecast(ctx, scenario, rc.AsOfOrNow()); err != nil {
		s.logger.Error("forecast run failed",
			zap.String("scenario_id", scenario.ID.String()),
			zap.String("type", string(scenario.Type)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.scenarioRepo.Save(ctx, scenario); err != nil {
		return nil, err
	}

	s.logger.Info("forecast scenario completed",
		zap.String("scenario_id", scenario.ID.String()),
		zap.String("type", string(scenario.Type)),
		zap.String("annual_impact", scenario.AnnualRevenueImpact.String()),
		zap.Int("risk_score", scenario.RiskScore),
	)
	s.recordEvents(scenario.GetDomainEvents())
	scenario.ClearDomainEvents()
	return toScenarioResponse(scenario, true), nil
}

// GetScenario loads a scenario with its per-customer lines
func (s *ForecastService) GetScenario(ctx context.Context, rc request.Context, id uuid.UUID) (*ScenarioResponse, error) {
	scenario, err := s.scenarioRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toScenarioResponse(scenario, true), nil
}

// ListScenarios lists the most recent scenarios, without lines
func (s *ForecastService) ListScenarios(ctx context.Context, rc request.Context, limit int) ([]ScenarioResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	scenarios, err := s.scenarioRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ScenarioResponse, 0, len(scenarios))
	for i := range scenarios {
		out = append(out, *toScenarioResponse(&scenarios[i], false))
	}
	return out, nil
}

// DeleteScenario discards a scenario and its lines
func (s *ForecastService) DeleteScenario(ctx context.Context, rc request.Context, id uuid.UUID) error {
	return s.scenarioRepo.Delete(ctx, id)
}

func (s *ForecastService) recordEvents(events []shared.DomainEvent) {
	if s.audit != nil && len(events) > 0 {
		s.audit.Record(events)
	}
}
