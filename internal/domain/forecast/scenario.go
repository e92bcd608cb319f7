package forecast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ScenarioType selects the projection algorithm
type ScenarioType string

const (
	ScenarioGlobalIncrease      ScenarioType = "GLOBAL_INCREASE"
	ScenarioGlobalDecrease      ScenarioType = "GLOBAL_DECREASE"
	ScenarioCategorySpecific    ScenarioType = "CATEGORY_SPECIFIC"
	ScenarioCustomerSpecific    ScenarioType = "CUSTOMER_SPECIFIC"
	ScenarioCompetitiveAnalysis ScenarioType = "COMPETITIVE_ANALYSIS"
	// ScenarioWhatIf shares the GLOBAL_INCREASE projection. The source
	// system never gave it a distinct algorithm, so the fallback is kept
	// rather than inventing one.
	ScenarioWhatIf ScenarioType = "WHAT_IF"
)

// IsValid checks if the type is a valid ScenarioType
func (t ScenarioType) IsValid() bool {
	switch t {
	case ScenarioGlobalIncrease, ScenarioGlobalDecrease, ScenarioCategorySpecific,
		ScenarioCustomerSpecific, ScenarioCompetitiveAnalysis, ScenarioWhatIf:
		return true
	}
	return false
}

// AdjustmentKind distinguishes percentage from fixed dollar adjustments
type AdjustmentKind string

const (
	AdjustmentPercentage AdjustmentKind = "PERCENTAGE"
	AdjustmentFixed      AdjustmentKind = "FIXED"
)

// IsValid checks if the kind is a valid AdjustmentKind
func (k AdjustmentKind) IsValid() bool {
	return k == AdjustmentPercentage || k == AdjustmentFixed
}

// ForecastPeriod is the horizon results are annualized over
type ForecastPeriod string

const (
	PeriodMonthly   ForecastPeriod = "MONTHLY"
	PeriodQuarterly ForecastPeriod = "QUARTERLY"
	PeriodAnnually  ForecastPeriod = "ANNUALLY"
)

// PeriodsPerYear returns how many forecast periods make up a year
func (p ForecastPeriod) PeriodsPerYear() int64 {
	switch p {
	case PeriodQuarterly:
		return 4
	case PeriodAnnually:
		return 1
	default:
		return 12
	}
}

// RiskLevel is the qualitative outcome of the risk assessment
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// ScenarioState tracks whether a scenario has been run
type ScenarioState string

const (
	ScenarioStatePending   ScenarioState = "PENDING"
	ScenarioStateCompleted ScenarioState = "COMPLETED"
)

// ScenarioParameters carry the knobs for all scenario types. Only the
// fields relevant to the scenario's type are consulted.
type ScenarioParameters struct {
	AdjustmentKind        AdjustmentKind        `json:"adjustment_kind"`
	AdjustmentValue       decimal.Decimal       `json:"adjustment_value"`
	TargetCategory        rates.ServiceCategory `json:"target_category,omitempty"`
	TargetCustomerIDs     []uuid.UUID           `json:"target_customer_ids,omitempty"`
	CustomerRetentionRate decimal.Decimal       `json:"customer_retention_rate"`
	MarketGrowthRate      decimal.Decimal       `json:"market_growth_rate"`
	CompetitorBaseRate    decimal.Decimal       `json:"competitor_base_rate"`
	CompetitorRateFactor  decimal.Decimal       `json:"competitor_rate_factor"`
	ForecastPeriod        ForecastPeriod        `json:"forecast_period"`
}

// RevenueForecastLine is the per-customer result of a scenario run. Lines
// are exclusively owned by their scenario.
type RevenueForecastLine struct {
	shared.BaseEntity
	ScenarioID       uuid.UUID       `json:"scenario_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	CurrentRevenue   decimal.Decimal `json:"current_revenue"`
	ProjectedRevenue decimal.Decimal `json:"projected_revenue"`
	RevenueDelta     decimal.Decimal `json:"revenue_delta"`
}

// RevenueForecastScenario models one hypothetical rate change. Scenarios are
// scratch results: they may be discarded once reviewed.
type RevenueForecastScenario struct {
	shared.BaseAggregateRoot
	Name                    string                `json:"name"`
	Type                    ScenarioType          `json:"type"`
	Parameters              ScenarioParameters    `json:"parameters"`
	State                   ScenarioState         `json:"state"`
	CurrentMonthlyRevenue   decimal.Decimal       `json:"current_monthly_revenue"`
	ProjectedMonthlyRevenue decimal.Decimal       `json:"projected_monthly_revenue"`
	RevenuePercentageChange decimal.Decimal       `json:"revenue_percentage_change"`
	AnnualRevenueImpact     decimal.Decimal       `json:"annual_revenue_impact"`
	RiskScore               int                   `json:"risk_score"`
	RiskLevel               RiskLevel             `json:"risk_level"`
	Lines                   []RevenueForecastLine `json:"lines"`
	RanAt                   *time.Time            `json:"ran_at,omitempty"`
}

// NewScenario creates an unconfigured (pending) forecast scenario
func NewScenario(name string, scenarioType ScenarioType, params ScenarioParameters) (*RevenueForecastScenario, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Scenario name cannot be empty")
	}
	if !scenarioType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCENARIO_TYPE", fmt.Sprintf("Unknown scenario type %q", scenarioType))
	}
	if !params.AdjustmentKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_KIND", fmt.Sprintf("Unknown adjustment kind %q", params.AdjustmentKind))
	}
	if params.AdjustmentKind == AdjustmentPercentage &&
		(params.AdjustmentValue.IsNegative() || params.AdjustmentValue.GreaterThan(decimal.NewFromInt(100))) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Percentage adjustment must be between 0 and 100")
	}
	if params.AdjustmentKind == AdjustmentFixed && params.AdjustmentValue.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Fixed adjustment cannot be negative")
	}
	if scenarioType == ScenarioCategorySpecific && !params.TargetCategory.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category-specific scenarios require a target category")
	}
	if scenarioType == ScenarioCustomerSpecific && len(params.TargetCustomerIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_CUSTOMERS", "Customer-specific scenarios require target customers")
	}
	if scenarioType == ScenarioCompetitiveAnalysis {
		if !params.CompetitorBaseRate.IsPositive() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Competitive analysis requires a positive competitor base rate")
		}
		if !params.CompetitorRateFactor.IsPositive() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Competitive analysis requires a positive competitor rate factor")
		}
	}
	if params.CustomerRetentionRate.IsZero() {
		params.CustomerRetentionRate = decimal.NewFromInt(100)
	}
	if params.ForecastPeriod == "" {
		params.ForecastPeriod = PeriodMonthly
	}

	return &RevenueForecastScenario{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              scenarioType,
		Parameters:        params,
		State:             ScenarioStatePending,
		Lines:             []RevenueForecastLine{},
	}, nil
}

// Complete installs the computed results. Called by the Forecaster only.
func (s *RevenueForecastScenario) Complete(lines []RevenueForecastLine, current, projected decimal.Decimal, riskScore int, riskLevel RiskLevel) error {
	if s.State == ScenarioStateCompleted {
		return shared.NewDomainError("INVALID_STATE", "Scenario has already been run")
	}
	now := time.Now()
	s.Lines = lines
	s.CurrentMonthlyRevenue = current
	s.ProjectedMonthlyRevenue = projected
	if current.IsZero() {
		s.RevenuePercentageChange = decimal.Zero
	} else {
		s.RevenuePercentageChange = projected.Sub(current).Div(current).Mul(decimal.NewFromInt(100)).Round(2)
	}
	s.AnnualRevenueImpact = projected.Sub(current).Mul(decimal.NewFromInt(s.Parameters.ForecastPeriod.PeriodsPerYear()))
	s.RiskScore = riskScore
	s.RiskLevel = riskLevel
	s.State = ScenarioStateCompleted
	s.RanAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewForecastCompletedEvent(s))
	return nil
}

// MonthlyDifference returns projected minus current monthly revenue
func (s *RevenueForecastScenario) MonthlyDifference() decimal.Decimal {
	return s.ProjectedMonthlyRevenue.Sub(s.CurrentMonthlyRevenue)
}
