package forecast

import (
	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ForecastCompletedEvent is raised when a scenario run finishes
type ForecastCompletedEvent struct {
	shared.BaseDomainEvent
	ScenarioID              uuid.UUID       `json:"scenario_id"`
	ScenarioType            ScenarioType    `json:"scenario_type"`
	CurrentMonthlyRevenue   decimal.Decimal `json:"current_monthly_revenue"`
	ProjectedMonthlyRevenue decimal.Decimal `json:"projected_monthly_revenue"`
	RiskLevel               RiskLevel       `json:"risk_level"`
}

// EventType returns the event type name
func (e *ForecastCompletedEvent) EventType() string {
	return "ForecastCompleted"
}

// NewForecastCompletedEvent creates a new ForecastCompletedEvent
func NewForecastCompletedEvent(s *RevenueForecastScenario) *ForecastCompletedEvent {
	return &ForecastCompletedEvent{
		BaseDomainEvent:         shared.NewBaseDomainEvent("ForecastCompleted", "RevenueForecastScenario", s.ID),
		ScenarioID:              s.ID,
		ScenarioType:            s.Type,
		CurrentMonthlyRevenue:   s.CurrentMonthlyRevenue,
		ProjectedMonthlyRevenue: s.ProjectedMonthlyRevenue,
		RiskLevel:               s.RiskLevel,
	}
}
