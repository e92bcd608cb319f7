package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/forecast"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
)

// ForecastScenarioModel is the persistence model for the
// RevenueForecastScenario aggregate root. Target customer IDs are stored as
// a comma-joined string; the scenario is scratch data, not a join target.
type ForecastScenarioModel struct {
	AggregateModel
	Name                    string                  `gorm:"type:varchar(200);not null"`
	Type                    forecast.ScenarioType   `gorm:"type:varchar(30);not null;index"`
	State                   forecast.ScenarioState  `gorm:"type:varchar(20);not null;default:'PENDING'"`
	AdjustmentKind          forecast.AdjustmentKind `gorm:"type:varchar(20);not null"`
	AdjustmentValue         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TargetCategory          rates.ServiceCategory   `gorm:"type:varchar(20)"`
	TargetCustomerIDs       string                  `gorm:"type:text"`
	CustomerRetentionRate   decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	MarketGrowthRate        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	CompetitorBaseRate      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	CompetitorRateFactor    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ForecastPeriod          forecast.ForecastPeriod `gorm:"type:varchar(20);not null;default:'MONTHLY'"`
	CurrentMonthlyRevenue   decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ProjectedMonthlyRevenue decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	RevenuePercentageChange decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	AnnualRevenueImpact     decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	RiskScore               int                     `gorm:"not null;default:0"`
	RiskLevel               forecast.RiskLevel      `gorm:"type:varchar(20)"`
	RanAt                   *time.Time
	Lines                   []ForecastLineModel `gorm:"foreignKey:ScenarioID;references:ID"`
}

// TableName returns the table name for GORM
func (ForecastScenarioModel) TableName() string {
	return "forecast_scenarios"
}

// ToDomain converts the persistence model to a domain RevenueForecastScenario
func (m *ForecastScenarioModel) ToDomain() *forecast.RevenueForecastScenario {
	lines := make([]forecast.RevenueForecastLine, len(m.Lines))
	for i := range m.Lines {
		lines[i] = *m.Lines[i].ToDomain()
	}
	return &forecast.RevenueForecastScenario{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
		Parameters: forecast.ScenarioParameters{
			AdjustmentKind:        m.AdjustmentKind,
			AdjustmentValue:       m.AdjustmentValue,
			TargetCategory:        m.TargetCategory,
			TargetCustomerIDs:     splitUUIDs(m.TargetCustomerIDs),
			CustomerRetentionRate: m.CustomerRetentionRate,
			MarketGrowthRate:      m.MarketGrowthRate,
			CompetitorBaseRate:    m.CompetitorBaseRate,
			CompetitorRateFactor:  m.CompetitorRateFactor,
			ForecastPeriod:        m.ForecastPeriod,
		},
		State:                   m.State,
		CurrentMonthlyRevenue:   m.CurrentMonthlyRevenue,
		ProjectedMonthlyRevenue: m.ProjectedMonthlyRevenue,
		RevenuePercentageChange: m.RevenuePercentageChange,
		AnnualRevenueImpact:     m.AnnualRevenueImpact,
		RiskScore:               m.RiskScore,
		RiskLevel:               m.RiskLevel,
		Lines:                   lines,
		RanAt:                   m.RanAt,
	}
}

// FromDomain populates the persistence model from a domain scenario. Lines
// are not copied; the repository persists them separately.
func (m *ForecastScenarioModel) FromDomain(s *forecast.RevenueForecastScenario) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Type = s.Type
	m.State = s.State
	m.AdjustmentKind = s.Parameters.AdjustmentKind
	m.AdjustmentValue = s.Parameters.AdjustmentValue
	m.TargetCategory = s.Parameters.TargetCategory
	m.TargetCustomerIDs = joinUUIDs(s.Parameters.TargetCustomerIDs)
	m.CustomerRetentionRate = s.Parameters.CustomerRetentionRate
	m.MarketGrowthRate = s.Parameters.MarketGrowthRate
	m.CompetitorBaseRate = s.Parameters.CompetitorBaseRate
	m.CompetitorRateFactor = s.Parameters.CompetitorRateFactor
	m.ForecastPeriod = s.Parameters.ForecastPeriod
	m.CurrentMonthlyRevenue = s.CurrentMonthlyRevenue
	m.ProjectedMonthlyRevenue = s.ProjectedMonthlyRevenue
	m.RevenuePercentageChange = s.RevenuePercentageChange
	m.AnnualRevenueImpact = s.AnnualRevenueImpact
	m.RiskScore = s.RiskScore
	m.RiskLevel = s.RiskLevel
	m.RanAt = s.RanAt
}

// ForecastScenarioModelFromDomain creates a new persistence model from a
// domain RevenueForecastScenario
func ForecastScenarioModelFromDomain(s *forecast.RevenueForecastScenario) *ForecastScenarioModel {
	m := &ForecastScenarioModel{}
	m.FromDomain(s)
	return m
}

// ForecastLineModel is one per-customer projection row
type ForecastLineModel struct {
	BaseModel
	ScenarioID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerName     string          `gorm:"type:varchar(200);not null"`
	CurrentRevenue   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProjectedRevenue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RevenueDelta     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ForecastLineModel) TableName() string {
	return "forecast_lines"
}

// ToDomain converts the persistence model to a domain RevenueForecastLine
func (m *ForecastLineModel) ToDomain() *forecast.RevenueForecastLine {
	return &forecast.RevenueForecastLine{
		BaseEntity:       m.BaseModel.ToDomain(),
		ScenarioID:       m.ScenarioID,
		CustomerID:       m.CustomerID,
		CustomerName:     m.CustomerName,
		CurrentRevenue:   m.CurrentRevenue,
		ProjectedRevenue: m.ProjectedRevenue,
		RevenueDelta:     m.RevenueDelta,
	}
}

// ForecastLineModelFromDomain creates a persistence model from a domain line
func ForecastLineModelFromDomain(l *forecast.RevenueForecastLine) *ForecastLineModel {
	m := &ForecastLineModel{
		ScenarioID:       l.ScenarioID,
		CustomerID:       l.CustomerID,
		CustomerName:     l.CustomerName,
		CurrentRevenue:   l.CurrentRevenue,
		ProjectedRevenue: l.ProjectedRevenue,
		RevenueDelta:     l.RevenueDelta,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

func joinUUIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func splitUUIDs(s string) []uuid.UUID {
	if s == "" {
		return nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(s, ",") {
		if id, err := uuid.Parse(part); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
