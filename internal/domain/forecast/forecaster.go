package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// customerBaseline is the approximated current revenue for one customer
type customerBaseline struct {
	CustomerID     uuid.UUID
	CustomerName   string
	ContainerCount decimal.Decimal
	MonthlyRevenue decimal.Decimal
}

// Forecaster runs rate-change scenarios against current billing data.
//
// The baseline approximates each customer's current monthly revenue as
// container count times the resolved storage rate. This is a deliberate
// simplification carried over from the source model, not a read of actual
// billed history.
type Forecaster struct {
	resolver  *rates.Resolver
	inventory billing.ContainerInventory
	profiles  billing.BillingProfileSource
}

// NewForecaster creates a Forecaster
func NewForecaster(resolver *rates.Resolver, inventory billing.ContainerInventory, profiles billing.BillingProfileSource) *Forecaster {
	return &Forecaster{
		resolver:  resolver,
		inventory: inventory,
		profiles:  profiles,
	}
}

// RunForecast computes the baseline as of the given date, applies the
// scenario's projection, and completes the scenario with per-customer lines
// and a risk assessment.
func (f *Forecaster) RunForecast(ctx context.Context, scenario *RevenueForecastScenario, asOf time.Time) error {
	baselines, err := f.computeBaselines(ctx, asOf)
	if err != nil {
		return err
	}

	lines := make([]RevenueForecastLine, 0, len(baselines))
	current := decimal.Zero
	projected := decimal.Zero
	for _, b := range baselines {
		projectedRevenue := f.project(scenario, b)
		line := RevenueForecastLine{
			ScenarioID:       scenario.ID,
			CustomerID:       b.CustomerID,
			CustomerName:     b.CustomerName,
			CurrentRevenue:   b.MonthlyRevenue,
			ProjectedRevenue: projectedRevenue,
			RevenueDelta:     projectedRevenue.Sub(b.MonthlyRevenue),
		}
		lines = append(lines, line)
		current = current.Add(b.MonthlyRevenue)
		projected = projected.Add(projectedRevenue)
	}

	pctChange := decimal.Zero
	if !current.IsZero() {
		pctChange = projected.Sub(current).Div(current).Mul(hundred)
	}
	score := RiskScore(pctChange, scenario.Parameters.CustomerRetentionRate, scenario.Parameters.CompetitorRateFactor)
	return scenario.Complete(lines, current, projected, score, RiskLevelForScore(score))
}

// computeBaselines resolves the container_count x rate approximation for
// every billable customer, in customer ID order for stable output
func (f *Forecaster) computeBaselines(ctx context.Context, asOf time.Time) ([]customerBaseline, error) {
	customerIDs, err := f.inventory.BillableCustomerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing billable customers: %w", err)
	}
	sort.Slice(customerIDs, func(i, j int) bool {
		return customerIDs[i].String() < customerIDs[j].String()
	})

	baselines := make([]customerBaseline, 0, len(customerIDs))
	for _, customerID := range customerIDs {
		groups, err := f.inventory.CountByCustomer(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("counting containers for customer %s: %w", customerID, err)
		}

		b := customerBaseline{CustomerID: customerID}
		if profile, err := f.profiles.ProfileFor(ctx, customerID); err == nil {
			b.CustomerName = profile.CustomerName
		}
		for _, g := range groups {
			if g.Count <= 0 {
				continue
			}
			scope := rates.RateScope{Category: rates.CategoryStorage, Type: g.Classification.ServiceType()}
			resolved, err := f.resolver.GetCustomerRate(ctx, customerID, scope, asOf)
			if err != nil {
				return nil, fmt.Errorf("resolving rate %s for customer %s: %w", scope, customerID, err)
			}
			if resolved.Source == rates.SourceNone {
				continue
			}
			count := decimal.NewFromInt(g.Count)
			b.ContainerCount = b.ContainerCount.Add(count)
			b.MonthlyRevenue = b.MonthlyRevenue.Add(count.Mul(resolved.Rate))
		}
		baselines = append(baselines, b)
	}
	return baselines, nil
}

// project applies the scenario's algorithm to one customer baseline
func (f *Forecaster) project(scenario *RevenueForecastScenario, b customerBaseline) decimal.Decimal {
	p := scenario.Parameters
	switch scenario.Type {
	case ScenarioGlobalIncrease, ScenarioWhatIf:
		// WHAT_IF intentionally shares the global-increase projection.
		increased := applyAdjustment(b.MonthlyRevenue, p.AdjustmentKind, p.AdjustmentValue, true)
		return increased.Mul(p.CustomerRetentionRate).Div(hundred)

	case ScenarioGlobalDecrease:
		decreased := applyAdjustment(b.MonthlyRevenue, p.AdjustmentKind, p.AdjustmentValue, false)
		return decreased.Mul(hundred.Add(p.MarketGrowthRate)).Div(hundred)

	case ScenarioCategorySpecific:
		// The reference model attributes a fixed 70% of revenue to storage
		// and 30% to everything else; only the targeted share moves.
		share := decimal.NewFromFloat(0.30)
		if p.TargetCategory == rates.CategoryStorage {
			share = decimal.NewFromFloat(0.70)
		}
		affected := b.MonthlyRevenue.Mul(share)
		unaffected := b.MonthlyRevenue.Sub(affected)
		return applyAdjustment(affected, p.AdjustmentKind, p.AdjustmentValue, true).Add(unaffected)

	case ScenarioCustomerSpecific:
		for _, id := range p.TargetCustomerIDs {
			if id == b.CustomerID {
				return applyAdjustment(b.MonthlyRevenue, p.AdjustmentKind, p.AdjustmentValue, true)
			}
		}
		return b.MonthlyRevenue

	case ScenarioCompetitiveAnalysis:
		targetRate := p.CompetitorBaseRate.Mul(p.CompetitorRateFactor)
		projected := b.ContainerCount.Mul(targetRate)
		// Pricing more than 10% above the competitor costs retention;
		// more than 10% below wins customers.
		if p.CompetitorRateFactor.GreaterThan(decimal.NewFromFloat(1.10)) {
			projected = projected.Mul(decimal.NewFromFloat(0.95))
		} else if p.CompetitorRateFactor.LessThan(decimal.NewFromFloat(0.90)) {
			projected = projected.Mul(decimal.NewFromFloat(1.05))
		}
		return projected
	}
	return b.MonthlyRevenue
}

// applyAdjustment moves a revenue figure by a percentage or fixed delta in
// the given direction
func applyAdjustment(revenue decimal.Decimal, kind AdjustmentKind, value decimal.Decimal, increase bool) decimal.Decimal {
	var delta decimal.Decimal
	if kind == AdjustmentPercentage {
		delta = revenue.Mul(value).Div(hundred)
	} else {
		delta = value
	}
	if increase {
		return revenue.Add(delta)
	}
	result := revenue.Sub(delta)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// RiskScore combines revenue-change magnitude, retention, and competitive
// positioning into a single weighted score
func RiskScore(pctChange, retentionRate, competitorFactor decimal.Decimal) int {
	score := 0

	abs := pctChange.Abs()
	switch {
	case abs.GreaterThan(decimal.NewFromInt(20)):
		score += 3
	case abs.GreaterThan(decimal.NewFromInt(10)):
		score += 2
	case abs.GreaterThan(decimal.NewFromInt(5)):
		score += 1
	}

	if retentionRate.IsPositive() {
		switch {
		case retentionRate.LessThan(decimal.NewFromInt(90)):
			score += 3
		case retentionRate.LessThan(decimal.NewFromInt(95)):
			score += 2
		case retentionRate.LessThan(decimal.NewFromInt(98)):
			score += 1
		}
	}

	if competitorFactor.IsPositive() {
		switch {
		case competitorFactor.GreaterThan(decimal.NewFromFloat(1.2)):
			score += 3
		case competitorFactor.GreaterThan(decimal.NewFromFloat(1.1)):
			score += 2
		case competitorFactor.GreaterThan(decimal.NewFromFloat(1.05)):
			score += 1
		}
	}
	return score
}

// RiskLevelForScore maps a risk score to its qualitative level
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 7:
		return RiskVeryHigh
	case score >= 5:
		return RiskHigh
	case score >= 3:
		return RiskMedium
	default:
		return RiskLow
	}
}
