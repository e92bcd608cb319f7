package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/recordvault/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// QuantityBreakResult is the outcome of applying quantity-break terms
type QuantityBreakResult struct {
	EffectiveRate  decimal.Decimal
	DiscountAmount decimal.Decimal
	LineTotal      decimal.Decimal
}

// ApplyQuantityBreak prices a ticket that carries quantity-break terms. The
// break rate replaces the base rate once quantity reaches the break target;
// the percentage discount is always computed against the base rate. The line
// total floors at zero.
func ApplyQuantityBreak(terms QuantityBreakTerms, quantity decimal.Decimal) QuantityBreakResult {
	rate := terms.BaseRate
	if !terms.BreakTarget.IsZero() && quantity.GreaterThanOrEqual(terms.BreakTarget) {
		rate = terms.BreakRate
	}
	discount := terms.BaseRate.Mul(quantity).Mul(terms.DiscountRate).Div(decimal.NewFromInt(100))
	total := rate.Mul(quantity).Sub(discount).Add(terms.AdditionalAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return QuantityBreakResult{
		EffectiveRate:  rate,
		DiscountAmount: discount,
		LineTotal:      total,
	}
}

// Engine regenerates the billing lines of a period from the rate catalog and
// the external collaborators. It holds no state of its own; for any given
// inventory, ticket, and rate data it produces the same ordered line set on
// every run.
type Engine struct {
	resolver  *rates.Resolver
	inventory ContainerInventory
	tickets   ServiceTicketSource
	profiles  BillingProfileSource
}

// NewEngine creates a billing Engine
func NewEngine(
	resolver *rates.Resolver,
	inventory ContainerInventory,
	tickets ServiceTicketSource,
	profiles BillingProfileSource,
) *Engine {
	return &Engine{
		resolver:  resolver,
		inventory: inventory,
		tickets:   tickets,
		profiles:  profiles,
	}
}

// BuildLines computes the full billing line set for a period. Storage is
// priced per container classification (per department when the customer has
// departments), minimum-fee shortfalls become adjustment lines, completed
// service tickets become service lines, and configured recurring product
// charges become product lines.
func (e *Engine) BuildLines(ctx context.Context, period *BillingPeriod, defaultMinimum decimal.Decimal) ([]BillingLine, error) {
	storageCustomers, err := e.inventory.BillableCustomerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing billable customers: %w", err)
	}

	tickets, err := e.tickets.CompletedInRange(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("listing completed tickets: %w", err)
	}
	ticketsByCustomer := make(map[uuid.UUID][]CompletedServiceTicket)
	for _, t := range tickets {
		if !t.ActualCost.IsPositive() {
			continue
		}
		ticketsByCustomer[t.CustomerID] = append(ticketsByCustomer[t.CustomerID], t)
	}

	customerSet := make(map[uuid.UUID]struct{}, len(storageCustomers))
	for _, id := range storageCustomers {
		customerSet[id] = struct{}{}
	}
	for id := range ticketsByCustomer {
		customerSet[id] = struct{}{}
	}
	customers := make([]uuid.UUID, 0, len(customerSet))
	for id := range customerSet {
		customers = append(customers, id)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].String() < customers[j].String()
	})

	var lines []BillingLine
	for _, customerID := range customers {
		profile, err := e.profiles.ProfileFor(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("loading billing profile for customer %s: %w", customerID, err)
		}

		customerLines, err := e.buildCustomerLines(ctx, period, profile, ticketsByCustomer[customerID], defaultMinimum)
		if err != nil {
			return nil, err
		}
		lines = append(lines, customerLines...)
	}
	return lines, nil
}

func (e *Engine) buildCustomerLines(
	ctx context.Context,
	period *BillingPeriod,
	profile *CustomerBillingProfile,
	tickets []CompletedServiceTicket,
	defaultMinimum decimal.Decimal,
) ([]BillingLine, error) {
	var lines []BillingLine

	storageLines, deptTotals, err := e.buildStorageLines(ctx, period, profile)
	if err != nil {
		return nil, err
	}
	lines = append(lines, storageLines...)

	adjustments, err := e.buildMinimumFeeAdjustments(period, profile, deptTotals, defaultMinimum)
	if err != nil {
		return nil, err
	}
	lines = append(lines, adjustments...)

	serviceLines, err := e.buildServiceLines(period, profile, tickets)
	if err != nil {
		return nil, err
	}
	lines = append(lines, serviceLines...)

	productLines, err := e.buildProductLines(period, profile)
	if err != nil {
		return nil, err
	}
	lines = append(lines, productLines...)

	sortLines(lines, profile)
	return lines, nil
}

// departmentTotal tracks the storage amount accumulated for one department
// (or the customer itself when DepartmentID is nil)
type departmentTotal struct {
	DepartmentID *uuid.UUID
	Amount       decimal.Decimal
}

func (e *Engine) buildStorageLines(
	ctx context.Context,
	period *BillingPeriod,
	profile *CustomerBillingProfile,
) ([]BillingLine, []departmentTotal, error) {
	groups, err := e.inventory.CountByCustomer(ctx, profile.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("counting containers for customer %s: %w", profile.CustomerID, err)
	}

	sort.Slice(groups, func(i, j int) bool {
		di := e.departmentSortKey(profile, groups[i].DepartmentID)
		dj := e.departmentSortKey(profile, groups[j].DepartmentID)
		if di != dj {
			return di < dj
		}
		return groups[i].Classification < groups[j].Classification
	})

	var lines []BillingLine
	totalsByKey := make(map[string]int)
	var totals []departmentTotal

	for _, g := range groups {
		if g.Count <= 0 {
			continue
		}
		scope := rates.RateScope{Category: rates.CategoryStorage, Type: g.Classification.ServiceType()}
		resolved, err := e.resolver.GetCustomerRate(ctx, profile.CustomerID, scope, period.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving storage rate %s for customer %s: %w", scope, profile.CustomerID, err)
		}
		if resolved.Source == rates.SourceNone {
			// No priced scope: nothing to bill for this classification.
			continue
		}

		line, err := NewBillingLine(
			period.ID, profile.CustomerID, g.DepartmentID,
			LineTypeStorage,
			storageDescription(g),
			decimal.NewFromInt(g.Count),
			resolved.Rate,
		)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, *line)

		key := departmentKey(g.DepartmentID)
		idx, ok := totalsByKey[key]
		if !ok {
			totals = append(totals, departmentTotal{DepartmentID: g.DepartmentID, Amount: decimal.Zero})
			idx = len(totals) - 1
			totalsByKey[key] = idx
		}
		totals[idx].Amount = totals[idx].Amount.Add(line.Amount)
	}
	return lines, totals, nil
}

// buildMinimumFeeAdjustments emits adjustment lines for storage totals that
// are positive but fall short of the customer's monthly minimum
func (e *Engine) buildMinimumFeeAdjustments(
	period *BillingPeriod,
	profile *CustomerBillingProfile,
	deptTotals []departmentTotal,
	defaultMinimum decimal.Decimal,
) ([]BillingLine, error) {
	minimum := profile.MinimumMonthlyFee
	if !minimum.IsPositive() {
		minimum = defaultMinimum
	}
	if !minimum.IsPositive() || len(deptTotals) == 0 {
		return nil, nil
	}

	if profile.MinimumFeePolicy == MinimumFeePerDepartment && profile.HasDepartments() {
		var lines []BillingLine
		for _, dt := range deptTotals {
			if !dt.Amount.IsPositive() || dt.Amount.GreaterThanOrEqual(minimum) {
				continue
			}
			shortfall := minimum.Sub(dt.Amount)
			line, err := NewAdjustmentLine(
				period.ID, profile.CustomerID, dt.DepartmentID,
				fmt.Sprintf("Minimum monthly storage fee adjustment (minimum %s)", minimum.StringFixed(2)),
				shortfall,
			)
			if err != nil {
				return nil, err
			}
			lines = append(lines, *line)
		}
		return lines, nil
	}

	// Proportional (default): one customer-level shortfall distributed by
	// each department's share of the customer's total storage amount.
	customerTotal := decimal.Zero
	for _, dt := range deptTotals {
		customerTotal = customerTotal.Add(dt.Amount)
	}
	if !customerTotal.IsPositive() || customerTotal.GreaterThanOrEqual(minimum) {
		return nil, nil
	}
	shortfall := minimum.Sub(customerTotal)

	contributing := make([]departmentTotal, 0, len(deptTotals))
	for _, dt := range deptTotals {
		if dt.Amount.IsPositive() {
			contributing = append(contributing, dt)
		}
	}
	if len(contributing) <= 1 {
		var deptID *uuid.UUID
		if len(contributing) == 1 {
			deptID = contributing[0].DepartmentID
		}
		line, err := NewAdjustmentLine(
			period.ID, profile.CustomerID, deptID,
			fmt.Sprintf("Minimum monthly storage fee adjustment (minimum %s)", minimum.StringFixed(2)),
			shortfall,
		)
		if err != nil {
			return nil, err
		}
		return []BillingLine{*line}, nil
	}

	weights := make([]decimal.Decimal, len(contributing))
	for i, dt := range contributing {
		weights[i] = dt.Amount
	}
	shares, err := valueobject.NewMoneyUSD(shortfall).AllocateByWeight(weights)
	if err != nil {
		return nil, err
	}

	var lines []BillingLine
	for i, dt := range contributing {
		line, err := NewAdjustmentLine(
			period.ID, profile.CustomerID, dt.DepartmentID,
			fmt.Sprintf("Minimum monthly storage fee adjustment, proportional share (minimum %s)", minimum.StringFixed(2)),
			shares[i].Amount(),
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

func (e *Engine) buildServiceLines(
	period *BillingPeriod,
	profile *CustomerBillingProfile,
	tickets []CompletedServiceTicket,
) ([]BillingLine, error) {
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CompletionDate.Equal(tickets[j].CompletionDate) {
			return tickets[i].CompletionDate.Before(tickets[j].CompletionDate)
		}
		return tickets[i].ID.String() < tickets[j].ID.String()
	})

	var lines []BillingLine
	for _, t := range tickets {
		if !period.Contains(t.CompletionDate) {
			continue
		}

		amount := t.ActualCost
		description := serviceDescription(t)
		if t.Terms != nil {
			result := ApplyQuantityBreak(*t.Terms, t.Quantity)
			amount = result.LineTotal
			description = fmt.Sprintf("%s (quantity break applied at rate %s)", description, result.EffectiveRate.StringFixed(2))
		}

		line, err := NewBillingLine(
			period.ID, t.CustomerID, t.DepartmentID,
			LineTypeService,
			description,
			decimal.NewFromInt(1),
			amount,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

func (e *Engine) buildProductLines(period *BillingPeriod, profile *CustomerBillingProfile) ([]BillingLine, error) {
	charges := make([]ProductCharge, len(profile.ProductCharges))
	copy(charges, profile.ProductCharges)
	sort.Slice(charges, func(i, j int) bool {
		return charges[i].Description < charges[j].Description
	})

	var lines []BillingLine
	for _, c := range charges {
		if !c.Quantity.IsPositive() || c.UnitPrice.IsNegative() {
			continue
		}
		line, err := NewBillingLine(
			period.ID, profile.CustomerID, nil,
			LineTypeProduct,
			c.Description,
			c.Quantity,
			c.UnitPrice,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// departmentSortKey orders departments by name, with company-level (nil)
// entries sorting last
func (e *Engine) departmentSortKey(profile *CustomerBillingProfile, deptID *uuid.UUID) string {
	return departmentSortKey(profile, deptID)
}

func departmentSortKey(profile *CustomerBillingProfile, deptID *uuid.UUID) string {
	if deptID == nil {
		return "￿" // company-level charges trail all departments
	}
	if dept := profile.DepartmentByID(*deptID); dept != nil {
		return strings.ToLower(dept.Name) + "/" + deptID.String()
	}
	return deptID.String()
}

func departmentKey(deptID *uuid.UUID) string {
	if deptID == nil {
		return ""
	}
	return deptID.String()
}

// sortLines fixes the final intra-customer ordering so recalculation over
// unchanged inputs reproduces the identical line sequence
func sortLines(lines []BillingLine, profile *CustomerBillingProfile) {
	sort.SliceStable(lines, func(i, j int) bool {
		di := departmentSortKey(profile, lines[i].DepartmentID)
		dj := departmentSortKey(profile, lines[j].DepartmentID)
		if di != dj {
			return di < dj
		}
		if lines[i].Type != lines[j].Type {
			return lines[i].Type.sortRank() < lines[j].Type.sortRank()
		}
		return lines[i].Description < lines[j].Description
	})
}

func storageDescription(g ContainerGroup) string {
	return fmt.Sprintf("%s container storage", strings.ToLower(string(g.Classification)))
}

func serviceDescription(t CompletedServiceTicket) string {
	if t.Description != "" {
		return t.Description
	}
	return fmt.Sprintf("%s service (%s)", t.Category, t.Type)
}
