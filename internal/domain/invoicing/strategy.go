package invoicing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GroupingStrategy partitions a customer's billing lines into invoice
// drafts. Strategies are pure: the same line set and profile always produce
// the same drafts in the same order, so regenerating invoices before a
// period is marked invoiced is safe.
type GroupingStrategy interface {
	// Name returns the unique name of the strategy
	Name() string
	// Description returns a human-readable description
	Description() string
	// Group partitions the customer's lines into invoice drafts
	Group(periodID uuid.UUID, lines []billing.BillingLine, profile *billing.CustomerBillingProfile) ([]InvoiceDraft, error)
}

// StrategyFor returns the grouping strategy for a billing preference
func StrategyFor(preference billing.BillingPreference) (GroupingStrategy, error) {
	switch preference {
	case billing.PreferenceConsolidated:
		return &ConsolidatedStrategy{}, nil
	case billing.PreferenceSeparate:
		return &SeparateStrategy{}, nil
	case billing.PreferenceHybrid:
		return &HybridStrategy{}, nil
	}
	return nil, shared.NewDomainError("INVALID_PREFERENCE", fmt.Sprintf("Unknown billing preference %q", preference))
}

// departmentGroup is an intermediate bucket of lines sharing a department
type departmentGroup struct {
	departmentID *uuid.UUID
	name         string // empty for company-level lines
	contact      string
	poNumber     string
	lines        []billing.BillingLine
}

// groupByDepartment buckets lines per department and orders the buckets by
// department name, with company-level lines trailing
func groupByDepartment(lines []billing.BillingLine, profile *billing.CustomerBillingProfile) []departmentGroup {
	byKey := make(map[string]*departmentGroup)
	for _, line := range lines {
		key := ""
		if line.DepartmentID != nil {
			key = line.DepartmentID.String()
		}
		g, ok := byKey[key]
		if !ok {
			g = &departmentGroup{departmentID: line.DepartmentID}
			if line.DepartmentID != nil {
				if dept := profile.DepartmentByID(*line.DepartmentID); dept != nil {
					g.name = dept.Name
					g.contact = dept.BillingContact
					g.poNumber = dept.PONumber
				} else {
					g.name = line.DepartmentID.String()
				}
			}
			byKey[key] = g
		}
		g.lines = append(g.lines, line)
	}

	groups := make([]departmentGroup, 0, len(byKey))
	for _, g := range byKey {
		sortGroupLines(g.lines)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		ki := groupSortKey(groups[i])
		kj := groupSortKey(groups[j])
		return ki < kj
	})
	return groups
}

// groupSortKey orders department groups by lowercased name; company-level
// groups sort after every named department
func groupSortKey(g departmentGroup) string {
	if g.departmentID == nil {
		return "￿"
	}
	return strings.ToLower(g.name) + "/" + g.departmentID.String()
}

// sortGroupLines fixes line order within a section: storage, service,
// product, then adjustments, alphabetical within a type
func sortGroupLines(lines []billing.BillingLine) {
	rank := func(t billing.LineType) int {
		switch t {
		case billing.LineTypeStorage:
			return 0
		case billing.LineTypeService:
			return 1
		case billing.LineTypeProduct:
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Type != lines[j].Type {
			return rank(lines[i].Type) < rank(lines[j].Type)
		}
		return lines[i].Description < lines[j].Description
	})
}

func toItems(lines []billing.BillingLine) ([]InvoiceLineItem, decimal.Decimal) {
	items := make([]InvoiceLineItem, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		items[i] = InvoiceLineItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
		}
		subtotal = subtotal.Add(line.Amount)
	}
	return items, subtotal
}

func customerRecipient(profile *billing.CustomerBillingProfile) Recipient {
	return Recipient{
		CustomerID:   profile.CustomerID,
		CustomerName: profile.CustomerName,
	}
}

// ConsolidatedStrategy emits one invoice per customer. Customers with
// departments get ordered sections per department with a header, and a
// subtotal per section when more than one department contributes; lines
// without a department form a trailing company-level section. Customers
// without departments get a single flat section.
type ConsolidatedStrategy struct{}

// Name returns the strategy name
func (s *ConsolidatedStrategy) Name() string { return "consolidated" }

// Description returns the strategy description
func (s *ConsolidatedStrategy) Description() string {
	return "One invoice per customer with per-department sections"
}

// Group implements GroupingStrategy
func (s *ConsolidatedStrategy) Group(periodID uuid.UUID, lines []billing.BillingLine, profile *billing.CustomerBillingProfile) ([]InvoiceDraft, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	groups := groupByDepartment(lines, profile)

	showSubtotals := len(groups) > 1
	draft := InvoiceDraft{
		PeriodID:  periodID,
		Recipient: customerRecipient(profile),
		Total:     decimal.Zero,
	}
	for _, g := range groups {
		items, subtotal := toItems(g.lines)
		header := g.name
		if g.departmentID == nil && showSubtotals {
			header = "Company-level charges"
		}
		draft.Sections = append(draft.Sections, InvoiceSection{
			Header:       header,
			Items:        items,
			Subtotal:     subtotal,
			ShowSubtotal: showSubtotals,
		})
		draft.Total = draft.Total.Add(subtotal)
	}
	return []InvoiceDraft{draft}, nil
}

// SeparateStrategy emits one invoice per department, billed to that
// department's billing contact and PO when configured, plus one invoice for
// company-level lines when any exist.
type SeparateStrategy struct{}

// Name returns the strategy name
func (s *SeparateStrategy) Name() string { return "separate" }

// Description returns the strategy description
func (s *SeparateStrategy) Description() string {
	return "One invoice per department plus one for company-level charges"
}

// Group implements GroupingStrategy
func (s *SeparateStrategy) Group(periodID uuid.UUID, lines []billing.BillingLine, profile *billing.CustomerBillingProfile) ([]InvoiceDraft, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	groups := groupByDepartment(lines, profile)

	drafts := make([]InvoiceDraft, 0, len(groups))
	for _, g := range groups {
		items, subtotal := toItems(g.lines)
		recipient := customerRecipient(profile)
		if g.departmentID != nil {
			recipient.DepartmentID = g.departmentID
			recipient.DepartmentName = g.name
			recipient.BillingContact = g.contact
			recipient.PONumber = g.poNumber
		}
		drafts = append(drafts, InvoiceDraft{
			PeriodID:  periodID,
			Recipient: recipient,
			Sections: []InvoiceSection{{
				Items:    items,
				Subtotal: subtotal,
			}},
			Total: subtotal,
		})
	}
	return drafts, nil
}

// HybridStrategy routes storage lines (and their minimum-fee adjustments)
// through the consolidated strategy and service/product lines through the
// separate strategy.
type HybridStrategy struct{}

// Name returns the strategy name
func (s *HybridStrategy) Name() string { return "hybrid" }

// Description returns the strategy description
func (s *HybridStrategy) Description() string {
	return "Consolidated storage invoice plus separate service/product invoices"
}

// Group implements GroupingStrategy
func (s *HybridStrategy) Group(periodID uuid.UUID, lines []billing.BillingLine, profile *billing.CustomerBillingProfile) ([]InvoiceDraft, error) {
	var storageLines, activityLines []billing.BillingLine
	for _, line := range lines {
		switch line.Type {
		case billing.LineTypeStorage, billing.LineTypeAdjustment:
			storageLines = append(storageLines, line)
		default:
			activityLines = append(activityLines, line)
		}
	}

	consolidated, err := (&ConsolidatedStrategy{}).Group(periodID, storageLines, profile)
	if err != nil {
		return nil, err
	}
	separate, err := (&SeparateStrategy{}).Group(periodID, activityLines, profile)
	if err != nil {
		return nil, err
	}
	return append(consolidated, separate...), nil
}
