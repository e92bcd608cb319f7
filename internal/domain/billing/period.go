package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PeriodState represents the lifecycle state of a billing period
type PeriodState string

const (
	PeriodStateDraft       PeriodState = "DRAFT"
	PeriodStateCalculating PeriodState = "CALCULATING"
	PeriodStateReady       PeriodState = "READY"
	PeriodStateApproved    PeriodState = "APPROVED"
	PeriodStateInvoiced    PeriodState = "INVOICED"
	PeriodStateClosed      PeriodState = "CLOSED"
)

// IsValid checks if the state is a valid PeriodState
func (s PeriodState) IsValid() bool {
	switch s {
	case PeriodStateDraft, PeriodStateCalculating, PeriodStateReady,
		PeriodStateApproved, PeriodStateInvoiced, PeriodStateClosed:
		return true
	}
	return false
}

// IsImmutable returns true once the period's lines may no longer change
func (s PeriodState) IsImmutable() bool {
	return s == PeriodStateInvoiced || s == PeriodStateClosed
}

// BillingPeriod aggregates all billing lines for a date range. It exclusively
// owns its lines: recalculation replaces the whole set, and a period is never
// deleted once invoiced.
type BillingPeriod struct {
	shared.BaseAggregateRoot
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	State        PeriodState   `json:"state"`
	Lines        []BillingLine `json:"lines"`
	CalculatedAt *time.Time    `json:"calculated_at,omitempty"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
	InvoicedAt   *time.Time    `json:"invoiced_at,omitempty"`
	InvoiceCount int           `json:"invoice_count"`
}

// NewBillingPeriod creates a draft billing period for a date range
func NewBillingPeriod(startDate, endDate time.Time) (*BillingPeriod, error) {
	if endDate.Before(startDate) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Period end date cannot precede start date")
	}
	p := &BillingPeriod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StartDate:         startDate,
		EndDate:           endDate,
		State:             PeriodStateDraft,
		Lines:             []BillingLine{},
	}
	p.AddDomainEvent(NewBillingPeriodCreatedEvent(p))
	return p, nil
}

// BeginCalculation claims the period for a calculation run. The calculating
// state acts as a mutex: a second caller observing it is rejected rather
// than queued. Existing lines are discarded immediately (replace-not-merge).
func (p *BillingPeriod) BeginCalculation() error {
	switch p.State {
	case PeriodStateCalculating:
		return shared.ErrCalculationRunning
	case PeriodStateInvoiced, PeriodStateClosed:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot recalculate a period in %s state", p.State))
	}
	p.State = PeriodStateCalculating
	p.Lines = []BillingLine{}
	p.CalculatedAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// CompleteCalculation installs the freshly generated lines and moves the
// period to ready
func (p *BillingPeriod) CompleteCalculation(lines []BillingLine) error {
	if p.State != PeriodStateCalculating {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete calculation for a period in %s state", p.State))
	}
	now := time.Now()
	p.Lines = lines
	p.State = PeriodStateReady
	p.CalculatedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewBillingPeriodCalculatedEvent(p))
	return nil
}

// Approve moves a ready period to approved, making it eligible for invoicing
func (p *BillingPeriod) Approve() error {
	if p.State != PeriodStateReady {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve a period in %s state, it must be READY", p.State))
	}
	now := time.Now()
	p.State = PeriodStateApproved
	p.ApprovedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewBillingPeriodApprovedEvent(p))
	return nil
}

// MarkInvoiced records that invoice documents were posted for this period.
// The transition must be committed in the same transaction as the posting
// to prevent double-invoicing on retry.
func (p *BillingPeriod) MarkInvoiced(invoiceCount int) error {
	if p.State != PeriodStateApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot generate invoices for a period in %s state, it must be APPROVED", p.State))
	}
	if invoiceCount < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Invoice count cannot be negative")
	}
	now := time.Now()
	p.State = PeriodStateInvoiced
	p.InvoicedAt = &now
	p.InvoiceCount = invoiceCount
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewBillingPeriodInvoicedEvent(p))
	return nil
}

// Close finishes an invoiced period
func (p *BillingPeriod) Close() error {
	if p.State != PeriodStateInvoiced {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close a period in %s state, it must be INVOICED", p.State))
	}
	p.State = PeriodStateClosed
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewBillingPeriodClosedEvent(p))
	return nil
}

// ResetToDraft is the manual remedy after a failed calculation. It discards
// any partially written lines; there is no line-level retry.
func (p *BillingPeriod) ResetToDraft() error {
	switch p.State {
	case PeriodStateCalculating, PeriodStateReady, PeriodStateApproved:
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reset a period in %s state", p.State))
	}
	p.State = PeriodStateDraft
	p.Lines = []BillingLine{}
	p.CalculatedAt = nil
	p.ApprovedAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// TotalAmount sums all line amounts in the period
func (p *BillingPeriod) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.Amount)
	}
	return total
}

// LinesForCustomer returns the period's lines belonging to one customer
func (p *BillingPeriod) LinesForCustomer(customerID uuid.UUID) []BillingLine {
	var out []BillingLine
	for _, line := range p.Lines {
		if line.CustomerID == customerID {
			out = append(out, line)
		}
	}
	return out
}

// Contains reports whether a date falls within the period (inclusive)
func (p *BillingPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}
