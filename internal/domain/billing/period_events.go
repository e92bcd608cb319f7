package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillingPeriodCreatedEvent is raised when an operator opens a new period
type BillingPeriodCreatedEvent struct {
	shared.BaseDomainEvent
	PeriodID  uuid.UUID `json:"period_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// EventType returns the event type name
func (e *BillingPeriodCreatedEvent) EventType() string {
	return "BillingPeriodCreated"
}

// NewBillingPeriodCreatedEvent creates a new BillingPeriodCreatedEvent
func NewBillingPeriodCreatedEvent(p *BillingPeriod) *BillingPeriodCreatedEvent {
	return &BillingPeriodCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillingPeriodCreated", "BillingPeriod", p.ID),
		PeriodID:        p.ID,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
	}
}

// BillingPeriodCalculatedEvent is raised when a calculation run completes
type BillingPeriodCalculatedEvent struct {
	shared.BaseDomainEvent
	PeriodID    uuid.UUID       `json:"period_id"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *BillingPeriodCalculatedEvent) EventType() string {
	return "BillingPeriodCalculated"
}

// NewBillingPeriodCalculatedEvent creates a new BillingPeriodCalculatedEvent
func NewBillingPeriodCalculatedEvent(p *BillingPeriod) *BillingPeriodCalculatedEvent {
	return &BillingPeriodCalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillingPeriodCalculated", "BillingPeriod", p.ID),
		PeriodID:        p.ID,
		LineCount:       len(p.Lines),
		TotalAmount:     p.TotalAmount(),
	}
}

// BillingPeriodApprovedEvent is raised when a period is approved for invoicing
type BillingPeriodApprovedEvent struct {
	shared.BaseDomainEvent
	PeriodID    uuid.UUID       `json:"period_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *BillingPeriodApprovedEvent) EventType() string {
	return "BillingPeriodApproved"
}

// NewBillingPeriodApprovedEvent creates a new BillingPeriodApprovedEvent
func NewBillingPeriodApprovedEvent(p *BillingPeriod) *BillingPeriodApprovedEvent {
	return &BillingPeriodApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillingPeriodApproved", "BillingPeriod", p.ID),
		PeriodID:        p.ID,
		TotalAmount:     p.TotalAmount(),
	}
}

// BillingPeriodInvoicedEvent is raised when invoice documents were posted
type BillingPeriodInvoicedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	InvoiceCount int       `json:"invoice_count"`
}

// EventType returns the event type name
func (e *BillingPeriodInvoicedEvent) EventType() string {
	return "BillingPeriodInvoiced"
}

// NewBillingPeriodInvoicedEvent creates a new BillingPeriodInvoicedEvent
func NewBillingPeriodInvoicedEvent(p *BillingPeriod) *BillingPeriodInvoicedEvent {
	return &BillingPeriodInvoicedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillingPeriodInvoiced", "BillingPeriod", p.ID),
		PeriodID:        p.ID,
		InvoiceCount:    p.InvoiceCount,
	}
}

// BillingPeriodClosedEvent is raised when an invoiced period is closed
type BillingPeriodClosedEvent struct {
	shared.BaseDomainEvent
	PeriodID uuid.UUID `json:"period_id"`
}

// EventType returns the event type name
func (e *BillingPeriodClosedEvent) EventType() string {
	return "BillingPeriodClosed"
}

// NewBillingPeriodClosedEvent creates a new BillingPeriodClosedEvent
func NewBillingPeriodClosedEvent(p *BillingPeriod) *BillingPeriodClosedEvent {
	return &BillingPeriodClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillingPeriodClosed", "BillingPeriod", p.ID),
		PeriodID:        p.ID,
	}
}
