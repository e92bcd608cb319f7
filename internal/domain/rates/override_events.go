package rates

import (
	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateOverrideCreatedEvent is raised when a new override draft is created
type RateOverrideCreatedEvent struct {
	shared.BaseDomainEvent
	OverrideID      uuid.UUID        `json:"override_id"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	Scope           RateScope        `json:"scope"`
	Method          AdjustmentMethod `json:"method"`
	AdjustmentValue decimal.Decimal  `json:"adjustment_value"`
}

// EventType returns the event type name
func (e *RateOverrideCreatedEvent) EventType() string {
	return "RateOverrideCreated"
}

// NewRateOverrideCreatedEvent creates a new RateOverrideCreatedEvent
func NewRateOverrideCreatedEvent(o *CustomerRateOverride) *RateOverrideCreatedEvent {
	return &RateOverrideCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateOverrideCreated", "CustomerRateOverride", o.ID),
		OverrideID:      o.ID,
		CustomerID:      o.CustomerID,
		Scope:           o.Scope,
		Method:          o.Method,
		AdjustmentValue: o.AdjustmentValue,
	}
}

// RateOverrideApprovedEvent is raised when an override draft is approved
type RateOverrideApprovedEvent struct {
	shared.BaseDomainEvent
	OverrideID uuid.UUID `json:"override_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// EventType returns the event type name
func (e *RateOverrideApprovedEvent) EventType() string {
	return "RateOverrideApproved"
}

// NewRateOverrideApprovedEvent creates a new RateOverrideApprovedEvent
func NewRateOverrideApprovedEvent(o *CustomerRateOverride) *RateOverrideApprovedEvent {
	var approver uuid.UUID
	if o.ApprovedBy != nil {
		approver = *o.ApprovedBy
	}
	return &RateOverrideApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateOverrideApproved", "CustomerRateOverride", o.ID),
		OverrideID:      o.ID,
		CustomerID:      o.CustomerID,
		ApprovedBy:      approver,
	}
}

// RateOverrideActivatedEvent is raised when an approved draft becomes the
// active override for its (customer, scope)
type RateOverrideActivatedEvent struct {
	shared.BaseDomainEvent
	OverrideID uuid.UUID `json:"override_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Scope      RateScope `json:"scope"`
}

// EventType returns the event type name
func (e *RateOverrideActivatedEvent) EventType() string {
	return "RateOverrideActivated"
}

// NewRateOverrideActivatedEvent creates a new RateOverrideActivatedEvent
func NewRateOverrideActivatedEvent(o *CustomerRateOverride) *RateOverrideActivatedEvent {
	return &RateOverrideActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateOverrideActivated", "CustomerRateOverride", o.ID),
		OverrideID:      o.ID,
		CustomerID:      o.CustomerID,
		Scope:           o.Scope,
	}
}

// RateOverrideSupersededEvent is raised when an active override is replaced
type RateOverrideSupersededEvent struct {
	shared.BaseDomainEvent
	OverrideID uuid.UUID `json:"override_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Scope      RateScope `json:"scope"`
}

// EventType returns the event type name
func (e *RateOverrideSupersededEvent) EventType() string {
	return "RateOverrideSuperseded"
}

// NewRateOverrideSupersededEvent creates a new RateOverrideSupersededEvent
func NewRateOverrideSupersededEvent(o *CustomerRateOverride) *RateOverrideSupersededEvent {
	return &RateOverrideSupersededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateOverrideSuperseded", "CustomerRateOverride", o.ID),
		OverrideID:      o.ID,
		CustomerID:      o.CustomerID,
		Scope:           o.Scope,
	}
}

// RateOverrideExpiredEvent is raised when an active override is retired
type RateOverrideExpiredEvent struct {
	shared.BaseDomainEvent
	OverrideID uuid.UUID `json:"override_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Scope      RateScope `json:"scope"`
}

// EventType returns the event type name
func (e *RateOverrideExpiredEvent) EventType() string {
	return "RateOverrideExpired"
}

// NewRateOverrideExpiredEvent creates a new RateOverrideExpiredEvent
func NewRateOverrideExpiredEvent(o *CustomerRateOverride) *RateOverrideExpiredEvent {
	return &RateOverrideExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateOverrideExpired", "CustomerRateOverride", o.ID),
		OverrideID:      o.ID,
		CustomerID:      o.CustomerID,
		Scope:           o.Scope,
	}
}
