package rates

import (
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateCatalogEntryCreatedEvent is raised when a new catalog draft is created
type RateCatalogEntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryID       uuid.UUID       `json:"entry_id"`
	Scope         RateScope       `json:"scope"`
	Structure     RateStructure   `json:"structure"`
	BaseRate      decimal.Decimal `json:"base_rate"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// EventType returns the event type name
func (e *RateCatalogEntryCreatedEvent) EventType() string {
	return "RateCatalogEntryCreated"
}

// NewRateCatalogEntryCreatedEvent creates a new RateCatalogEntryCreatedEvent
func NewRateCatalogEntryCreatedEvent(entry *RateCatalogEntry) *RateCatalogEntryCreatedEvent {
	return &RateCatalogEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateCatalogEntryCreated", "RateCatalogEntry", entry.ID),
		EntryID:         entry.ID,
		Scope:           entry.Scope,
		Structure:       entry.Structure,
		BaseRate:        entry.BaseRate,
		EffectiveDate:   entry.EffectiveDate,
	}
}

// RateCatalogEntryActivatedEvent is raised when a draft becomes the active
// rate for its scope
type RateCatalogEntryActivatedEvent struct {
	shared.BaseDomainEvent
	EntryID  uuid.UUID       `json:"entry_id"`
	Scope    RateScope       `json:"scope"`
	BaseRate decimal.Decimal `json:"base_rate"`
}

// EventType returns the event type name
func (e *RateCatalogEntryActivatedEvent) EventType() string {
	return "RateCatalogEntryActivated"
}

// NewRateCatalogEntryActivatedEvent creates a new RateCatalogEntryActivatedEvent
func NewRateCatalogEntryActivatedEvent(entry *RateCatalogEntry) *RateCatalogEntryActivatedEvent {
	return &RateCatalogEntryActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateCatalogEntryActivated", "RateCatalogEntry", entry.ID),
		EntryID:         entry.ID,
		Scope:           entry.Scope,
		BaseRate:        entry.BaseRate,
	}
}

// RateCatalogEntrySupersededEvent is raised when an active entry is replaced
type RateCatalogEntrySupersededEvent struct {
	shared.BaseDomainEvent
	EntryID uuid.UUID `json:"entry_id"`
	Scope   RateScope `json:"scope"`
}

// EventType returns the event type name
func (e *RateCatalogEntrySupersededEvent) EventType() string {
	return "RateCatalogEntrySuperseded"
}

// NewRateCatalogEntrySupersededEvent creates a new RateCatalogEntrySupersededEvent
func NewRateCatalogEntrySupersededEvent(entry *RateCatalogEntry) *RateCatalogEntrySupersededEvent {
	return &RateCatalogEntrySupersededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateCatalogEntrySuperseded", "RateCatalogEntry", entry.ID),
		EntryID:         entry.ID,
		Scope:           entry.Scope,
	}
}

// RateCatalogEntryExpiredEvent is raised when an active entry is retired
// without replacement
type RateCatalogEntryExpiredEvent struct {
	shared.BaseDomainEvent
	EntryID uuid.UUID `json:"entry_id"`
	Scope   RateScope `json:"scope"`
}

// EventType returns the event type name
func (e *RateCatalogEntryExpiredEvent) EventType() string {
	return "RateCatalogEntryExpired"
}

// NewRateCatalogEntryExpiredEvent creates a new RateCatalogEntryExpiredEvent
func NewRateCatalogEntryExpiredEvent(entry *RateCatalogEntry) *RateCatalogEntryExpiredEvent {
	return &RateCatalogEntryExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RateCatalogEntryExpired", "RateCatalogEntry", entry.ID),
		EntryID:         entry.ID,
		Scope:           entry.Scope,
	}
}
