package rates

import (
	"fmt"
	"time"

	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ServiceCategory groups billable services into pricing families
type ServiceCategory string

const (
	CategoryStorage     ServiceCategory = "STORAGE"
	CategoryShredding   ServiceCategory = "SHREDDING"
	CategoryRetrieval   ServiceCategory = "RETRIEVAL"
	CategoryDestruction ServiceCategory = "DESTRUCTION"
	CategoryImaging     ServiceCategory = "IMAGING"
	CategoryProducts    ServiceCategory = "PRODUCTS"
)

// IsValid checks if the category is a known ServiceCategory
func (c ServiceCategory) IsValid() bool {
	switch c {
	case CategoryStorage, CategoryShredding, CategoryRetrieval,
		CategoryDestruction, CategoryImaging, CategoryProducts:
		return true
	}
	return false
}

// String returns the string representation of ServiceCategory
func (c ServiceCategory) String() string {
	return string(c)
}

// ServiceType identifies a concrete service within a category, e.g.
// "standard" container storage or "onsite_shredding". Storage types mirror
// the container classifications used by the inventory system.
type ServiceType string

const (
	TypeStandardStorage  ServiceType = "standard"
	TypeMapStorage       ServiceType = "map"
	TypeSpecialtyStorage ServiceType = "specialty"
	TypePalletStorage    ServiceType = "pallet"
	TypeOnsiteShredding  ServiceType = "onsite_shredding"
	TypeOffsiteShredding ServiceType = "offsite_shredding"
)

// RateStructure describes how a base rate is applied to quantity
type RateStructure string

const (
	RatePerUnit      RateStructure = "PER_UNIT"
	RatePerWeight    RateStructure = "PER_WEIGHT"
	RatePerHour      RateStructure = "PER_HOUR"
	RatePerContainer RateStructure = "PER_CONTAINER"
	RatePerPage      RateStructure = "PER_PAGE"
	RateFlat         RateStructure = "FLAT"
)

// IsValid checks if the rate structure is valid
func (s RateStructure) IsValid() bool {
	switch s {
	case RatePerUnit, RatePerWeight, RatePerHour, RatePerContainer, RatePerPage, RateFlat:
		return true
	}
	return false
}

// RateState represents the lifecycle state of a rate record
type RateState string

const (
	RateStateDraft      RateState = "DRAFT"
	RateStateActive     RateState = "ACTIVE"
	RateStateSuperseded RateState = "SUPERSEDED"
	RateStateExpired    RateState = "EXPIRED"
)

// IsValid checks if the state is a valid RateState
func (s RateState) IsValid() bool {
	switch s {
	case RateStateDraft, RateStateActive, RateStateSuperseded, RateStateExpired:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s RateState) IsTerminal() bool {
	return s == RateStateSuperseded || s == RateStateExpired
}

// RateScope identifies the (category, type) pair a rate applies to.
// At most one catalog entry may be active per scope at any instant.
type RateScope struct {
	Category ServiceCategory `json:"category"`
	Type     ServiceType     `json:"type"`
}

// String returns "category/type" for log and error messages
func (s RateScope) String() string {
	return fmt.Sprintf("%s/%s", s.Category, s.Type)
}

// RateCatalogEntry is a versioned, time-bounded default rate for a service
// scope. New versions start as drafts; activating a draft supersedes the
// previously active entry for the same scope.
type RateCatalogEntry struct {
	shared.BaseAggregateRoot
	Scope          RateScope       `json:"scope"`
	Structure      RateStructure   `json:"structure"`
	BaseRate       decimal.Decimal `json:"base_rate"`
	MinimumCharge  decimal.Decimal `json:"minimum_charge"`
	EffectiveDate  time.Time       `json:"effective_date"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	State          RateState       `json:"state"`
	Description    string          `json:"description,omitempty"`
}

// NewRateCatalogEntry creates a draft catalog entry
func NewRateCatalogEntry(
	scope RateScope,
	structure RateStructure,
	baseRate decimal.Decimal,
	minimumCharge decimal.Decimal,
	effectiveDate time.Time,
	expirationDate *time.Time,
) (*RateCatalogEntry, error) {
	if !scope.Category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown service category %q", scope.Category))
	}
	if scope.Type == "" {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Service type cannot be empty")
	}
	if !structure.IsValid() {
		return nil, shared.NewDomainError("INVALID_RATE_STRUCTURE", fmt.Sprintf("Unknown rate structure %q", structure))
	}
	if baseRate.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Base rate cannot be negative")
	}
	if minimumCharge.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Minimum charge cannot be negative")
	}
	if expirationDate != nil && expirationDate.Before(effectiveDate) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Expiration date cannot precede effective date")
	}

	entry := &RateCatalogEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Scope:             scope,
		Structure:         structure,
		BaseRate:          baseRate,
		MinimumCharge:     minimumCharge,
		EffectiveDate:     effectiveDate,
		ExpirationDate:    expirationDate,
		State:             RateStateDraft,
	}
	entry.AddDomainEvent(NewRateCatalogEntryCreatedEvent(entry))
	return entry, nil
}

// Activate transitions the entry from draft to active. The caller is
// responsible for superseding the previously active entry for the same
// scope in the same transaction.
func (e *RateCatalogEntry) Activate() error {
	if e.State != RateStateDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot activate catalog entry in %s state, only drafts can be activated", e.State))
	}
	e.State = RateStateActive
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewRateCatalogEntryActivatedEvent(e))
	return nil
}

// Supersede marks a previously active entry as replaced by a newer version
func (e *RateCatalogEntry) Supersede() error {
	if e.State != RateStateActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot supersede catalog entry in %s state", e.State))
	}
	e.State = RateStateSuperseded
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	e.AddDomainEvent(NewRateCatalogEntrySupersededEvent(e))
	return nil
}

// Expire retires an active entry without replacement
func (e *RateCatalogEntry) Expire() error {
	if e.State != RateStateActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire catalog entry in %s state", e.State))
	}
	now := time.Now()
	e.State = RateStateExpired
	if e.ExpirationDate == nil {
		e.ExpirationDate = &now
	}
	e.UpdatedAt = now
	e.IncrementVersion()
	e.AddDomainEvent(NewRateCatalogEntryExpiredEvent(e))
	return nil
}

// IsEffectiveOn reports whether the entry's date window covers the given date
func (e *RateCatalogEntry) IsEffectiveOn(asOf time.Time) bool {
	if asOf.Before(e.EffectiveDate) {
		return false
	}
	if e.ExpirationDate != nil && asOf.After(*e.ExpirationDate) {
		return false
	}
	return true
}

// BaseRateMoney returns the base rate as Money
func (e *RateCatalogEntry) BaseRateMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(e.BaseRate)
}

// MinimumChargeMoney returns the minimum charge as Money
func (e *RateCatalogEntry) MinimumChargeMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(e.MinimumCharge)
}
