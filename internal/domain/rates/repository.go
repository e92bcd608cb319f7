package rates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RateCatalogRepository defines the interface for catalog entry persistence
type RateCatalogRepository interface {
	// FindByID finds a catalog entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RateCatalogEntry, error)

	// FindActiveForScope finds the currently active entry for a scope,
	// regardless of date window. Returns shared.ErrNotFound if none exists.
	FindActiveForScope(ctx context.Context, scope RateScope) (*RateCatalogEntry, error)

	// FindActiveAsOf finds the active, date-valid entries for a scope as of
	// the given date, ordered by effective date descending. Under correct
	// activation discipline at most one row qualifies; callers take the
	// first row as the defensive tie-break.
	FindActiveAsOf(ctx context.Context, scope RateScope, asOf time.Time) ([]RateCatalogEntry, error)

	// FindAllForScope returns the full version history for a scope
	FindAllForScope(ctx context.Context, scope RateScope) ([]RateCatalogEntry, error)

	// Save creates or updates a catalog entry
	Save(ctx context.Context, entry *RateCatalogEntry) error

	// ActivateSuperseding persists an activated entry and supersedes any
	// other ACTIVE entry for the same scope in one transaction. The prior
	// active set is re-read under a scope lock inside the transaction, so
	// two concurrent activations serialize and exactly one entry ends up
	// ACTIVE. Returns the entries that were superseded.
	ActivateSuperseding(ctx context.Context, entry *RateCatalogEntry) ([]RateCatalogEntry, error)
}

// RateOverrideRepository defines the interface for override persistence
type RateOverrideRepository interface {
	// FindByID finds an override by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerRateOverride, error)

	// FindActiveForCustomerScope finds the currently active override for a
	// (customer, scope), regardless of date window
	FindActiveForCustomerScope(ctx context.Context, customerID uuid.UUID, scope RateScope) (*CustomerRateOverride, error)

	// FindActiveAsOf finds active, date-valid overrides for a (customer,
	// scope) as of a date, ordered by effective date descending
	FindActiveAsOf(ctx context.Context, customerID uuid.UUID, scope RateScope, asOf time.Time) ([]CustomerRateOverride, error)

	// FindByCustomer returns all overrides for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]CustomerRateOverride, error)

	// Save creates or updates an override
	Save(ctx context.Context, override *CustomerRateOverride) error

	// ActivateSuperseding persists an activated override and supersedes any
	// other ACTIVE override for the same (customer, scope) in one
	// transaction, re-reading the prior active set under a lock so
	// concurrent activations serialize. Returns the superseded overrides.
	ActivateSuperseding(ctx context.Context, override *CustomerRateOverride) ([]CustomerRateOverride, error)
}
