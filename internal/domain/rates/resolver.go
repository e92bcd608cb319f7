package rates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateSource tags where a resolved rate came from, for auditability
type RateSource string

const (
	SourceNegotiated RateSource = "NEGOTIATED"
	SourceBase       RateSource = "BASE"
	SourceNone       RateSource = "NONE"
)

// ResolvedRate is the outcome of a customer rate lookup
type ResolvedRate struct {
	Rate       decimal.Decimal
	Source     RateSource
	EntryID    uuid.UUID  // catalog entry the rate derives from
	OverrideID *uuid.UUID // set when Source is NEGOTIATED
}

// Resolver answers rate questions by combining the catalog with customer
// overrides. It is a stateless domain service; all reads go through the
// repositories and are safe to run concurrently.
type Resolver struct {
	catalogRepo  RateCatalogRepository
	overrideRepo RateOverrideRepository
}

// NewResolver creates a new rate Resolver
func NewResolver(catalogRepo RateCatalogRepository, overrideRepo RateOverrideRepository) *Resolver {
	return &Resolver{
		catalogRepo:  catalogRepo,
		overrideRepo: overrideRepo,
	}
}

// GetActiveRate returns the active, date-valid catalog entry for a scope.
// If the single-active invariant has been violated out-of-band, the most
// recently effective qualifying entry wins.
func (r *Resolver) GetActiveRate(ctx context.Context, scope RateScope, asOf time.Time) (*RateCatalogEntry, error) {
	entries, err := r.catalogRepo.FindActiveAsOf(ctx, scope, asOf)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, shared.ErrNotFound
	}
	return &entries[0], nil
}

// GetCustomerRate resolves the effective rate for a customer and scope,
// preferring an active, date-valid override over the catalog base rate.
// Overrides only refine a published rate: without an active catalog entry
// for the scope the result is SourceNone with a zero rate, even when a
// fixed-rate override is on file for the customer.
func (r *Resolver) GetCustomerRate(ctx context.Context, customerID uuid.UUID, scope RateScope, asOf time.Time) (ResolvedRate, error) {
	entry, err := r.GetActiveRate(ctx, scope, asOf)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ResolvedRate{Rate: decimal.Zero, Source: SourceNone}, nil
		}
		return ResolvedRate{}, err
	}

	overrides, err := r.overrideRepo.FindActiveAsOf(ctx, customerID, scope, asOf)
	if err != nil {
		return ResolvedRate{}, err
	}
	if len(overrides) > 0 {
		override := overrides[0]
		rate, err := override.NegotiatedRate(entry.BaseRate)
		if err != nil {
			return ResolvedRate{}, err
		}
		overrideID := override.ID
		return ResolvedRate{
			Rate:       rate,
			Source:     SourceNegotiated,
			EntryID:    entry.ID,
			OverrideID: &overrideID,
		}, nil
	}

	return ResolvedRate{
		Rate:    entry.BaseRate,
		Source:  SourceBase,
		EntryID: entry.ID,
	}, nil
}
