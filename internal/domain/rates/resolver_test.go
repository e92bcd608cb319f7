package rates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalogRepo serves catalog entries from memory for resolver tests
type fakeCatalogRepo struct {
	entries []RateCatalogEntry
}

func (r *fakeCatalogRepo) FindByID(_ context.Context, id uuid.UUID) (*RateCatalogEntry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			return &r.entries[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCatalogRepo) FindActiveForScope(_ context.Context, scope RateScope) (*RateCatalogEntry, error) {
	for i := range r.entries {
		if r.entries[i].Scope == scope && r.entries[i].State == RateStateActive {
			return &r.entries[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCatalogRepo) FindActiveAsOf(_ context.Context, scope RateScope, asOf time.Time) ([]RateCatalogEntry, error) {
	var out []RateCatalogEntry
	for _, e := range r.entries {
		if e.Scope == scope && e.State == RateStateActive && e.IsEffectiveOn(asOf) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindAllForScope(_ context.Context, scope RateScope) ([]RateCatalogEntry, error) {
	var out []RateCatalogEntry
	for _, e := range r.entries {
		if e.Scope == scope {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) Save(_ context.Context, entry *RateCatalogEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeCatalogRepo) ActivateSuperseding(_ context.Context, entry *RateCatalogEntry) ([]RateCatalogEntry, error) {
	r.entries = append(r.entries, *entry)
	return nil, nil
}

// fakeOverrideRepo serves overrides from memory for resolver tests
type fakeOverrideRepo struct {
	overrides []CustomerRateOverride
}

func (r *fakeOverrideRepo) FindByID(_ context.Context, id uuid.UUID) (*CustomerRateOverride, error) {
	for i := range r.overrides {
		if r.overrides[i].ID == id {
			return &r.overrides[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOverrideRepo) FindActiveForCustomerScope(_ context.Context, customerID uuid.UUID, scope RateScope) (*CustomerRateOverride, error) {
	for i := range r.overrides {
		o := &r.overrides[i]
		if o.CustomerID == customerID && o.Scope == scope && o.State == RateStateActive {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOverrideRepo) FindActiveAsOf(_ context.Context, customerID uuid.UUID, scope RateScope, asOf time.Time) ([]CustomerRateOverride, error) {
	var out []CustomerRateOverride
	for _, o := range r.overrides {
		if o.CustomerID == customerID && o.Scope == scope && o.State == RateStateActive && o.IsEffectiveOn(asOf) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOverrideRepo) FindByCustomer(_ context.Context, customerID uuid.UUID) ([]CustomerRateOverride, error) {
	var out []CustomerRateOverride
	for _, o := range r.overrides {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOverrideRepo) Save(_ context.Context, override *CustomerRateOverride) error {
	r.overrides = append(r.overrides, *override)
	return nil
}

func (r *fakeOverrideRepo) ActivateSuperseding(_ context.Context, override *CustomerRateOverride) ([]CustomerRateOverride, error) {
	r.overrides = append(r.overrides, *override)
	return nil, nil
}

func activeEntry(t *testing.T, rate float64, effective time.Time) RateCatalogEntry {
	t.Helper()
	entry, err := NewRateCatalogEntry(
		storageScope(), RatePerContainer,
		decimal.NewFromFloat(rate), decimal.Zero,
		effective, nil,
	)
	require.NoError(t, err)
	require.NoError(t, entry.Activate())
	return *entry
}

func activeOverride(t *testing.T, customerID uuid.UUID, method AdjustmentMethod, value float64, effective time.Time) CustomerRateOverride {
	t.Helper()
	o, err := NewCustomerRateOverride(
		customerID, storageScope(),
		method, decimal.NewFromFloat(value),
		effective, nil,
	)
	require.NoError(t, err)
	require.NoError(t, o.Approve(uuid.New()))
	require.NoError(t, o.Activate())
	return *o
}

func TestResolverGetActiveRate(t *testing.T) {
	ctx := context.Background()
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns the active entry for the scope", func(t *testing.T) {
		catalog := &fakeCatalogRepo{entries: []RateCatalogEntry{activeEntry(t, 2.50, jan)}}
		resolver := NewResolver(catalog, &fakeOverrideRepo{})

		entry, err := resolver.GetActiveRate(ctx, storageScope(), jan.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.True(t, entry.BaseRate.Equal(decimal.NewFromFloat(2.50)))
	})

	t.Run("returns not found before the effective date", func(t *testing.T) {
		catalog := &fakeCatalogRepo{entries: []RateCatalogEntry{activeEntry(t, 2.50, jan)}}
		resolver := NewResolver(catalog, &fakeOverrideRepo{})

		_, err := resolver.GetActiveRate(ctx, storageScope(), jan.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for an unpriced scope", func(t *testing.T) {
		resolver := NewResolver(&fakeCatalogRepo{}, &fakeOverrideRepo{})
		_, err := resolver.GetActiveRate(ctx, storageScope(), jan)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestResolverGetCustomerRate(t *testing.T) {
	ctx := context.Background()
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := jan.AddDate(0, 2, 0)
	customerID := uuid.New()

	t.Run("base rate when no override exists", func(t *testing.T) {
		catalog := &fakeCatalogRepo{entries: []RateCatalogEntry{activeEntry(t, 3.00, jan)}}
		resolver := NewResolver(catalog, &fakeOverrideRepo{})

		resolved, err := resolver.GetCustomerRate(ctx, customerID, storageScope(), asOf)
		require.NoError(t, err)
		assert.Equal(t, SourceBase, resolved.Source)
		assert.True(t, resolved.Rate.Equal(decimal.NewFromFloat(3.00)))
		assert.Nil(t, resolved.OverrideID)
	})

	t.Run("negotiated rate wins over the base rate", func(t *testing.T) {
		catalog := &fakeCatalogRepo{entries: []RateCatalogEntry{activeEntry(t, 3.00, jan)}}
		overrides := &fakeOverrideRepo{overrides: []CustomerRateOverride{
			activeOverride(t, customerID, AdjustPercentageDiscount, 10, jan),
		}}
		resolver := NewResolver(catalog, overrides)

		resolved, err := resolver.GetCustomerRate(ctx, customerID, storageScope(), asOf)
		require.NoError(t, err)
		assert.Equal(t, SourceNegotiated, resolved.Source)
		assert.True(t, resolved.Rate.Equal(decimal.NewFromFloat(2.70)))
		require.NotNil(t, resolved.OverrideID)
	})

	t.Run("other customers' overrides are ignored", func(t *testing.T) {
		catalog := &fakeCatalogRepo{entries: []RateCatalogEntry{activeEntry(t, 3.00, jan)}}
		overrides := &fakeOverrideRepo{overrides: []CustomerRateOverride{
			activeOverride(t, uuid.New(), AdjustPercentageDiscount, 50, jan),
		}}
		resolver := NewResolver(catalog, overrides)

		resolved, err := resolver.GetCustomerRate(ctx, customerID, storageScope(), asOf)
		require.NoError(t, err)
		assert.Equal(t, SourceBase, resolved.Source)
	})

	t.Run("no catalog entry yields a zero none rate", func(t *testing.T) {
		resolver := NewResolver(&fakeCatalogRepo{}, &fakeOverrideRepo{})

		resolved, err := resolver.GetCustomerRate(ctx, customerID, storageScope(), asOf)
		require.NoError(t, err)
		assert.Equal(t, SourceNone, resolved.Source)
		assert.True(t, resolved.Rate.IsZero())
	})

	t.Run("an override without a catalog entry resolves to none", func(t *testing.T) {
		// overrides refine a published rate, so even a fixed-rate override
		// resolves nothing for an unpriced scope
		overrides := &fakeOverrideRepo{overrides: []CustomerRateOverride{
			activeOverride(t, customerID, AdjustFixedOverride, 1.75, jan),
		}}
		resolver := NewResolver(&fakeCatalogRepo{}, overrides)

		resolved, err := resolver.GetCustomerRate(ctx, customerID, storageScope(), asOf)
		require.NoError(t, err)
		assert.Equal(t, SourceNone, resolved.Source)
		assert.True(t, resolved.Rate.IsZero())
	})

	t.Run("expired override falls back to the base rate", func(t *testing.T) {
		expiration := jan.AddDate(0, 1, 0)
		o, err := NewCustomerRateOverride(
			customerID, storageScope(),
			AdjustPercentageDiscount, decimal.NewFromInt(10),
			jan, &expiration,
		)
		require.NoError(t, err)
		require.NoError(t, o.Approve(uuid.New()))
		require.NoError(t, o.Activate())

		catalog := &fakeCatalogRepo{entries: []RateCatalogEntry{activeEntry(t, 3.00, jan)}}
		overrides := &fakeOverrideRepo{overrides: []CustomerRateOverride{*o}}
		resolver := NewResolver(catalog, overrides)

		resolved, err := resolver.GetCustomerRate(ctx, customerID, storageScope(), asOf)
		require.NoError(t, err)
		assert.Equal(t, SourceBase, resolved.Source)
	})
}
