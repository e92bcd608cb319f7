package rates

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageScope() RateScope {
	return RateScope{Category: CategoryStorage, Type: TypeStandardStorage}
}

func newDraftEntry(t *testing.T) *RateCatalogEntry {
	t.Helper()
	entry, err := NewRateCatalogEntry(
		storageScope(),
		RatePerContainer,
		decimal.NewFromFloat(2.50),
		decimal.Zero,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		nil,
	)
	require.NoError(t, err)
	return entry
}

func TestNewRateCatalogEntry(t *testing.T) {
	t.Run("creates draft entry successfully", func(t *testing.T) {
		entry := newDraftEntry(t)
		assert.Equal(t, RateStateDraft, entry.State)
		assert.Equal(t, storageScope(), entry.Scope)
		assert.True(t, entry.BaseRate.Equal(decimal.NewFromFloat(2.50)))
		assert.Len(t, entry.GetDomainEvents(), 1)
	})

	t.Run("fails with unknown category", func(t *testing.T) {
		_, err := NewRateCatalogEntry(
			RateScope{Category: "PARKING", Type: TypeStandardStorage},
			RatePerContainer, decimal.NewFromInt(1), decimal.Zero,
			time.Now(), nil,
		)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "category")
	})

	t.Run("fails with empty service type", func(t *testing.T) {
		_, err := NewRateCatalogEntry(
			RateScope{Category: CategoryStorage},
			RatePerContainer, decimal.NewFromInt(1), decimal.Zero,
			time.Now(), nil,
		)
		assert.Error(t, err)
	})

	t.Run("fails with negative base rate", func(t *testing.T) {
		_, err := NewRateCatalogEntry(
			storageScope(), RatePerContainer,
			decimal.NewFromInt(-1), decimal.Zero,
			time.Now(), nil,
		)
		assert.Error(t, err)
	})

	t.Run("fails when expiration precedes effective date", func(t *testing.T) {
		effective := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		expiration := effective.AddDate(0, -1, 0)
		_, err := NewRateCatalogEntry(
			storageScope(), RatePerContainer,
			decimal.NewFromInt(1), decimal.Zero,
			effective, &expiration,
		)
		assert.Error(t, err)
	})
}

func TestRateCatalogEntryLifecycle(t *testing.T) {
	t.Run("activate from draft", func(t *testing.T) {
		entry := newDraftEntry(t)
		require.NoError(t, entry.Activate())
		assert.Equal(t, RateStateActive, entry.State)
	})

	t.Run("cannot activate twice", func(t *testing.T) {
		entry := newDraftEntry(t)
		require.NoError(t, entry.Activate())
		assert.Error(t, entry.Activate())
	})

	t.Run("supersede requires active state", func(t *testing.T) {
		entry := newDraftEntry(t)
		assert.Error(t, entry.Supersede())

		require.NoError(t, entry.Activate())
		require.NoError(t, entry.Supersede())
		assert.Equal(t, RateStateSuperseded, entry.State)
	})

	t.Run("superseded entry is terminal", func(t *testing.T) {
		entry := newDraftEntry(t)
		require.NoError(t, entry.Activate())
		require.NoError(t, entry.Supersede())
		assert.True(t, entry.State.IsTerminal())
		assert.Error(t, entry.Activate())
		assert.Error(t, entry.Expire())
	})

	t.Run("expire stamps an expiration date", func(t *testing.T) {
		entry := newDraftEntry(t)
		require.NoError(t, entry.Activate())
		require.NoError(t, entry.Expire())
		assert.Equal(t, RateStateExpired, entry.State)
		require.NotNil(t, entry.ExpirationDate)
	})

	t.Run("transitions bump the version", func(t *testing.T) {
		entry := newDraftEntry(t)
		v := entry.Version
		require.NoError(t, entry.Activate())
		assert.Equal(t, v+1, entry.Version)
	})
}

func TestRateCatalogEntryIsEffectiveOn(t *testing.T) {
	effective := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiration := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	entry, err := NewRateCatalogEntry(
		storageScope(), RatePerContainer,
		decimal.NewFromInt(3), decimal.Zero,
		effective, &expiration,
	)
	require.NoError(t, err)

	assert.False(t, entry.IsEffectiveOn(effective.AddDate(0, 0, -1)))
	assert.True(t, entry.IsEffectiveOn(effective))
	assert.True(t, entry.IsEffectiveOn(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, entry.IsEffectiveOn(expiration))
	assert.False(t, entry.IsEffectiveOn(expiration.AddDate(0, 0, 1)))
}
