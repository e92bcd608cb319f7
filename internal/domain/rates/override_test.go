package rates

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNegotiatedRate(t *testing.T) {
	base := decimal.NewFromFloat(10.00)

	tests := []struct {
		name   string
		method AdjustmentMethod
		value  decimal.Decimal
		want   decimal.Decimal
	}{
		{"percentage discount", AdjustPercentageDiscount, decimal.NewFromInt(20), decimal.NewFromFloat(8.00)},
		{"percentage markup", AdjustPercentageMarkup, decimal.NewFromInt(15), decimal.NewFromFloat(11.50)},
		{"fixed discount", AdjustFixedDiscount, decimal.NewFromFloat(2.50), decimal.NewFromFloat(7.50)},
		{"fixed discount floors at zero", AdjustFixedDiscount, decimal.NewFromInt(15), decimal.Zero},
		{"fixed markup", AdjustFixedMarkup, decimal.NewFromFloat(1.25), decimal.NewFromFloat(11.25)},
		{"fixed override replaces the base", AdjustFixedOverride, decimal.NewFromFloat(6.75), decimal.NewFromFloat(6.75)},
		{"zero percentage discount keeps the base", AdjustPercentageDiscount, decimal.Zero, base},
		{"full percentage discount reaches zero", AdjustPercentageDiscount, decimal.NewFromInt(100), decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeNegotiatedRate(base, tt.method, tt.value)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}

	t.Run("fails with unknown method", func(t *testing.T) {
		_, err := ComputeNegotiatedRate(base, AdjustmentMethod("HAGGLE"), decimal.NewFromInt(5))
		assert.Error(t, err)
	})

	t.Run("fails with percentage above 100", func(t *testing.T) {
		_, err := ComputeNegotiatedRate(base, AdjustPercentageDiscount, decimal.NewFromInt(101))
		assert.Error(t, err)
	})

	t.Run("fails with negative fixed value", func(t *testing.T) {
		_, err := ComputeNegotiatedRate(base, AdjustFixedMarkup, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func newDraftOverride(t *testing.T) *CustomerRateOverride {
	t.Helper()
	o, err := NewCustomerRateOverride(
		uuid.New(),
		storageScope(),
		AdjustPercentageDiscount,
		decimal.NewFromInt(10),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		nil,
	)
	require.NoError(t, err)
	return o
}

func TestNewCustomerRateOverride(t *testing.T) {
	t.Run("creates draft override", func(t *testing.T) {
		o := newDraftOverride(t)
		assert.Equal(t, RateStateDraft, o.State)
		assert.Nil(t, o.ApprovedBy)
		assert.Len(t, o.GetDomainEvents(), 1)
	})

	t.Run("fails with nil customer", func(t *testing.T) {
		_, err := NewCustomerRateOverride(
			uuid.Nil, storageScope(),
			AdjustPercentageDiscount, decimal.NewFromInt(10),
			time.Now(), nil,
		)
		assert.Error(t, err)
	})

	t.Run("fails with invalid adjustment", func(t *testing.T) {
		_, err := NewCustomerRateOverride(
			uuid.New(), storageScope(),
			AdjustPercentageDiscount, decimal.NewFromInt(150),
			time.Now(), nil,
		)
		assert.Error(t, err)
	})
}

func TestCustomerRateOverrideApproval(t *testing.T) {
	t.Run("approve records approver and time", func(t *testing.T) {
		o := newDraftOverride(t)
		approver := uuid.New()
		require.NoError(t, o.Approve(approver))
		require.NotNil(t, o.ApprovedBy)
		assert.Equal(t, approver, *o.ApprovedBy)
		assert.NotNil(t, o.ApprovedAt)
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		o := newDraftOverride(t)
		require.NoError(t, o.Approve(uuid.New()))
		assert.Error(t, o.Approve(uuid.New()))
	})

	t.Run("cannot approve with nil approver", func(t *testing.T) {
		o := newDraftOverride(t)
		assert.Error(t, o.Approve(uuid.Nil))
	})

	t.Run("activation requires approval", func(t *testing.T) {
		o := newDraftOverride(t)
		err := o.Activate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "approved")

		require.NoError(t, o.Approve(uuid.New()))
		require.NoError(t, o.Activate())
		assert.Equal(t, RateStateActive, o.State)
	})

	t.Run("active override can be superseded", func(t *testing.T) {
		o := newDraftOverride(t)
		require.NoError(t, o.Approve(uuid.New()))
		require.NoError(t, o.Activate())
		require.NoError(t, o.Supersede())
		assert.Equal(t, RateStateSuperseded, o.State)
	})
}

func TestCustomerRateOverrideNegotiatedRate(t *testing.T) {
	o := newDraftOverride(t)
	rate, err := o.NegotiatedRate(decimal.NewFromFloat(3.00))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(2.70)))
}
