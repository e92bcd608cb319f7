package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("adds same-currency amounts", func(t *testing.T) {
		a := NewMoneyUSDFromFloat(10.25)
		b := NewMoneyUSDFromFloat(4.75)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(15)))
	})

	t.Run("fails adding mismatched currencies", func(t *testing.T) {
		a := NewMoneyUSDFromFloat(10)
		b, err := NewMoney(decimal.NewFromInt(10), EUR)
		require.NoError(t, err)
		_, err = a.Add(b)
		assert.Error(t, err)
	})

	t.Run("subtract can go negative", func(t *testing.T) {
		a := NewMoneyUSDFromFloat(5)
		b := NewMoneyUSDFromFloat(8)
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
	})

	t.Run("multiply scales the amount", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(2.50).MultiplyByInt(45)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(112.50)))
	})
}

func TestMoneyAllocateByWeight(t *testing.T) {
	t.Run("splits proportionally to weights", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(100)
		parts, err := m.AllocateByWeight([]decimal.Decimal{
			decimal.NewFromInt(75),
			decimal.NewFromInt(25),
		})
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.True(t, parts[0].Amount().Equal(decimal.NewFromInt(75)))
		assert.True(t, parts[1].Amount().Equal(decimal.NewFromInt(25)))
	})

	t.Run("last part absorbs the rounding remainder", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(10)
		parts, err := m.AllocateByWeight([]decimal.Decimal{
			decimal.NewFromInt(1),
			decimal.NewFromInt(1),
			decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		require.Len(t, parts, 3)

		total := decimal.Zero
		for _, p := range parts {
			total = total.Add(p.Amount())
		}
		assert.True(t, total.Equal(m.Amount()), "parts must sum exactly to the original amount")
	})

	t.Run("fails with no weights", func(t *testing.T) {
		_, err := NewMoneyUSDFromFloat(10).AllocateByWeight(nil)
		assert.Error(t, err)
	})

	t.Run("fails with negative weight", func(t *testing.T) {
		_, err := NewMoneyUSDFromFloat(10).AllocateByWeight([]decimal.Decimal{
			decimal.NewFromInt(5),
			decimal.NewFromInt(-1),
		})
		assert.Error(t, err)
	})

	t.Run("fails with zero total weight", func(t *testing.T) {
		_, err := NewMoneyUSDFromFloat(10).AllocateByWeight([]decimal.Decimal{
			decimal.Zero,
			decimal.Zero,
		})
		assert.Error(t, err)
	})
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyUSDFromFloat(99.99)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}
