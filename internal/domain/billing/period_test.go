package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeriod(t *testing.T) *BillingPeriod {
	t.Helper()
	p, err := NewBillingPeriod(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return p
}

func testLine(t *testing.T, p *BillingPeriod, amount float64) BillingLine {
	t.Helper()
	line, err := NewBillingLine(
		p.ID, uuid.New(), nil,
		LineTypeStorage, "standard container storage",
		decimal.NewFromInt(1), decimal.NewFromFloat(amount),
	)
	require.NoError(t, err)
	return *line
}

func TestNewBillingPeriod(t *testing.T) {
	t.Run("creates a draft period", func(t *testing.T) {
		p := newPeriod(t)
		assert.Equal(t, PeriodStateDraft, p.State)
		assert.Empty(t, p.Lines)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("fails when end precedes start", func(t *testing.T) {
		_, err := NewBillingPeriod(
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		)
		assert.Error(t, err)
	})
}

func TestBillingPeriodCalculationLifecycle(t *testing.T) {
	t.Run("full happy path", func(t *testing.T) {
		p := newPeriod(t)

		require.NoError(t, p.BeginCalculation())
		assert.Equal(t, PeriodStateCalculating, p.State)

		lines := []BillingLine{testLine(t, p, 112.50)}
		require.NoError(t, p.CompleteCalculation(lines))
		assert.Equal(t, PeriodStateReady, p.State)
		assert.NotNil(t, p.CalculatedAt)

		require.NoError(t, p.Approve())
		assert.Equal(t, PeriodStateApproved, p.State)

		require.NoError(t, p.MarkInvoiced(2))
		assert.Equal(t, PeriodStateInvoiced, p.State)
		assert.Equal(t, 2, p.InvoiceCount)

		require.NoError(t, p.Close())
		assert.Equal(t, PeriodStateClosed, p.State)
	})

	t.Run("calculating acts as a mutex", func(t *testing.T) {
		p := newPeriod(t)
		require.NoError(t, p.BeginCalculation())

		err := p.BeginCalculation()
		assert.ErrorIs(t, err, shared.ErrCalculationRunning)
	})

	t.Run("recalculation discards existing lines", func(t *testing.T) {
		p := newPeriod(t)
		require.NoError(t, p.BeginCalculation())
		require.NoError(t, p.CompleteCalculation([]BillingLine{testLine(t, p, 50)}))
		require.Len(t, p.Lines, 1)

		require.NoError(t, p.BeginCalculation())
		assert.Empty(t, p.Lines)
		assert.Nil(t, p.CalculatedAt)
	})

	t.Run("invoiced and closed periods cannot be recalculated", func(t *testing.T) {
		p := newPeriod(t)
		require.NoError(t, p.BeginCalculation())
		require.NoError(t, p.CompleteCalculation(nil))
		require.NoError(t, p.Approve())
		require.NoError(t, p.MarkInvoiced(1))

		assert.Error(t, p.BeginCalculation())
		require.NoError(t, p.Close())
		assert.Error(t, p.BeginCalculation())
	})

	t.Run("approve requires ready state", func(t *testing.T) {
		p := newPeriod(t)
		assert.Error(t, p.Approve())
	})

	t.Run("invoicing requires approved state", func(t *testing.T) {
		p := newPeriod(t)
		require.NoError(t, p.BeginCalculation())
		require.NoError(t, p.CompleteCalculation(nil))
		assert.Error(t, p.MarkInvoiced(1))
	})

	t.Run("reset returns a stuck calculating period to draft", func(t *testing.T) {
		p := newPeriod(t)
		require.NoError(t, p.BeginCalculation())
		require.NoError(t, p.ResetToDraft())
		assert.Equal(t, PeriodStateDraft, p.State)
		assert.Empty(t, p.Lines)
	})

	t.Run("reset refuses invoiced periods", func(t *testing.T) {
		p := newPeriod(t)
		require.NoError(t, p.BeginCalculation())
		require.NoError(t, p.CompleteCalculation(nil))
		require.NoError(t, p.Approve())
		require.NoError(t, p.MarkInvoiced(0))
		assert.Error(t, p.ResetToDraft())
	})
}

func TestBillingPeriodTotals(t *testing.T) {
	p := newPeriod(t)
	customerA := uuid.New()
	customerB := uuid.New()

	lineA, err := NewBillingLine(p.ID, customerA, nil, LineTypeStorage, "storage", decimal.NewFromInt(10), decimal.NewFromFloat(2.50))
	require.NoError(t, err)
	lineB, err := NewAdjustmentLine(p.ID, customerB, nil, "minimum fee adjustment", decimal.NewFromFloat(20))
	require.NoError(t, err)
	p.Lines = []BillingLine{*lineA, *lineB}

	assert.True(t, p.TotalAmount().Equal(decimal.NewFromFloat(45)))
	assert.Len(t, p.LinesForCustomer(customerA), 1)
	assert.Len(t, p.LinesForCustomer(customerB), 1)
	assert.Empty(t, p.LinesForCustomer(uuid.New()))
}

func TestBillingPeriodContains(t *testing.T) {
	p := newPeriod(t)
	assert.True(t, p.Contains(p.StartDate))
	assert.True(t, p.Contains(p.EndDate))
	assert.False(t, p.Contains(p.StartDate.AddDate(0, 0, -1)))
	assert.False(t, p.Contains(p.EndDate.AddDate(0, 0, 1)))
}
