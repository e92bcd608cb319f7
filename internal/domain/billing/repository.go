package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
)

// PeriodFilter defines filtering options for billing period queries
type PeriodFilter struct {
	shared.Filter
	State    *PeriodState
	FromDate *time.Time
	ToDate   *time.Time
}

// BillingPeriodRepository defines the interface for billing period
// persistence. A period's lines are saved and deleted with the period.
type BillingPeriodRepository interface {
	// FindByID loads a period with all its lines
	FindByID(ctx context.Context, id uuid.UUID) (*BillingPeriod, error)

	// FindAll lists periods matching the filter, without lines
	FindAll(ctx context.Context, filter PeriodFilter) ([]BillingPeriod, error)

	// FindOverlapping returns periods whose date range overlaps [start, end]
	FindOverlapping(ctx context.Context, start, end time.Time) ([]BillingPeriod, error)

	// Save persists a period. When the period's lines changed the previous
	// line set is deleted and the new set inserted in the same transaction
	// (replace-not-merge).
	Save(ctx context.Context, period *BillingPeriod) error

	// SaveWithVersion persists the period only if the stored version still
	// matches expectedVersion, returning shared.ErrConcurrencyConflict
	// otherwise. Used to make the calculating-state claim atomic.
	SaveWithVersion(ctx context.Context, period *BillingPeriod, expectedVersion int) error
}
