package rates

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdjustmentMethod describes how a negotiated rate is derived from a base rate
type AdjustmentMethod string

const (
	AdjustPercentageDiscount AdjustmentMethod = "PERCENTAGE_DISCOUNT"
	AdjustPercentageMarkup   AdjustmentMethod = "PERCENTAGE_MARKUP"
	AdjustFixedDiscount      AdjustmentMethod = "FIXED_DISCOUNT"
	AdjustFixedMarkup        AdjustmentMethod = "FIXED_MARKUP"
	AdjustFixedOverride      AdjustmentMethod = "FIXED_OVERRIDE"
)

// IsValid checks if the method is a known AdjustmentMethod
func (m AdjustmentMethod) IsValid() bool {
	switch m {
	case AdjustPercentageDiscount, AdjustPercentageMarkup,
		AdjustFixedDiscount, AdjustFixedMarkup, AdjustFixedOverride:
		return true
	}
	return false
}

// IsPercentage returns true for the percentage-based methods
func (m AdjustmentMethod) IsPercentage() bool {
	return m == AdjustPercentageDiscount || m == AdjustPercentageMarkup
}

var oneHundred = decimal.NewFromInt(100)

// ValidateAdjustment checks an adjustment value against its method.
// Percentage methods require 0 <= value <= 100, fixed methods value >= 0.
func ValidateAdjustment(method AdjustmentMethod, value decimal.Decimal) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_ADJUSTMENT_METHOD", fmt.Sprintf("Unknown adjustment method %q", method))
	}
	if method.IsPercentage() {
		if value.IsNegative() || value.GreaterThan(oneHundred) {
			return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Percentage adjustment must be between 0 and 100, got %s", value))
		}
		return nil
	}
	if value.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Fixed adjustment cannot be negative, got %s", value))
	}
	return nil
}

// ComputeNegotiatedRate derives the customer rate from a base rate, an
// adjustment method and an adjustment value. A fixed discount larger than
// the base rate floors at zero rather than going negative.
func ComputeNegotiatedRate(base decimal.Decimal, method AdjustmentMethod, value decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateAdjustment(method, value); err != nil {
		return decimal.Zero, err
	}
	switch method {
	case AdjustPercentageDiscount:
		return base.Mul(oneHundred.Sub(value)).Div(oneHundred), nil
	case AdjustPercentageMarkup:
		return base.Mul(oneHundred.Add(value)).Div(oneHundred), nil
	case AdjustFixedDiscount:
		rate := base.Sub(value)
		if rate.IsNegative() {
			return decimal.Zero, nil
		}
		return rate, nil
	case AdjustFixedMarkup:
		return base.Add(value), nil
	case AdjustFixedOverride:
		return value, nil
	}
	return decimal.Zero, shared.NewDomainError("INVALID_ADJUSTMENT_METHOD", fmt.Sprintf("Unknown adjustment method %q", method))
}

// CustomerRateOverride is a negotiated, customer-specific adjustment to a
// catalog scope. The negotiated rate is always recomputed from the base rate
// and the adjustment; it is never stored as an independent figure.
type CustomerRateOverride struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID        `json:"customer_id"`
	Scope           RateScope        `json:"scope"`
	Method          AdjustmentMethod `json:"method"`
	AdjustmentValue decimal.Decimal  `json:"adjustment_value"`
	EffectiveDate   time.Time        `json:"effective_date"`
	ExpirationDate  *time.Time       `json:"expiration_date,omitempty"`
	State           RateState        `json:"state"`
	ApprovedBy      *uuid.UUID       `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	Remark          string           `json:"remark,omitempty"`
}

// NewCustomerRateOverride creates a draft override for a customer and scope
func NewCustomerRateOverride(
	customerID uuid.UUID,
	scope RateScope,
	method AdjustmentMethod,
	value decimal.Decimal,
	effectiveDate time.Time,
	expirationDate *time.Time,
) (*CustomerRateOverride, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !scope.Category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown service category %q", scope.Category))
	}
	if scope.Type == "" {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Service type cannot be empty")
	}
	if err := ValidateAdjustment(method, value); err != nil {
		return nil, err
	}
	if expirationDate != nil && expirationDate.Before(effectiveDate) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Expiration date cannot precede effective date")
	}

	o := &CustomerRateOverride{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Scope:             scope,
		Method:            method,
		AdjustmentValue:   value,
		EffectiveDate:     effectiveDate,
		ExpirationDate:    expirationDate,
		State:             RateStateDraft,
	}
	o.AddDomainEvent(NewRateOverrideCreatedEvent(o))
	return o, nil
}

// NegotiatedRate recomputes the customer rate from the given base rate
func (o *CustomerRateOverride) NegotiatedRate(base decimal.Decimal) (decimal.Decimal, error) {
	return ComputeNegotiatedRate(base, o.Method, o.AdjustmentValue)
}

// Approve records the approval marker. Approval is required before a draft
// override can be activated.
func (o *CustomerRateOverride) Approve(approver uuid.UUID) error {
	if o.State != RateStateDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve override in %s state", o.State))
	}
	if approver == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver cannot be empty")
	}
	if o.ApprovedBy != nil {
		return shared.NewDomainError("ALREADY_APPROVED", "Override has already been approved")
	}
	now := time.Now()
	o.ApprovedBy = &approver
	o.ApprovedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewRateOverrideApprovedEvent(o))
	return nil
}

// Activate transitions an approved draft to active. The caller supersedes
// any previously active override for the same (customer, scope) in the same
// transaction.
func (o *CustomerRateOverride) Activate() error {
	if o.State != RateStateDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot activate override in %s state, only drafts can be activated", o.State))
	}
	if o.ApprovedBy == nil {
		return shared.NewDomainError("NOT_APPROVED", "Override must be approved before activation")
	}
	o.State = RateStateActive
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewRateOverrideActivatedEvent(o))
	return nil
}

// Supersede marks a previously active override as replaced
func (o *CustomerRateOverride) Supersede() error {
	if o.State != RateStateActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot supersede override in %s state", o.State))
	}
	o.State = RateStateSuperseded
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewRateOverrideSupersededEvent(o))
	return nil
}

// Expire retires an active override without replacement
func (o *CustomerRateOverride) Expire() error {
	if o.State != RateStateActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire override in %s state", o.State))
	}
	now := time.Now()
	o.State = RateStateExpired
	if o.ExpirationDate == nil {
		o.ExpirationDate = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewRateOverrideExpiredEvent(o))
	return nil
}

// IsEffectiveOn reports whether the override's date window covers the date
func (o *CustomerRateOverride) IsEffectiveOn(asOf time.Time) bool {
	if asOf.Before(o.EffectiveDate) {
		return false
	}
	if o.ExpirationDate != nil && asOf.After(*o.ExpirationDate) {
		return false
	}
	return true
}
