package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineType classifies a billing line
type LineType string

const (
	LineTypeStorage    LineType = "STORAGE"
	LineTypeService    LineType = "SERVICE"
	LineTypeProduct    LineType = "PRODUCT"
	LineTypeAdjustment LineType = "ADJUSTMENT"
)

// IsValid checks if the line type is a valid LineType
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeStorage, LineTypeService, LineTypeProduct, LineTypeAdjustment:
		return true
	}
	return false
}

// sortRank orders line types within a customer/department group
func (t LineType) sortRank() int {
	switch t {
	case LineTypeStorage:
		return 0
	case LineTypeService:
		return 1
	case LineTypeProduct:
		return 2
	case LineTypeAdjustment:
		return 3
	}
	return 4
}

// BillingLine is one priced item within a billing period. Lines are fully
// owned by their period: recalculation discards and regenerates them, so a
// line never outlives the calculation that produced it.
type BillingLine struct {
	shared.BaseEntity
	PeriodID     uuid.UUID       `json:"period_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	DepartmentID *uuid.UUID      `json:"department_id,omitempty"`
	Type         LineType        `json:"type"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewBillingLine creates a priced line whose amount is quantity x unit price
func NewBillingLine(
	periodID, customerID uuid.UUID,
	departmentID *uuid.UUID,
	lineType LineType,
	description string,
	quantity, unitPrice decimal.Decimal,
) (*BillingLine, error) {
	if !lineType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LINE_TYPE", fmt.Sprintf("Unknown line type %q", lineType))
	}
	if lineType == LineTypeAdjustment {
		return nil, shared.NewDomainError("INVALID_LINE_TYPE", "Adjustment lines carry an explicit amount, use NewAdjustmentLine")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}
	return &BillingLine{
		BaseEntity:   shared.NewBaseEntity(),
		PeriodID:     periodID,
		CustomerID:   customerID,
		DepartmentID: departmentID,
		Type:         lineType,
		Description:  description,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Amount:       quantity.Mul(unitPrice),
	}, nil
}

// NewAdjustmentLine creates an adjustment line carrying an explicit signed
// amount, e.g. a minimum-fee shortfall
func NewAdjustmentLine(
	periodID, customerID uuid.UUID,
	departmentID *uuid.UUID,
	description string,
	amount decimal.Decimal,
) (*BillingLine, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &BillingLine{
		BaseEntity:   shared.NewBaseEntity(),
		PeriodID:     periodID,
		CustomerID:   customerID,
		DepartmentID: departmentID,
		Type:         LineTypeAdjustment,
		Description:  description,
		Quantity:     decimal.NewFromInt(1),
		UnitPrice:    amount,
		Amount:       amount,
	}, nil
}

// AmountMoney returns the line amount as Money
func (l *BillingLine) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(l.Amount)
}
