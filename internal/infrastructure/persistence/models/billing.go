package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillingPeriodModel is the persistence model for the BillingPeriod
// aggregate root. Lines are stored in their own table and replaced wholesale
// on recalculation.
type BillingPeriodModel struct {
	AggregateModel
	StartDate    time.Time           `gorm:"not null;index"`
	EndDate      time.Time           `gorm:"not null;index"`
	State        billing.PeriodState `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	CalculatedAt *time.Time
	ApprovedAt   *time.Time
	InvoicedAt   *time.Time
	InvoiceCount int                `gorm:"not null;default:0"`
	Lines        []BillingLineModel `gorm:"foreignKey:PeriodID;references:ID"`
}

// TableName returns the table name for GORM
func (BillingPeriodModel) TableName() string {
	return "billing_periods"
}

// ToDomain converts the persistence model to a domain BillingPeriod
func (m *BillingPeriodModel) ToDomain() *billing.BillingPeriod {
	lines := make([]billing.BillingLine, len(m.Lines))
	for i := range m.Lines {
		lines[i] = *m.Lines[i].ToDomain()
	}
	return &billing.BillingPeriod{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		State:             m.State,
		Lines:             lines,
		CalculatedAt:      m.CalculatedAt,
		ApprovedAt:        m.ApprovedAt,
		InvoicedAt:        m.InvoicedAt,
		InvoiceCount:      m.InvoiceCount,
	}
}

// FromDomain populates the persistence model from a domain BillingPeriod.
// Lines are not copied; the repository persists them separately.
func (m *BillingPeriodModel) FromDomain(p *billing.BillingPeriod) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.State = p.State
	m.CalculatedAt = p.CalculatedAt
	m.ApprovedAt = p.ApprovedAt
	m.InvoicedAt = p.InvoicedAt
	m.InvoiceCount = p.InvoiceCount
}

// BillingPeriodModelFromDomain creates a new persistence model from a domain
// BillingPeriod
func BillingPeriodModelFromDomain(p *billing.BillingPeriod) *BillingPeriodModel {
	m := &BillingPeriodModel{}
	m.FromDomain(p)
	return m
}

// BillingLineModel is the persistence model for one billing line
type BillingLineModel struct {
	BaseModel
	PeriodID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID       `gorm:"type:uuid;index"`
	Type         billing.LineType `gorm:"type:varchar(20);not null"`
	Description  string           `gorm:"type:varchar(500);not null"`
	Quantity     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Amount       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	SortOrder    int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BillingLineModel) TableName() string {
	return "billing_lines"
}

// ToDomain converts the persistence model to a domain BillingLine
func (m *BillingLineModel) ToDomain() *billing.BillingLine {
	return &billing.BillingLine{
		BaseEntity:   m.BaseModel.ToDomain(),
		PeriodID:     m.PeriodID,
		CustomerID:   m.CustomerID,
		DepartmentID: m.DepartmentID,
		Type:         m.Type,
		Description:  m.Description,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		Amount:       m.Amount,
	}
}

// BillingLineModelFromDomain creates a persistence model from a domain
// BillingLine, preserving the line's position within the period
func BillingLineModelFromDomain(l *billing.BillingLine, sortOrder int) *BillingLineModel {
	m := &BillingLineModel{
		PeriodID:     l.PeriodID,
		CustomerID:   l.CustomerID,
		DepartmentID: l.DepartmentID,
		Type:         l.Type,
		Description:  l.Description,
		Quantity:     l.Quantity,
		UnitPrice:    l.UnitPrice,
		Amount:       l.Amount,
		SortOrder:    sortOrder,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// BillingConfigModel is the persistence model for the operator-maintained
// billing configuration. At most one row is active.
type BillingConfigModel struct {
	BaseModel
	BillingDayOfMonth int             `gorm:"not null;default:1"`
	DefaultMinimumFee decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Active            bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (BillingConfigModel) TableName() string {
	return "billing_configurations"
}

// ToDomain converts the persistence model to a domain BillingConfig
func (m *BillingConfigModel) ToDomain() *billing.BillingConfig {
	return &billing.BillingConfig{
		ID:                m.ID,
		BillingDayOfMonth: m.BillingDayOfMonth,
		DefaultMinimumFee: m.DefaultMinimumFee,
		Active:            m.Active,
	}
}
