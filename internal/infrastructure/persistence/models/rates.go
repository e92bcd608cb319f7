package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
)

// RateCatalogEntryModel is the persistence model for the RateCatalogEntry
// aggregate root. One scope holds at most one ACTIVE row; history survives
// as SUPERSEDED and EXPIRED rows.
type RateCatalogEntryModel struct {
	AggregateModel
	Category       rates.ServiceCategory `gorm:"type:varchar(20);not null;index:idx_catalog_scope,priority:1"`
	Type           rates.ServiceType    `gorm:"type:varchar(40);not null;index:idx_catalog_scope,priority:2"`
	Structure      rates.RateStructure  `gorm:"type:varchar(20);not null"`
	BaseRate       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	MinimumCharge  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	EffectiveDate  time.Time            `gorm:"not null;index"`
	ExpirationDate *time.Time
	State          rates.RateState `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Description    string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (RateCatalogEntryModel) TableName() string {
	return "rate_catalog_entries"
}

// ToDomain converts the persistence model to a domain RateCatalogEntry
func (m *RateCatalogEntryModel) ToDomain() *rates.RateCatalogEntry {
	return &rates.RateCatalogEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Scope: rates.RateScope{
			Category: m.Category,
			Type:     m.Type,
		},
		Structure:      m.Structure,
		BaseRate:       m.BaseRate,
		MinimumCharge:  m.MinimumCharge,
		EffectiveDate:  m.EffectiveDate,
		ExpirationDate: m.ExpirationDate,
		State:          m.State,
		Description:    m.Description,
	}
}

// FromDomain populates the persistence model from a domain RateCatalogEntry
func (m *RateCatalogEntryModel) FromDomain(e *rates.RateCatalogEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Category = e.Scope.Category
	m.Type = e.Scope.Type
	m.Structure = e.Structure
	m.BaseRate = e.BaseRate
	m.MinimumCharge = e.MinimumCharge
	m.EffectiveDate = e.EffectiveDate
	m.ExpirationDate = e.ExpirationDate
	m.State = e.State
	m.Description = e.Description
}

// RateCatalogEntryModelFromDomain creates a new persistence model from a
// domain RateCatalogEntry
func RateCatalogEntryModelFromDomain(e *rates.RateCatalogEntry) *RateCatalogEntryModel {
	m := &RateCatalogEntryModel{}
	m.FromDomain(e)
	return m
}

// CustomerRateOverrideModel is the persistence model for the
// CustomerRateOverride aggregate root
type CustomerRateOverrideModel struct {
	AggregateModel
	CustomerID      uuid.UUID             `gorm:"type:uuid;not null;index:idx_override_scope,priority:1"`
	Category        rates.ServiceCategory `gorm:"type:varchar(20);not null;index:idx_override_scope,priority:2"`
	Type            rates.ServiceType     `gorm:"type:varchar(40);not null;index:idx_override_scope,priority:3"`
	Method          rates.AdjustmentMethod `gorm:"type:varchar(30);not null"`
	AdjustmentValue decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	EffectiveDate   time.Time              `gorm:"not null;index"`
	ExpirationDate  *time.Time
	State           rates.RateState `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	Remark          string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CustomerRateOverrideModel) TableName() string {
	return "customer_rate_overrides"
}

// ToDomain converts the persistence model to a domain CustomerRateOverride
func (m *CustomerRateOverrideModel) ToDomain() *rates.CustomerRateOverride {
	return &rates.CustomerRateOverride{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		Scope: rates.RateScope{
			Category: m.Category,
			Type:     m.Type,
		},
		Method:          m.Method,
		AdjustmentValue: m.AdjustmentValue,
		EffectiveDate:   m.EffectiveDate,
		ExpirationDate:  m.ExpirationDate,
		State:           m.State,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		Remark:          m.Remark,
	}
}

// FromDomain populates the persistence model from a domain CustomerRateOverride
func (m *CustomerRateOverrideModel) FromDomain(o *rates.CustomerRateOverride) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.CustomerID = o.CustomerID
	m.Category = o.Scope.Category
	m.Type = o.Scope.Type
	m.Method = o.Method
	m.AdjustmentValue = o.AdjustmentValue
	m.EffectiveDate = o.EffectiveDate
	m.ExpirationDate = o.ExpirationDate
	m.State = o.State
	m.ApprovedBy = o.ApprovedBy
	m.ApprovedAt = o.ApprovedAt
	m.Remark = o.Remark
}

// CustomerRateOverrideModelFromDomain creates a new persistence model from a
// domain CustomerRateOverride
func CustomerRateOverrideModelFromDomain(o *rates.CustomerRateOverride) *CustomerRateOverrideModel {
	m := &CustomerRateOverrideModel{}
	m.FromDomain(o)
	return m
}
