package models

import (
	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// CustomerProfileModel holds the billing-relevant slice of customer data:
// identity, invoicing preference, and minimum-fee terms
type CustomerProfileModel struct {
	BaseModel
	Name              string                    `gorm:"type:varchar(200);not null"`
	Preference        billing.BillingPreference `gorm:"type:varchar(20);not null;default:'CONSOLIDATED'"`
	MinimumMonthlyFee decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	MinimumFeePolicy  billing.MinimumFeePolicy  `gorm:"type:varchar(20);not null;default:'PROPORTIONAL'"`
	Departments       []DepartmentModel         `gorm:"foreignKey:CustomerID;references:ID"`
	ProductCharges    []ProductChargeModel      `gorm:"foreignKey:CustomerID;references:ID"`
}

// TableName returns the table name for GORM
func (CustomerProfileModel) TableName() string {
	return "customer_profiles"
}

// ToDomain converts the persistence model to a domain CustomerBillingProfile
func (m *CustomerProfileModel) ToDomain() *billing.CustomerBillingProfile {
	departments := make([]billing.DepartmentProfile, len(m.Departments))
	for i, d := range m.Departments {
		departments[i] = billing.DepartmentProfile{
			ID:             d.ID,
			Name:           d.Name,
			BillingContact: d.BillingContact,
			PONumber:       d.PONumber,
		}
	}
	charges := make([]billing.ProductCharge, len(m.ProductCharges))
	for i, c := range m.ProductCharges {
		charges[i] = billing.ProductCharge{
			Description: c.Description,
			Quantity:    c.Quantity,
			UnitPrice:   c.UnitPrice,
		}
	}
	return &billing.CustomerBillingProfile{
		CustomerID:        m.ID,
		CustomerName:      m.Name,
		Preference:        m.Preference,
		MinimumMonthlyFee: m.MinimumMonthlyFee,
		MinimumFeePolicy:  m.MinimumFeePolicy,
		Departments:       departments,
		ProductCharges:    charges,
	}
}

// DepartmentModel is one department within a customer
type DepartmentModel struct {
	BaseModel
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(200);not null"`
	BillingContact string    `gorm:"type:varchar(200)"`
	PONumber       string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (DepartmentModel) TableName() string {
	return "departments"
}

// ProductChargeModel is a recurring product charge on a customer profile
type ProductChargeModel struct {
	BaseModel
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ProductChargeModel) TableName() string {
	return "product_charges"
}
