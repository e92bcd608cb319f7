package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
)

// ContainerModel is the billing view of one stored container. Destroyed
// containers stay in the table for chain-of-custody but are never billed.
type ContainerModel struct {
	BaseModel
	CustomerID     uuid.UUID              `gorm:"type:uuid;not null;index:idx_container_customer"`
	DepartmentID   *uuid.UUID             `gorm:"type:uuid;index"`
	Barcode        string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Classification billing.Classification `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	Destroyed      bool                   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ContainerModel) TableName() string {
	return "containers"
}

// ServiceTicketModel is one completed unit of work from the operations side,
// already costed. Only completed tickets are billable.
type ServiceTicketModel struct {
	BaseModel
	CustomerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	DepartmentID   *uuid.UUID            `gorm:"type:uuid"`
	Category       rates.ServiceCategory `gorm:"type:varchar(20);not null"`
	Type           rates.ServiceType     `gorm:"type:varchar(40);not null"`
	Description    string                `gorm:"type:varchar(500);not null"`
	Quantity       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ActualCost     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CompletionDate time.Time             `gorm:"not null;index"`

	// Quantity break terms, set only when the ticket carries them
	HasBreakTerms    bool            `gorm:"not null;default:false"`
	BreakBaseRate    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BreakRate        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BreakTarget      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountRate     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdditionalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ServiceTicketModel) TableName() string {
	return "service_tickets"
}

// ToDomain converts the persistence model to a domain CompletedServiceTicket
func (m *ServiceTicketModel) ToDomain() billing.CompletedServiceTicket {
	ticket := billing.CompletedServiceTicket{
		ID:             m.ID,
		CustomerID:     m.CustomerID,
		DepartmentID:   m.DepartmentID,
		Category:       m.Category,
		Type:           m.Type,
		Description:    m.Description,
		Quantity:       m.Quantity,
		ActualCost:     m.ActualCost,
		CompletionDate: m.CompletionDate,
	}
	if m.HasBreakTerms {
		ticket.Terms = &billing.QuantityBreakTerms{
			BaseRate:         m.BreakBaseRate,
			BreakRate:        m.BreakRate,
			BreakTarget:      m.BreakTarget,
			DiscountRate:     m.DiscountRate,
			AdditionalAmount: m.AdditionalAmount,
		}
	}
	return ticket
}
