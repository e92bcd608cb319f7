package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDocumentModel is a posted invoice in the internal ledger. The
// grouped sections are stored as a JSON snapshot; the document is the record
// of what was billed, not a live view of period lines.
type InvoiceDocumentModel struct {
	BaseModel
	PeriodID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName   string          `gorm:"type:varchar(200);not null"`
	DepartmentID   *uuid.UUID      `gorm:"type:uuid"`
	DepartmentName string          `gorm:"type:varchar(200)"`
	BillingContact string          `gorm:"type:varchar(200)"`
	PONumber       string          `gorm:"type:varchar(50)"`
	Sections       []byte          `gorm:"type:jsonb;not null"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceDocumentModel) TableName() string {
	return "invoice_documents"
}
