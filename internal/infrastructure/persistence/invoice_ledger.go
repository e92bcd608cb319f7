package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/invoicing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceDocNamespace seeds the deterministic document IDs. One (period,
// recipient) pair always maps to the same ID, which is what makes posting
// idempotent across retries.
var invoiceDocNamespace = uuid.MustParse("9c1f2b74-55e0-4a83-b1d0-3f8a4f1c6e27")

// GormInvoiceLedger implements the LedgerPoster write port by storing posted
// invoices as immutable documents
type GormInvoiceLedger struct {
	db *gorm.DB
}

// NewGormInvoiceLedger creates a new GormInvoiceLedger
func NewGormInvoiceLedger(db *gorm.DB) *GormInvoiceLedger {
	return &GormInvoiceLedger{db: db}
}

func invoiceDocumentID(draft invoicing.InvoiceDraft) uuid.UUID {
	key := make([]byte, 0, 48)
	key = append(key, draft.PeriodID[:]...)
	key = append(key, draft.Recipient.CustomerID[:]...)
	if draft.Recipient.DepartmentID != nil {
		key = append(key, draft.Recipient.DepartmentID[:]...)
	}
	return uuid.NewSHA1(invoiceDocNamespace, key)
}

// PostInvoice stores one invoice draft and returns the document ID. The ID
// is derived from (period, recipient), and an existing document with that ID
// is left untouched, so re-running a partially failed generation never posts
// the same invoice twice.
func (r *GormInvoiceLedger) PostInvoice(ctx context.Context, draft invoicing.InvoiceDraft) (uuid.UUID, error) {
	sections, err := json.Marshal(draft.Sections)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding invoice sections: %w", err)
	}

	model := models.InvoiceDocumentModel{
		PeriodID:       draft.PeriodID,
		CustomerID:     draft.Recipient.CustomerID,
		CustomerName:   draft.Recipient.CustomerName,
		DepartmentID:   draft.Recipient.DepartmentID,
		DepartmentName: draft.Recipient.DepartmentName,
		BillingContact: draft.Recipient.BillingContact,
		PONumber:       draft.Recipient.PONumber,
		Sections:       sections,
		Total:          draft.Total,
	}
	model.FromDomainBaseEntity(shared.NewBaseEntity())
	model.ID = invoiceDocumentID(draft)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&model).Error; err != nil {
		return uuid.Nil, err
	}
	return model.ID, nil
}

// DocumentsForPeriod returns the posted invoice documents for a period
func (r *GormInvoiceLedger) DocumentsForPeriod(ctx context.Context, periodID uuid.UUID) ([]models.InvoiceDocumentModel, error) {
	var docs []models.InvoiceDocumentModel
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("customer_name ASC, department_name ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
