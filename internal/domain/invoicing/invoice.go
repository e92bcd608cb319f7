package invoicing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLineItem is one priced row on an invoice draft
type InvoiceLineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceSection is an ordered group of line items, optionally headed and
// subtotaled (department sections on a consolidated invoice)
type InvoiceSection struct {
	Header       string            `json:"header,omitempty"`
	Items        []InvoiceLineItem `json:"items"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	ShowSubtotal bool              `json:"show_subtotal"`
}

// Recipient identifies who an invoice is billed to: always a customer, and
// optionally a specific department's billing contact
type Recipient struct {
	CustomerID     uuid.UUID  `json:"customer_id"`
	CustomerName   string     `json:"customer_name"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
	DepartmentName string     `json:"department_name,omitempty"`
	BillingContact string     `json:"billing_contact,omitempty"`
	PONumber       string     `json:"po_number,omitempty"`
}

// InvoiceDraft is a fully grouped invoice ready for posting. Grouping is
// this package's whole responsibility; the ledger collaborator does the
// bookkeeping.
type InvoiceDraft struct {
	PeriodID  uuid.UUID        `json:"period_id"`
	Recipient Recipient        `json:"recipient"`
	Sections  []InvoiceSection `json:"sections"`
	Total     decimal.Decimal  `json:"total"`
}

// LedgerPoster is the write port onto the external ledger/invoicing system
type LedgerPoster interface {
	// PostInvoice posts one draft and returns the posted invoice identifier.
	// Implementations must be idempotent per (period, recipient): posting the
	// same draft again returns the original identifier without creating a
	// second invoice.
	PostInvoice(ctx context.Context, draft InvoiceDraft) (uuid.UUID, error)
}
