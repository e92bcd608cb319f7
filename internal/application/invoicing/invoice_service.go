package invoicing

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/application/request"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/invoicing"
	"github.com/recordvault/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceService turns approved billing periods into posted invoices
type InvoiceService struct {
	periodRepo billing.BillingPeriodRepository
	profiles   billing.BillingProfileSource
	ledger     invoicing.LedgerPoster
	audit      shared.AuditLog
	logger     *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	periodRepo billing.BillingPeriodRepository,
	profiles billing.BillingProfileSource,
	ledger invoicing.LedgerPoster,
	audit shared.AuditLog,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		periodRepo: periodRepo,
		profiles:   profiles,
		ledger:     ledger,
		audit:      audit,
		logger:     logger,
	}
}

// InvoiceBatchResponse summarizes one invoicing run
type InvoiceBatchResponse struct {
	PeriodID uuid.UUID                `json:"period_id"`
	Drafts   []invoicing.InvoiceDraft `json:"drafts"`
	PostedAt []uuid.UUID              `json:"posted_ids,omitempty"`
}

// PreviewInvoices builds the invoice drafts for a period without posting
// anything. Drafts are deterministic, so a preview matches what a subsequent
// generation run will post as long as the period's lines do not change.
func (s *InvoiceService) PreviewInvoices(ctx context.Context, rc request.Context, periodID uuid.UUID) (*InvoiceBatchResponse, error) {
	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	switch period.State {
	case billing.PeriodStateReady, billing.PeriodStateApproved, billing.PeriodStateInvoiced:
	default:
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot preview invoices for a period in %s state", period.State))
	}

	drafts, err := s.buildDrafts(ctx, period)
	if err != nil {
		return nil, err
	}
	return &InvoiceBatchResponse{PeriodID: period.ID, Drafts: drafts}, nil
}

// GenerateInvoices builds the drafts for an approved period, posts them to
// the ledger, and marks the period invoiced with an optimistic version check
// so concurrent runs cannot double-post. Ledger posting is idempotent per
// (period, recipient), so a run that fails partway can be retried: already
// posted drafts are skipped and the period still transitions exactly once.
func (s *InvoiceService) GenerateInvoices(ctx context.Context, rc request.Context, periodID uuid.UUID) (*InvoiceBatchResponse, error) {
	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.buildDrafts(ctx, period)
	if err != nil {
		return nil, err
	}

	claimedVersion := period.Version
	if err := period.MarkInvoiced(len(drafts)); err != nil {
		return nil, err
	}

	posted := make([]uuid.UUID, 0, len(drafts))
	for _, draft := range drafts {
		id, err := s.ledger.PostInvoice(ctx, draft)
		if err != nil {
			s.logger.Error("invoice posting failed",
				zap.String("period_id", period.ID.String()),
				zap.String("customer_id", draft.Recipient.CustomerID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		posted = append(posted, id)
	}

	if err := s.periodRepo.SaveWithVersion(ctx, period, claimedVersion); err != nil {
		return nil, err
	}

	s.logger.Info("invoices generated",
		zap.String("period_id", period.ID.String()),
		zap.Int("invoice_count", len(posted)),
	)
	s.recordEvents(period.GetDomainEvents())
	period.ClearDomainEvents()
	return &InvoiceBatchResponse{PeriodID: period.ID, Drafts: drafts, PostedAt: posted}, nil
}

// buildDrafts groups the period's lines per customer using each customer's
// configured preference. Customers are processed in UUID order so draft
// output is stable across runs.
func (s *InvoiceService) buildDrafts(ctx context.Context, period *billing.BillingPeriod) ([]invoicing.InvoiceDraft, error) {
	customerIDs := distinctCustomers(period.Lines)

	var drafts []invoicing.InvoiceDraft
	for _, customerID := range customerIDs {
		profile, err := s.profiles.ProfileFor(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("loading billing profile for customer %s: %w", customerID, err)
		}
		strategy, err := invoicing.StrategyFor(profile.Preference)
		if err != nil {
			return nil, err
		}
		customerDrafts, err := strategy.Group(period.ID, period.LinesForCustomer(customerID), profile)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, customerDrafts...)
	}
	return drafts, nil
}

func distinctCustomers(lines []billing.BillingLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, line := range lines {
		if _, ok := seen[line.CustomerID]; !ok {
			seen[line.CustomerID] = struct{}{}
			ids = append(ids, line.CustomerID)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func (s *InvoiceService) recordEvents(events []shared.DomainEvent) {
	if s.audit != nil && len(events) > 0 {
		s.audit.Record(events)
	}
}
