package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/application/request"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingService orchestrates the billing period lifecycle and calculation runs
type BillingService struct {
	periodRepo billing.BillingPeriodRepository
	engine     *billing.Engine
	config     billing.BillingConfigSource
	audit      shared.AuditLog
	logger     *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(
	periodRepo billing.BillingPeriodRepository,
	engine *billing.Engine,
	config billing.BillingConfigSource,
	audit shared.AuditLog,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		periodRepo: periodRepo,
		engine:     engine,
		config:     config,
		audit:      audit,
		logger:     logger,
	}
}

// ===================== Requests and responses =====================

// CreatePeriodRequest is the input for opening a billing period
type CreatePeriodRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// BillingLineResponse represents one billing line in API responses
type BillingLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	DepartmentID *uuid.UUID      `json:"department_id,omitempty"`
	Type         string          `json:"type"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// PeriodResponse represents a billing period in API responses
type PeriodResponse struct {
	ID           uuid.UUID             `json:"id"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      time.Time             `json:"end_date"`
	State        string                `json:"state"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	LineCount    int                   `json:"line_count"`
	InvoiceCount int                   `json:"invoice_count"`
	CalculatedAt *time.Time            `json:"calculated_at,omitempty"`
	ApprovedAt   *time.Time            `json:"approved_at,omitempty"`
	InvoicedAt   *time.Time            `json:"invoiced_at,omitempty"`
	Lines        []BillingLineResponse `json:"lines,omitempty"`
	Version      int                   `json:"version"`
}

func toPeriodResponse(p *billing.BillingPeriod, includeLines bool) *PeriodResponse {
	resp := &PeriodResponse{
		ID:           p.ID,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		State:        string(p.State),
		TotalAmount:  p.TotalAmount(),
		LineCount:    len(p.Lines),
		InvoiceCount: p.InvoiceCount,
		CalculatedAt: p.CalculatedAt,
		ApprovedAt:   p.ApprovedAt,
		InvoicedAt:   p.InvoicedAt,
		Version:      p.Version,
	}
	if includeLines {
		resp.Lines = make([]BillingLineResponse, 0, len(p.Lines))
		for _, line := range p.Lines {
			resp.Lines = append(resp.Lines, BillingLineResponse{
				ID:           line.ID,
				CustomerID:   line.CustomerID,
				DepartmentID: line.DepartmentID,
				Type:         string(line.Type),
				Description:  line.Description,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				Amount:       line.Amount,
			})
		}
	}
	return resp
}

// ===================== Period lifecycle =====================

// CreatePeriod opens a draft billing period, rejecting overlaps with
// existing periods
func (s *BillingService) CreatePeriod(ctx context.Context, rc request.Context, req CreatePeriodRequest) (*PeriodResponse, error) {
	overlapping, err := s.periodRepo.FindOverlapping(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A billing period already covers part of this date range")
	}

	period, err := billing.NewBillingPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}
	s.recordEvents(period.GetDomainEvents())
	period.ClearDomainEvents()
	return toPeriodResponse(period, false), nil
}

// CalculateBilling runs the billing engine for a period. The calculating
// claim is persisted with an optimistic version check before any lines are
// generated, so concurrent runs see either the claim or a version conflict.
// A failed run leaves the period in CALCULATING; the operator resolves it
// with a reset.
func (s *BillingService) CalculateBilling(ctx context.Context, rc request.Context, periodID uuid.UUID) (*PeriodResponse, error) {
	cfg, err := s.config.ActiveConfig(ctx)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrMissingConfig
		}
		return nil, err
	}

	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	claimedVersion := period.Version
	if err := period.BeginCalculation(); err != nil {
		return nil, err
	}
	if err := s.periodRepo.SaveWithVersion(ctx, period, claimedVersion); err != nil {
		return nil, err
	}

	s.logger.Info("billing calculation started",
		zap.String("period_id", period.ID.String()),
		zap.Time("start_date", period.StartDate),
		zap.Time("end_date", period.EndDate),
	)

	lines, err := s.engine.BuildLines(ctx, period, cfg.DefaultMinimumFee)
	if err != nil {
		s.logger.Error("billing calculation failed",
			zap.String("period_id", period.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := period.CompleteCalculation(lines); err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	s.logger.Info("billing calculation completed",
		zap.String("period_id", period.ID.String()),
		zap.Int("line_count", len(period.Lines)),
		zap.String("total_amount", period.TotalAmount().String()),
	)
	s.recordEvents(period.GetDomainEvents())
	period.ClearDomainEvents()
	return toPeriodResponse(period, true), nil
}

// ApprovePeriod approves a ready period for invoicing
func (s *BillingService) ApprovePeriod(ctx context.Context, rc request.Context, periodID uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, periodID, func(p *billing.BillingPeriod) error {
		return p.Approve()
	})
}

// ClosePeriod closes an invoiced period
func (s *BillingService) ClosePeriod(ctx context.Context, rc request.Context, periodID uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, periodID, func(p *billing.BillingPeriod) error {
		return p.Close()
	})
}

// ResetPeriod returns a period to draft, discarding its lines. This is the
// operator remedy for a calculation left in CALCULATING by a failed run.
func (s *BillingService) ResetPeriod(ctx context.Context, rc request.Context, periodID uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, periodID, func(p *billing.BillingPeriod) error {
		return p.ResetToDraft()
	})
}

func (s *BillingService) transition(ctx context.Context, periodID uuid.UUID, apply func(*billing.BillingPeriod) error) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if err := apply(period); err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}
	s.recordEvents(period.GetDomainEvents())
	period.ClearDomainEvents()
	return toPeriodResponse(period, false), nil
}

// GetPeriod loads a period with its lines
func (s *BillingService) GetPeriod(ctx context.Context, rc request.Context, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return toPeriodResponse(period, true), nil
}

// ListPeriods lists periods matching the filter, without lines
func (s *BillingService) ListPeriods(ctx context.Context, rc request.Context, filter billing.PeriodFilter) ([]PeriodResponse, error) {
	periods, err := s.periodRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]PeriodResponse, 0, len(periods))
	for i := range periods {
		out = append(out, *toPeriodResponse(&periods[i], false))
	}
	return out, nil
}

func (s *BillingService) recordEvents(events []shared.DomainEvent) {
	if s.audit != nil && len(events) > 0 {
		s.audit.Record(events)
	}
}
