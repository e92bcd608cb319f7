package rates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/application/request"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/recordvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateService provides application-level catalog and override operations
type RateService struct {
	catalogRepo  rates.RateCatalogRepository
	overrideRepo rates.RateOverrideRepository
	resolver     *rates.Resolver
	audit        shared.AuditLog
	logger       *zap.Logger
}

// NewRateService creates a new RateService
func NewRateService(
	catalogRepo rates.RateCatalogRepository,
	overrideRepo rates.RateOverrideRepository,
	audit shared.AuditLog,
	logger *zap.Logger,
) *RateService {
	return &RateService{
		catalogRepo:  catalogRepo,
		overrideRepo: overrideRepo,
		resolver:     rates.NewResolver(catalogRepo, overrideRepo),
		audit:        audit,
		logger:       logger,
	}
}

// Resolver exposes the underlying rate resolver for other services
func (s *RateService) Resolver() *rates.Resolver {
	return s.resolver
}

// ===================== Requests and responses =====================

// CreateCatalogEntryRequest is the input for creating a catalog draft
type CreateCatalogEntryRequest struct {
	Category       string          `json:"category" binding:"required"`
	Type           string          `json:"type" binding:"required"`
	Structure      string          `json:"structure" binding:"required"`
	BaseRate       decimal.Decimal `json:"base_rate" binding:"required"`
	MinimumCharge  decimal.Decimal `json:"minimum_charge"`
	EffectiveDate  time.Time       `json:"effective_date" binding:"required"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

// CatalogEntryResponse represents a catalog entry in API responses
type CatalogEntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	Category       string          `json:"category"`
	Type           string          `json:"type"`
	Structure      string          `json:"structure"`
	BaseRate       decimal.Decimal `json:"base_rate"`
	MinimumCharge  decimal.Decimal `json:"minimum_charge"`
	EffectiveDate  time.Time       `json:"effective_date"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	State          string          `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

func toCatalogEntryResponse(e *rates.RateCatalogEntry) *CatalogEntryResponse {
	return &CatalogEntryResponse{
		ID:             e.ID,
		Category:       string(e.Scope.Category),
		Type:           string(e.Scope.Type),
		Structure:      string(e.Structure),
		BaseRate:       e.BaseRate,
		MinimumCharge:  e.MinimumCharge,
		EffectiveDate:  e.EffectiveDate,
		ExpirationDate: e.ExpirationDate,
		State:          string(e.State),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		Version:        e.Version,
	}
}

// CreateOverrideRequest is the input for creating an override draft
type CreateOverrideRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	Category       string          `json:"category" binding:"required"`
	Type           string          `json:"type" binding:"required"`
	Method         string          `json:"method" binding:"required"`
	Value          decimal.Decimal `json:"value"`
	EffectiveDate  time.Time       `json:"effective_date" binding:"required"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

// OverrideResponse represents an override in API responses
type OverrideResponse struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Category       string          `json:"category"`
	Type           string          `json:"type"`
	Method         string          `json:"method"`
	Value          decimal.Decimal `json:"value"`
	EffectiveDate  time.Time       `json:"effective_date"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	State          string          `json:"state"`
	ApprovedBy     *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	Version        int             `json:"version"`
}

func toOverrideResponse(o *rates.CustomerRateOverride) *OverrideResponse {
	return &OverrideResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Category:       string(o.Scope.Category),
		Type:           string(o.Scope.Type),
		Method:         string(o.Method),
		Value:          o.AdjustmentValue,
		EffectiveDate:  o.EffectiveDate,
		ExpirationDate: o.ExpirationDate,
		State:          string(o.State),
		ApprovedBy:     o.ApprovedBy,
		ApprovedAt:     o.ApprovedAt,
		Version:        o.Version,
	}
}

// ResolvedRateResponse is the outcome of a customer rate lookup
type ResolvedRateResponse struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Category   string          `json:"category"`
	Type       string          `json:"type"`
	AsOf       time.Time       `json:"as_of"`
	Rate       decimal.Decimal `json:"rate"`
	Source     string          `json:"source"`
	EntryID    *uuid.UUID      `json:"entry_id,omitempty"`
	OverrideID *uuid.UUID      `json:"override_id,omitempty"`
}

// ===================== Catalog operations =====================

// CreateCatalogEntry creates a draft catalog entry
func (s *RateService) CreateCatalogEntry(ctx context.Context, rc request.Context, req CreateCatalogEntryRequest) (*CatalogEntryResponse, error) {
	entry, err := rates.NewRateCatalogEntry(
		rates.RateScope{
			Category: rates.ServiceCategory(req.Category),
			Type:     rates.ServiceType(req.Type),
		},
		rates.RateStructure(req.Structure),
		req.BaseRate,
		req.MinimumCharge,
		req.EffectiveDate,
		req.ExpirationDate,
	)
	if err != nil {
		return nil, err
	}
	if err := s.catalogRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	s.recordEvents(entry.GetDomainEvents())
	entry.ClearDomainEvents()
	return toCatalogEntryResponse(entry), nil
}

// ActivateCatalogEntry activates a draft entry. Superseding the previously
// active entry for the same scope happens inside the repository transaction,
// never from a read taken here, so two concurrent activations for one scope
// serialize and exactly one entry stays active.
func (s *RateService) ActivateCatalogEntry(ctx context.Context, rc request.Context, id uuid.UUID) (*CatalogEntryResponse, error) {
	entry, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Activate(); err != nil {
		return nil, err
	}

	superseded, err := s.catalogRepo.ActivateSuperseding(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rate catalog entry activated",
		zap.String("entry_id", entry.ID.String()),
		zap.String("scope", entry.Scope.String()),
		zap.Int("superseded", len(superseded)),
		zap.String("acting_user", rc.ActingUser.String()),
	)
	s.recordEvents(entry.GetDomainEvents())
	entry.ClearDomainEvents()
	for i := range superseded {
		s.recordEvents(superseded[i].GetDomainEvents())
		superseded[i].ClearDomainEvents()
	}
	return toCatalogEntryResponse(entry), nil
}

// ExpireCatalogEntry retires an active entry without replacement
func (s *RateService) ExpireCatalogEntry(ctx context.Context, rc request.Context, id uuid.UUID) (*CatalogEntryResponse, error) {
	entry, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Expire(); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	s.recordEvents(entry.GetDomainEvents())
	entry.ClearDomainEvents()
	return toCatalogEntryResponse(entry), nil
}

// GetActiveRate returns the active, date-valid entry for a scope
func (s *RateService) GetActiveRate(ctx context.Context, rc request.Context, category, serviceType string) (*CatalogEntryResponse, error) {
	scope := rates.RateScope{
		Category: rates.ServiceCategory(category),
		Type:     rates.ServiceType(serviceType),
	}
	entry, err := s.resolver.GetActiveRate(ctx, scope, rc.AsOfOrNow())
	if err != nil {
		return nil, err
	}
	return toCatalogEntryResponse(entry), nil
}

// ===================== Override operations =====================

// CreateOverride creates a draft customer rate override
func (s *RateService) CreateOverride(ctx context.Context, rc request.Context, req CreateOverrideRequest) (*OverrideResponse, error) {
	override, err := rates.NewCustomerRateOverride(
		req.CustomerID,
		rates.RateScope{
			Category: rates.ServiceCategory(req.Category),
			Type:     rates.ServiceType(req.Type),
		},
		rates.AdjustmentMethod(req.Method),
		req.Value,
		req.EffectiveDate,
		req.ExpirationDate,
	)
	if err != nil {
		return nil, err
	}
	if err := s.overrideRepo.Save(ctx, override); err != nil {
		return nil, err
	}
	s.recordEvents(override.GetDomainEvents())
	override.ClearDomainEvents()
	return toOverrideResponse(override), nil
}

// ApproveOverride records the acting user as the override's approver
func (s *RateService) ApproveOverride(ctx context.Context, rc request.Context, id uuid.UUID) (*OverrideResponse, error) {
	override, err := s.overrideRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := override.Approve(rc.ActingUser); err != nil {
		return nil, err
	}
	if err := s.overrideRepo.Save(ctx, override); err != nil {
		return nil, err
	}
	s.recordEvents(override.GetDomainEvents())
	override.ClearDomainEvents()
	return toOverrideResponse(override), nil
}

// ActivateOverride activates an approved draft. The previously active
// override for the same (customer, scope) is superseded inside the
// repository transaction, so concurrent activations cannot both stay active.
func (s *RateService) ActivateOverride(ctx context.Context, rc request.Context, id uuid.UUID) (*OverrideResponse, error) {
	override, err := s.overrideRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := override.Activate(); err != nil {
		return nil, err
	}

	superseded, err := s.overrideRepo.ActivateSuperseding(ctx, override)
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer rate override activated",
		zap.String("override_id", override.ID.String()),
		zap.String("customer_id", override.CustomerID.String()),
		zap.String("scope", override.Scope.String()),
		zap.Int("superseded", len(superseded)),
	)
	s.recordEvents(override.GetDomainEvents())
	override.ClearDomainEvents()
	for i := range superseded {
		s.recordEvents(superseded[i].GetDomainEvents())
		superseded[i].ClearDomainEvents()
	}
	return toOverrideResponse(override), nil
}

// GetCustomerRate resolves the effective rate and its source for a customer
func (s *RateService) GetCustomerRate(ctx context.Context, rc request.Context, customerID uuid.UUID, category, serviceType string) (*ResolvedRateResponse, error) {
	scope := rates.RateScope{
		Category: rates.ServiceCategory(category),
		Type:     rates.ServiceType(serviceType),
	}
	asOf := rc.AsOfOrNow()
	resolved, err := s.resolver.GetCustomerRate(ctx, customerID, scope, asOf)
	if err != nil {
		return nil, err
	}

	resp := &ResolvedRateResponse{
		CustomerID: customerID,
		Category:   category,
		Type:       serviceType,
		AsOf:       asOf,
		Rate:       resolved.Rate,
		Source:     string(resolved.Source),
		OverrideID: resolved.OverrideID,
	}
	if resolved.EntryID != uuid.Nil {
		entryID := resolved.EntryID
		resp.EntryID = &entryID
	}
	return resp, nil
}

func (s *RateService) recordEvents(events []shared.DomainEvent) {
	if s.audit != nil && len(events) > 0 {
		s.audit.Record(events)
	}
}
