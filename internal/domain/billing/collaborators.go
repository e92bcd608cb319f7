package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
)

// Classification mirrors the container classifications maintained by the
// storage inventory system. Each classification is priced as its own storage
// service type.
type Classification string

const (
	ClassificationStandard  Classification = "STANDARD"
	ClassificationMap       Classification = "MAP"
	ClassificationSpecialty Classification = "SPECIALTY"
	ClassificationPallet    Classification = "PALLET"
)

// ServiceType maps a classification to its storage pricing scope
func (c Classification) ServiceType() rates.ServiceType {
	switch c {
	case ClassificationMap:
		return rates.TypeMapStorage
	case ClassificationSpecialty:
		return rates.TypeSpecialtyStorage
	case ClassificationPallet:
		return rates.TypePalletStorage
	default:
		return rates.TypeStandardStorage
	}
}

// ContainerGroup is a count of non-destroyed containers for one customer,
// optionally one department, and one classification
type ContainerGroup struct {
	CustomerID     uuid.UUID
	DepartmentID   *uuid.UUID
	Classification Classification
	Count          int64
}

// ContainerInventory is the read-only port onto the storage-inventory
// catalog. Destroyed containers are excluded by the adapter.
type ContainerInventory interface {
	// CountByCustomer returns container groups for a customer, split per
	// department when the customer has departments.
	CountByCustomer(ctx context.Context, customerID uuid.UUID) ([]ContainerGroup, error)

	// BillableCustomerIDs returns the IDs of all customers currently
	// holding non-destroyed containers.
	BillableCustomerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// QuantityBreakTerms are the reduced-rate terms a service ticket may carry
type QuantityBreakTerms struct {
	BaseRate         decimal.Decimal `json:"base_rate"`
	BreakRate        decimal.Decimal `json:"break_rate"`
	BreakTarget      decimal.Decimal `json:"break_target"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`     // percentage 0-100
	AdditionalAmount decimal.Decimal `json:"additional_amount"` // surcharges, materials
}

// CompletedServiceTicket is a completed unit of work from the service-ticket
// ledger, already costed by the operations side
type CompletedServiceTicket struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	DepartmentID   *uuid.UUID
	Category       rates.ServiceCategory
	Type           rates.ServiceType
	Description    string
	Quantity       decimal.Decimal
	ActualCost     decimal.Decimal
	CompletionDate time.Time
	Terms          *QuantityBreakTerms // nil when the ticket has no break terms
}

// ServiceTicketSource is the read-only port onto the service-ticket ledger
type ServiceTicketSource interface {
	// CompletedInRange returns tickets completed within [start, end]
	CompletedInRange(ctx context.Context, start, end time.Time) ([]CompletedServiceTicket, error)
}

// MinimumFeePolicy selects how a storage shortfall is applied for customers
// with departments
type MinimumFeePolicy string

const (
	// MinimumFeePerDepartment applies the minimum independently per department
	MinimumFeePerDepartment MinimumFeePolicy = "PER_DEPARTMENT"
	// MinimumFeeProportional computes one customer-level shortfall and
	// distributes it across departments by storage share (the default)
	MinimumFeeProportional MinimumFeePolicy = "PROPORTIONAL"
)

// IsValid checks if the policy is a valid MinimumFeePolicy
func (p MinimumFeePolicy) IsValid() bool {
	return p == MinimumFeePerDepartment || p == MinimumFeeProportional
}

// BillingPreference selects the invoice-grouping strategy for a customer
type BillingPreference string

const (
	PreferenceConsolidated BillingPreference = "CONSOLIDATED"
	PreferenceSeparate     BillingPreference = "SEPARATE"
	PreferenceHybrid       BillingPreference = "HYBRID"
)

// IsValid checks if the preference is a valid BillingPreference
func (p BillingPreference) IsValid() bool {
	return p == PreferenceConsolidated || p == PreferenceSeparate || p == PreferenceHybrid
}

// DepartmentProfile carries the department data billing needs: a stable name
// for section ordering and an optional dedicated billing contact
type DepartmentProfile struct {
	ID             uuid.UUID
	Name           string
	BillingContact string // empty means bill the customer
	PONumber       string
}

// ProductCharge is a recurring product charge configured on a customer's
// billing profile (boxes, supplies)
type ProductCharge struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CustomerBillingProfile is the read model of a customer's billing
// configuration, owned by the customer subsystem
type CustomerBillingProfile struct {
	CustomerID        uuid.UUID
	CustomerName      string
	Preference        BillingPreference
	MinimumMonthlyFee decimal.Decimal
	MinimumFeePolicy  MinimumFeePolicy
	Departments       []DepartmentProfile
	ProductCharges    []ProductCharge
}

// DepartmentByID looks up a department profile by ID
func (p *CustomerBillingProfile) DepartmentByID(id uuid.UUID) *DepartmentProfile {
	for i := range p.Departments {
		if p.Departments[i].ID == id {
			return &p.Departments[i]
		}
	}
	return nil
}

// HasDepartments returns true when storage is grouped per department
func (p *CustomerBillingProfile) HasDepartments() bool {
	return len(p.Departments) > 0
}

// BillingProfileSource is the read-only port onto customer billing profiles
type BillingProfileSource interface {
	// ProfileFor returns the billing profile for one customer
	ProfileFor(ctx context.Context, customerID uuid.UUID) (*CustomerBillingProfile, error)
}

// BillingConfig is the operator-maintained global billing configuration.
// Calculation refuses to start without an active configuration.
type BillingConfig struct {
	ID                uuid.UUID
	BillingDayOfMonth int // 1-31
	DefaultMinimumFee decimal.Decimal
	Active            bool
}

// BillingConfigSource provides the active billing configuration
type BillingConfigSource interface {
	// ActiveConfig returns the active configuration, or shared.ErrNotFound
	ActiveConfig(ctx context.Context) (*BillingConfig, error)
}
