package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContainerInventory implements the ContainerInventory read port on the
// containers table. Destroyed containers are filtered out here so the
// billing engine never sees them.
type GormContainerInventory struct {
	db *gorm.DB
}

// NewGormContainerInventory creates a new GormContainerInventory
func NewGormContainerInventory(db *gorm.DB) *GormContainerInventory {
	return &GormContainerInventory{db: db}
}

type containerGroupRow struct {
	CustomerID     uuid.UUID
	DepartmentID   *uuid.UUID
	Classification billing.Classification
	Count          int64
}

// CountByCustomer returns non-destroyed container counts for a customer,
// grouped by department and classification
func (r *GormContainerInventory) CountByCustomer(ctx context.Context, customerID uuid.UUID) ([]billing.ContainerGroup, error) {
	var rows []containerGroupRow
	if err := r.db.WithContext(ctx).
		Model(&models.ContainerModel{}).
		Select("customer_id, department_id, classification, COUNT(*) as count").
		Where("customer_id = ? AND destroyed = ?", customerID, false).
		Group("customer_id, department_id, classification").
		Order("classification ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	groups := make([]billing.ContainerGroup, len(rows))
	for i, row := range rows {
		groups[i] = billing.ContainerGroup{
			CustomerID:     row.CustomerID,
			DepartmentID:   row.DepartmentID,
			Classification: row.Classification,
			Count:          row.Count,
		}
	}
	return groups, nil
}

// BillableCustomerIDs returns the IDs of all customers currently holding
// non-destroyed containers
func (r *GormContainerInventory) BillableCustomerIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ContainerModel{}).
		Distinct("customer_id").
		Where("destroyed = ?", false).
		Order("customer_id ASC").
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
