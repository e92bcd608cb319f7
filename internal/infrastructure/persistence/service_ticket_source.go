package persistence

import (
	"context"
	"time"

	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceTicketSource implements the ServiceTicketSource read port on
// the service tickets table
type GormServiceTicketSource struct {
	db *gorm.DB
}

// NewGormServiceTicketSource creates a new GormServiceTicketSource
func NewGormServiceTicketSource(db *gorm.DB) *GormServiceTicketSource {
	return &GormServiceTicketSource{db: db}
}

// CompletedInRange returns tickets completed within [start, end], ordered by
// completion date then ID for stable engine input
func (r *GormServiceTicketSource) CompletedInRange(ctx context.Context, start, end time.Time) ([]billing.CompletedServiceTicket, error) {
	var ticketModels []models.ServiceTicketModel
	if err := r.db.WithContext(ctx).
		Where("completion_date >= ? AND completion_date <= ?", start, end).
		Order("completion_date ASC, id ASC").
		Find(&ticketModels).Error; err != nil {
		return nil, err
	}

	tickets := make([]billing.CompletedServiceTicket, len(ticketModels))
	for i := range ticketModels {
		tickets[i] = ticketModels[i].ToDomain()
	}
	return tickets, nil
}
