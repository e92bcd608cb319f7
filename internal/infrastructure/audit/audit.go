// Package audit records domain events after persistence for traceability.
// The log is an observer: recording failures never fail the operation that
// produced the events.
package audit

import (
	"encoding/json"

	"github.com/recordvault/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ZapAuditLog writes domain events to the structured log
type ZapAuditLog struct {
	logger *zap.Logger
}

// NewZapAuditLog creates an audit log backed by zap
func NewZapAuditLog(logger *zap.Logger) *ZapAuditLog {
	return &ZapAuditLog{logger: logger.Named("audit")}
}

// Record implements shared.AuditLog
func (a *ZapAuditLog) Record(events []shared.DomainEvent) {
	for _, event := range events {
		fields := []zap.Field{
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_type", event.AggregateType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
		}
		if data, err := json.Marshal(event); err == nil {
			fields = append(fields, zap.ByteString("payload", data))
		}
		a.logger.Info("domain event", fields...)
	}
}
