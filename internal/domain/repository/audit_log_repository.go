package repository

import (
	"context"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// AuditLogRepository bitácora append-only de cambios por campo.
type AuditLogRepository interface {
	CreateBatch(ctx context.Context, logs []*entity.AuditLog) error
	ListByEntry(ctx context.Context, entryID int64) ([]*entity.AuditLog, error)
}
