package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo bitácora de cambios sobre PostgreSQL. No expone UPDATE ni DELETE.
type AuditLogRepo struct {
	db Querier
}

// NewAuditLogRepository construye el adaptador de persistencia para la bitácora.
func NewAuditLogRepository(db Querier) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// CreateBatch inserta las filas en un único round-trip y asigna los IDs generados.
func (r *AuditLogRepo) CreateBatch(ctx context.Context, logs []*entity.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	query := `
		INSERT INTO entry_audit_logs (entry_id, field_name, old_value, new_value, changed_by, change_reason, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	batch := &pgx.Batch{}
	for _, l := range logs {
		l := l
		batch.Queue(query,
			l.EntryID, l.FieldName, l.OldValue, l.NewValue, l.ChangedBy, l.ChangeReason, l.ChangedAt,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&l.ID)
		})
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert audit logs: %w", err)
	}
	return nil
}

// ListByEntry historial de cambios de una entrada en orden cronológico.
func (r *AuditLogRepo) ListByEntry(ctx context.Context, entryID int64) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, entry_id, field_name, old_value, new_value, changed_by, change_reason, changed_at
		FROM entry_audit_logs WHERE entry_id = $1 ORDER BY changed_at, id`
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.ID, &l.EntryID, &l.FieldName, &l.OldValue, &l.NewValue, &l.ChangedBy, &l.ChangeReason, &l.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
