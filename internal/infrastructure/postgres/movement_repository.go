package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL (solo INSERT y SELECT).
type MovementRepo struct {
	db Querier
}

// NewMovementRepository construye el adaptador de persistencia para movimientos.
func NewMovementRepository(db Querier) *MovementRepo {
	return &MovementRepo{db: db}
}

// CreateBatch inserta todas las filas en un único round-trip y asigna los IDs generados.
func (r *MovementRepo) CreateBatch(ctx context.Context, movements []*entity.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	query := `
		INSERT INTO movements (batch_id, entry_id, from_location_id, from_location_code,
			to_location_id, to_location_code, moved_at, moved_by, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	batch := &pgx.Batch{}
	for _, m := range movements {
		m := m
		batch.Queue(query,
			m.BatchID, m.EntryID, m.FromLocationID, m.FromLocationCode,
			m.ToLocationID, m.ToLocationCode, m.MovedAt, m.MovedBy, m.Reason,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&m.ID)
		})
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// List historial de movimientos, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.LocationID != nil {
		p := arg(*f.LocationID)
		conds = append(conds, fmt.Sprintf("(from_location_id = %[1]s OR to_location_id = %[1]s)", p))
	}
	if f.EntryID != nil {
		conds = append(conds, "entry_id = "+arg(*f.EntryID))
	}
	if f.From != nil {
		conds = append(conds, "moved_at >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "moved_at < "+arg(*f.To))
	}
	query := `
		SELECT id, batch_id, entry_id, from_location_id, from_location_code,
		       to_location_id, to_location_code, moved_at, moved_by, reason
		FROM movements`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY moved_at DESC, id DESC LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.BatchID, &m.EntryID, &m.FromLocationID, &m.FromLocationCode,
			&m.ToLocationID, &m.ToLocationCode, &m.MovedAt, &m.MovedBy, &m.Reason,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
