package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

var _ repository.EntryRepository = (*EntryRepo)(nil)

// EntryRepo implementación del puerto EntryRepository sobre PostgreSQL.
type EntryRepo struct {
	db Querier
}

// NewEntryRepository construye el adaptador de persistencia para entradas.
func NewEntryRepository(db Querier) *EntryRepo {
	return &EntryRepo{db: db}
}

// entrySelect columnas de Entry más el código de ubicación y el flag derivado de archivo.
const entrySelect = `
	SELECT e.id, e.carrier_name, e.tracking_number, e.return_number, e.order_number, e.customer_name,
	       e.expected_carton, e.actual_carton, e.weight_kg, e.stage, e.remarks, e.location_id,
	       COALESCE(l.code, ''),
	       EXISTS (SELECT 1 FROM entry_archives a WHERE a.entry_id = e.id),
	       e.received_at, e.created_at, e.created_by, e.updated_at, e.updated_by
	FROM entries e
	LEFT JOIN locations l ON l.id = e.location_id`

func scanEntryInto(row pgx.Row, e *entity.Entry, extra ...any) error {
	dest := []any{
		&e.ID, &e.CarrierName, &e.TrackingNumber, &e.ReturnNumber, &e.OrderNumber, &e.CustomerName,
		&e.ExpectedCarton, &e.ActualCarton, &e.WeightKg, &e.Stage, &e.Remarks, &e.LocationID,
		&e.LocationCode, &e.Archived,
		&e.ReceivedAt, &e.CreatedAt, &e.CreatedBy, &e.UpdatedAt, &e.UpdatedBy,
	}
	return row.Scan(append(dest, extra...)...)
}

func collectEntries(rows pgx.Rows) ([]*entity.Entry, error) {
	defer rows.Close()
	var list []*entity.Entry
	for rows.Next() {
		var e entity.Entry
		if err := scanEntryInto(rows, &e); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Create persiste una nueva entrada y asigna su ID.
func (r *EntryRepo) Create(ctx context.Context, entry *entity.Entry) error {
	query := `
		INSERT INTO entries (carrier_name, tracking_number, return_number, order_number, customer_name,
			expected_carton, actual_carton, weight_kg, stage, remarks, location_id,
			received_at, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		entry.CarrierName, entry.TrackingNumber, entry.ReturnNumber, entry.OrderNumber, entry.CustomerName,
		entry.ExpectedCarton, entry.ActualCarton, entry.WeightKg, entry.Stage, entry.Remarks, entry.LocationID,
		entry.ReceivedAt, entry.CreatedAt, entry.CreatedBy, entry.UpdatedAt, entry.UpdatedBy,
	).Scan(&entry.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrLocationNotFound
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID.
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*entity.Entry, error) {
	return r.getOne(ctx, entrySelect+` WHERE e.id = $1`, id)
}

// GetForUpdate obtiene la entrada bloqueando su fila hasta el fin de la tx.
func (r *EntryRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Entry, error) {
	return r.getOne(ctx, entrySelect+` WHERE e.id = $1 FOR UPDATE OF e`, id)
}

func (r *EntryRepo) getOne(ctx context.Context, query string, id int64) (*entity.Entry, error) {
	var e entity.Entry
	if err := scanEntryInto(r.db.QueryRow(ctx, query, id), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// ListForUpdate bloquea las entradas en orden de id para que dos lotes concurrentes no se interbloqueen.
func (r *EntryRepo) ListForUpdate(ctx context.Context, ids []int64) ([]*entity.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, entrySelect+` WHERE e.id = ANY($1) ORDER BY e.id FOR UPDATE OF e`, ids)
	if err != nil {
		return nil, fmt.Errorf("lock entries: %w", err)
	}
	return collectEntries(rows)
}

// ListAtLocationForUpdate bloquea y devuelve las entradas ubicadas hoy en locationID.
func (r *EntryRepo) ListAtLocationForUpdate(ctx context.Context, locationID int64) ([]*entity.Entry, error) {
	rows, err := r.db.Query(ctx, entrySelect+` WHERE e.location_id = $1 ORDER BY e.id FOR UPDATE OF e`, locationID)
	if err != nil {
		return nil, fmt.Errorf("lock entries at location: %w", err)
	}
	return collectEntries(rows)
}

// Update guarda los campos descriptivos. location_id no se toca aquí.
func (r *EntryRepo) Update(ctx context.Context, entry *entity.Entry) error {
	query := `
		UPDATE entries SET carrier_name = $2, tracking_number = $3, return_number = $4, order_number = $5,
			customer_name = $6, expected_carton = $7, actual_carton = $8, weight_kg = $9, stage = $10,
			remarks = $11, updated_at = $12, updated_by = $13
		WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query,
		entry.ID, entry.CarrierName, entry.TrackingNumber, entry.ReturnNumber, entry.OrderNumber,
		entry.CustomerName, entry.ExpectedCarton, entry.ActualCarton, entry.WeightKg, entry.Stage,
		entry.Remarks, entry.UpdatedAt, entry.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// SetLocation fija location_id (nil desubica) de las entradas indicadas.
func (r *EntryRepo) SetLocation(ctx context.Context, ids []int64, locationID *int64, actor string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE entries SET location_id = $1, updated_at = $2, updated_by = $3 WHERE id = ANY($4)`
	cmd, err := r.db.Exec(ctx, query, locationID, at, actor, ids)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrLocationNotFound
		}
		return fmt.Errorf("set entry location: %w", err)
	}
	if int(cmd.RowsAffected()) != len(ids) {
		return fmt.Errorf("set entry location: %d de %d filas: %w", cmd.RowsAffected(), len(ids), domain.ErrEntryNotFound)
	}
	return nil
}

// CountAtLocation cuenta las entradas ubicadas en locationID.
func (r *EntryRepo) CountAtLocation(ctx context.Context, locationID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM entries WHERE location_id = $1`, locationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries at location: %w", err)
	}
	return n, nil
}

// ListRecent últimas entradas recibidas.
func (r *EntryRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Entry, error) {
	rows, err := r.db.Query(ctx, entrySelect+` ORDER BY e.created_at DESC, e.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return collectEntries(rows)
}

// Search filtra entradas y devuelve la página pedida junto con el total de coincidencias.
func (r *EntryRepo) Search(ctx context.Context, f repository.EntryFilter) ([]*entity.Entry, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Carrier != "" {
		conds = append(conds, "e.carrier_name ILIKE "+arg(likePattern(f.Carrier)))
	}
	if f.Search != "" {
		p := arg(likePattern(f.Search))
		conds = append(conds, fmt.Sprintf(
			"(e.tracking_number ILIKE %[1]s OR e.return_number ILIKE %[1]s OR e.order_number ILIKE %[1]s OR e.customer_name ILIKE %[1]s)", p))
	}
	if f.LocationID != nil {
		conds = append(conds, "e.location_id = "+arg(*f.LocationID))
	}
	if f.Stage != "" {
		conds = append(conds, "e.stage = "+arg(f.Stage))
	}
	if f.Archived != nil {
		cond := "EXISTS (SELECT 1 FROM entry_archives a WHERE a.entry_id = e.id)"
		if !*f.Archived {
			cond = "NOT " + cond
		}
		conds = append(conds, cond)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM entries e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := entrySelect + where + fmt.Sprintf(" ORDER BY e.id DESC LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search entries: %w", err)
	}
	list, err := collectEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
