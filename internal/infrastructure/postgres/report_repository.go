package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y dashboard.
type ReportRepo struct {
	db Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(db Querier) *ReportRepo {
	return &ReportRepo{db: db}
}

// ListActivity une ingresos, movimientos y archivos en una sola línea de tiempo descendente.
// Los archivos ya restaurados no aparecen: restaurar consume el registro.
func (r *ReportRepo) ListActivity(ctx context.Context, since *time.Time, limit int) ([]*entity.Activity, error) {
	const query = `
	SELECT type, entry_id, location_code, from_code, actor, detail, occurred_at
	FROM (
	    SELECT 'INBOUND'   AS type, e.id AS entry_id, ''::TEXT AS location_code, ''::TEXT AS from_code,
	           e.created_by AS actor, e.carrier_name AS detail, e.created_at AS occurred_at
	    FROM entries e
	    UNION ALL
	    SELECT 'MOVEMENT', m.entry_id, m.to_location_code, m.from_location_code,
	           m.moved_by, m.reason, m.moved_at
	    FROM movements m
	    UNION ALL
	    SELECT 'ARCHIVE', a.entry_id, a.location_code, '',
	           a.archived_by, a.reason, a.archived_at
	    FROM entry_archives a
	) t
	WHERE ($1::TIMESTAMPTZ IS NULL OR occurred_at >= $1)
	ORDER BY occurred_at DESC, entry_id DESC
	LIMIT $2`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("report.ListActivity: %w", err)
	}
	defer rows.Close()

	var list []*entity.Activity
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.Type, &a.EntryID, &a.LocationCode, &a.FromCode, &a.Actor, &a.Detail, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("report.ListActivity scan: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// CountEntriesByState cuenta entradas ubicadas, sin ubicar y archivadas.
func (r *ReportRepo) CountEntriesByState(ctx context.Context) (repository.EntryStateCounts, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE e.location_id IS NOT NULL)                     AS placed,
	    COUNT(*) FILTER (WHERE e.location_id IS NULL AND a.id IS NULL)        AS unplaced,
	    COUNT(*) FILTER (WHERE a.id IS NOT NULL)                              AS archived
	FROM entries e
	LEFT JOIN entry_archives a ON a.entry_id = e.id`

	var c repository.EntryStateCounts
	if err := r.db.QueryRow(ctx, query).Scan(&c.Placed, &c.Unplaced, &c.Archived); err != nil {
		return c, fmt.Errorf("report.CountEntriesByState: %w", err)
	}
	return c, nil
}

// TopLocationsByOccupancy ubicaciones con más entradas.
func (r *ReportRepo) TopLocationsByOccupancy(ctx context.Context, limit int) ([]repository.LocationOccupancyResult, error) {
	const query = `
	SELECT l.id, l.code, l.area, COUNT(e.id) AS occupants
	FROM locations l
	JOIN entries e ON e.location_id = l.id
	GROUP BY l.id, l.code, l.area
	ORDER BY occupants DESC, l.code
	LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("report.TopLocationsByOccupancy: %w", err)
	}
	defer rows.Close()

	var list []repository.LocationOccupancyResult
	for rows.Next() {
		var o repository.LocationOccupancyResult
		if err := rows.Scan(&o.LocationID, &o.Code, &o.Area, &o.Occupants); err != nil {
			return nil, fmt.Errorf("report.TopLocationsByOccupancy scan: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// CountMovements movimientos en [from, to).
func (r *ReportRepo) CountMovements(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE moved_at >= $1 AND moved_at < $2`, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("report.CountMovements: %w", err)
	}
	return n, nil
}

// CountArchives archivos activos creados en [from, to).
func (r *ReportRepo) CountArchives(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM entry_archives WHERE archived_at >= $1 AND archived_at < $2`, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("report.CountArchives: %w", err)
	}
	return n, nil
}
