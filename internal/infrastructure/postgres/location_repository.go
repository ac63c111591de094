package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	db Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(db Querier) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `id, code, description, area, is_active, created_at, created_by, updated_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.Code, &l.Description, &l.Area, &l.IsActive, &l.CreatedAt, &l.CreatedBy, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una nueva ubicación y asigna su ID.
func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	query := `
		INSERT INTO locations (code, description, area, is_active, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		location.Code, location.Description, location.Area, location.IsActive,
		location.CreatedAt, location.CreatedBy, location.UpdatedAt,
	).Scan(&location.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
}

// GetByCode obtiene una ubicación por código exacto (distingue mayúsculas).
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE code = $1`, code)
}

// GetForShare obtiene la ubicación bloqueándola en modo compartido hasta el fin de la tx.
func (r *LocationRepo) GetForShare(ctx context.Context, id int64) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1 FOR SHARE`, id)
}

// GetForUpdate obtiene la ubicación bloqueándola en exclusiva.
func (r *LocationRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1 FOR UPDATE`, id)
}

func (r *LocationRepo) getOne(ctx context.Context, query string, arg any) (*entity.Location, error) {
	l, err := scanLocation(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// Update reemplaza los campos editables de la ubicación.
func (r *LocationRepo) Update(ctx context.Context, location *entity.Location) error {
	query := `
		UPDATE locations SET code = $2, description = $3, area = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query,
		location.ID, location.Code, location.Description, location.Area, location.IsActive, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("update location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLocationNotFound
	}
	return nil
}

// Delete elimina la ubicación. La FK de entries impide borrar una ubicación ocupada.
func (r *LocationRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrLocationInUse
		}
		return fmt.Errorf("delete location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLocationNotFound
	}
	return nil
}

// List lista ubicaciones por código con el número de entradas que las ocupan.
func (r *LocationRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.LocationWithOccupancy, error) {
	query := `
		SELECT l.id, l.code, l.description, l.area, l.is_active, l.created_at, l.created_by, l.updated_at,
		       COUNT(e.id) AS occupants
		FROM locations l
		LEFT JOIN entries e ON e.location_id = l.id
		WHERE ($1 = FALSE OR l.is_active)
		GROUP BY l.id
		ORDER BY l.code
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.LocationWithOccupancy
	for rows.Next() {
		var l entity.LocationWithOccupancy
		if err := rows.Scan(
			&l.ID, &l.Code, &l.Description, &l.Area, &l.IsActive, &l.CreatedAt, &l.CreatedBy, &l.UpdatedAt,
			&l.Occupants,
		); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
