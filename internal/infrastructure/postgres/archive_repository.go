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

var _ repository.ArchiveRepository = (*ArchiveRepo)(nil)

// ArchiveRepo implementación del puerto ArchiveRepository sobre PostgreSQL.
type ArchiveRepo struct {
	db Querier
}

// NewArchiveRepository construye el adaptador de persistencia para archivos.
func NewArchiveRepository(db Querier) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

const archiveColumns = `id, entry_id, location_id, location_code, archived_at, archived_by, reason, notes`

func scanArchive(row pgx.Row) (*entity.Archive, error) {
	var a entity.Archive
	err := row.Scan(&a.ID, &a.EntryID, &a.LocationID, &a.LocationCode, &a.ArchivedAt, &a.ArchivedBy, &a.Reason, &a.Notes)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta el archivo. UNIQUE(entry_id) garantiza un único archivo activo por entrada.
func (r *ArchiveRepo) Create(ctx context.Context, archive *entity.Archive) error {
	query := `
		INSERT INTO entry_archives (entry_id, location_id, location_code, archived_at, archived_by, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		archive.EntryID, archive.LocationID, archive.LocationCode, archive.ArchivedAt,
		archive.ArchivedBy, archive.Reason, archive.Notes,
	).Scan(&archive.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.AlreadyArchived(archive.EntryID)
		}
		return fmt.Errorf("insert archive: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el archivo bloqueando su fila (dos restauraciones simultáneas se serializan).
func (r *ArchiveRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Archive, error) {
	return r.getOne(ctx, `SELECT `+archiveColumns+` FROM entry_archives WHERE id = $1 FOR UPDATE`, id)
}

// GetByEntryID obtiene el archivo activo de una entrada.
func (r *ArchiveRepo) GetByEntryID(ctx context.Context, entryID int64) (*entity.Archive, error) {
	return r.getOne(ctx, `SELECT `+archiveColumns+` FROM entry_archives WHERE entry_id = $1`, entryID)
}

// ListByEntryIDs archivos activos de un conjunto de entradas. Se consulta en su propia sentencia,
// después de bloquear las entradas, para ver los archivos confirmados mientras se esperaba el bloqueo.
func (r *ArchiveRepo) ListByEntryIDs(ctx context.Context, entryIDs []int64) ([]*entity.Archive, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+archiveColumns+` FROM entry_archives WHERE entry_id = ANY($1) ORDER BY entry_id`, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("list archives by entry: %w", err)
	}
	defer rows.Close()
	var list []*entity.Archive
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *ArchiveRepo) getOne(ctx context.Context, query string, id int64) (*entity.Archive, error) {
	a, err := scanArchive(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get archive: %w", err)
	}
	return a, nil
}

// Delete consume el archivo al restaurar la entrada.
func (r *ArchiveRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM entry_archives WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

// List archivos activos, más recientes primero.
func (r *ArchiveRepo) List(ctx context.Context, limit, offset int) ([]*entity.Archive, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+archiveColumns+` FROM entry_archives ORDER BY archived_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()
	var list []*entity.Archive
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
