package repository

import (
	"context"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// ArchiveRepository define el puerto de persistencia para archivos de entradas.
type ArchiveRepository interface {
	// Create devuelve domain.AlreadyArchived si la entrada ya tiene un archivo activo.
	Create(ctx context.Context, archive *entity.Archive) error
	GetForUpdate(ctx context.Context, id int64) (*entity.Archive, error)
	// GetByEntryID devuelve nil, nil si la entrada no está archivada.
	GetByEntryID(ctx context.Context, entryID int64) (*entity.Archive, error)
	ListByEntryIDs(ctx context.Context, entryIDs []int64) ([]*entity.Archive, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*entity.Archive, error)
}
