package inventory

import (
	"context"

	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Entries   repository.EntryRepository
	Locations repository.LocationRepository
	Movements repository.MovementRepository
	Archives  repository.ArchiveRepository
	Audit     repository.AuditLogRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y ninguna escritura queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
