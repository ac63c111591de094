package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
// LocationID coincide tanto con el origen como con el destino.
type MovementFilter struct {
	LocationID *int64
	EntryID    *int64
	From, To   *time.Time
	Limit      int
	Offset     int
}

// MovementRepository define el puerto de persistencia para movimientos (solo inserción y lectura).
type MovementRepository interface {
	CreateBatch(ctx context.Context, movements []*entity.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
