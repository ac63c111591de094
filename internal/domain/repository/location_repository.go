package repository

import (
	"context"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
// Los métodos Get* devuelven (nil, nil) cuando la ubicación no existe.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	// GetForShare bloquea la fila en modo compartido (SELECT FOR SHARE) hasta el fin de la tx,
	// evitando que se desactive o borre mientras se usa como destino.
	GetForShare(ctx context.Context, id int64) (*entity.Location, error)
	// GetForUpdate bloquea la fila en exclusiva (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.LocationWithOccupancy, error)
}
