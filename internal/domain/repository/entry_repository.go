package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// EntryFilter criterios de búsqueda de entradas. Campos vacíos no filtran.
type EntryFilter struct {
	Carrier    string // coincidencia parcial, sin distinguir mayúsculas
	Search     string // tracking, RMA u orden (parcial)
	LocationID *int64
	Stage      string
	Archived   *bool
	Limit      int
	Offset     int
}

// EntryRepository define el puerto de persistencia para Entry.
// Es el dueño exclusivo de location_id; los Get* devuelven (nil, nil) si no existe.
type EntryRepository interface {
	Create(ctx context.Context, entry *entity.Entry) error
	GetByID(ctx context.Context, id int64) (*entity.Entry, error)
	// GetForUpdate bloquea la fila de la entrada (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Entry, error)
	// ListForUpdate bloquea las filas indicadas en orden de id; omite las inexistentes.
	ListForUpdate(ctx context.Context, ids []int64) ([]*entity.Entry, error)
	// ListAtLocationForUpdate bloquea y devuelve las entradas ubicadas hoy en locationID.
	ListAtLocationForUpdate(ctx context.Context, locationID int64) ([]*entity.Entry, error)
	Update(ctx context.Context, entry *entity.Entry) error
	SetLocation(ctx context.Context, ids []int64, locationID *int64, actor string, at time.Time) error
	CountAtLocation(ctx context.Context, locationID int64) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Entry, error)
	Search(ctx context.Context, filter EntryFilter) ([]*entity.Entry, int, error)
}
