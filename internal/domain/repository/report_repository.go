package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// EntryStateCounts conteo de entradas por estado.
type EntryStateCounts struct {
	Placed   int
	Unplaced int
	Archived int
}

// LocationOccupancyResult ocupación de una ubicación.
type LocationOccupancyResult struct {
	LocationID int64
	Code       string
	Area       string
	Occupants  int
}

// ReportRepository consultas de solo lectura para reportes y dashboard.
// Las implementaciones nunca modifican datos.
type ReportRepository interface {
	// ListActivity combina ingresos, movimientos y archivos ordenados por fecha descendente.
	ListActivity(ctx context.Context, since *time.Time, limit int) ([]*entity.Activity, error)
	CountEntriesByState(ctx context.Context) (EntryStateCounts, error)
	TopLocationsByOccupancy(ctx context.Context, limit int) ([]LocationOccupancyResult, error)
	CountMovements(ctx context.Context, from, to time.Time) (int, error)
	CountArchives(ctx context.Context, from, to time.Time) (int, error)
}
