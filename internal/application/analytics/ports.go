package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// DocumentGenerator genera los PDF imprimibles de una ubicación.
type DocumentGenerator interface {
	// LocationSheet hoja de inventario: cabecera con código de barras y una fila por entrada.
	LocationSheet(ctx context.Context, loc *entity.Location, entries []*entity.Entry, generatedAt time.Time) ([]byte, error)
	// LocationLabel etiqueta para pegar en el rack con el código en barras y QR.
	LocationLabel(ctx context.Context, loc *entity.Location) ([]byte, error)
}
