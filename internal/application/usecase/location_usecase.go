package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones.
type LocationUseCase struct {
	repo     repository.LocationRepository
	txRunner inventory.TxRunner
	cache    ports.CacheInvalidator
	log      zerolog.Logger
	now      func() time.Time
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(
	repo repository.LocationRepository,
	txRunner inventory.TxRunner,
	cache ports.CacheInvalidator,
	log zerolog.Logger,
) *LocationUseCase {
	return &LocationUseCase{repo: repo, txRunner: txRunner, cache: cache, log: log, now: time.Now}
}

// Create crea una ubicación activa. El código debe ser único.
func (uc *LocationUseCase) Create(ctx context.Context, actor string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.MissingField("code")
	}
	now := uc.now()
	loc := &entity.Location{
		Code:        code,
		Description: strings.TrimSpace(in.Description),
		Area:        strings.TrimSpace(in.Area),
		IsActive:    true,
		CreatedAt:   now,
		CreatedBy:   actor,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ports.ScopeLocations)
	out := dto.NewLocationResponse(loc)
	return &out, nil
}

// GetByID obtiene una ubicación por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id int64) (*dto.LocationResponse, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	out := dto.NewLocationResponse(loc)
	return &out, nil
}

// FindByCode búsqueda exacta por código (lo que lee el escáner).
func (uc *LocationUseCase) FindByCode(ctx context.Context, code string) (*dto.LocationResponse, error) {
	loc, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	out := dto.NewLocationResponse(loc)
	return &out, nil
}

// Update reemplaza código, descripción y área. IsActive ausente conserva el valor actual.
// Desactivar no mueve las entradas que ya ocupan la ubicación; solo impide usarla como destino.
func (uc *LocationUseCase) Update(ctx context.Context, id int64, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.MissingField("code")
	}
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	loc.Code = code
	loc.Description = strings.TrimSpace(in.Description)
	loc.Area = strings.TrimSpace(in.Area)
	if in.IsActive != nil {
		loc.IsActive = *in.IsActive
	}
	loc.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ports.ScopeLocations, ports.ScopeEntries, ports.ScopeDashboard)
	out := dto.NewLocationResponse(loc)
	return &out, nil
}

// Delete elimina una ubicación sin ocupantes. El conteo y el borrado van en la misma transacción
// con la fila bloqueada, así ningún movimiento concurrente puede dejar una entrada huérfana.
func (uc *LocationUseCase) Delete(ctx context.Context, id int64) error {
	var code string
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		loc, err := repos.Locations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrLocationNotFound
		}
		code = loc.Code
		n, err := repos.Entries.CountAtLocation(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.LocationInUseError{LocationID: id, Occupants: n}
		}
		return repos.Locations.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("location_id", id).Str("code", code).Msg("ubicación eliminada")
	uc.cache.Invalidate(ports.ScopeLocations, ports.ScopeDashboard)
	return nil
}

// List lista ubicaciones con su ocupación actual, ordenadas por código.
func (uc *LocationUseCase) List(ctx context.Context, activeOnly bool, limit, offset int) (*dto.LocationListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage(500)
	list, err := uc.repo.List(ctx, activeOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		r := dto.NewLocationResponse(&l.Location)
		n := l.Occupants
		r.Occupants = &n
		items = append(items, r)
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
