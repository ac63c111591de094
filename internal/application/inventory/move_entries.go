package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// MoveEntriesUseCase reubica entradas entre ubicaciones (una, varias o todas las de un origen).
//
// Cada operación corre en una sola transacción: bloquea las filas de las entradas (SELECT FOR UPDATE),
// consulta los archivos en una sentencia aparte (ya con el bloqueo tomado), comprueba que sigan en el
// origen declarado, bloquea el destino en modo compartido y recién entonces
// escribe movimientos, location_id y bitácora. Un origen desactualizado falla con
// SourceLocationMismatch sin tocar nada.
type MoveEntriesUseCase struct {
	txRunner     TxRunner
	movementRepo repository.MovementRepository
	cache        ports.CacheInvalidator
	log          zerolog.Logger
	now          func() time.Time
}

// NewMoveEntriesUseCase construye el caso de uso.
func NewMoveEntriesUseCase(
	txRunner TxRunner,
	movementRepo repository.MovementRepository,
	cache ports.CacheInvalidator,
	log zerolog.Logger,
) *MoveEntriesUseCase {
	return &MoveEntriesUseCase{
		txRunner:     txRunner,
		movementRepo: movementRepo,
		cache:        cache,
		log:          log,
		now:          time.Now,
	}
}

// MoveSingle mueve una entrada desde from (nil = sin ubicar) hasta to.
func (uc *MoveEntriesUseCase) MoveSingle(ctx context.Context, actor string, in dto.MoveSingleRequest) (*dto.MoveResponse, error) {
	actor = strings.TrimSpace(actor)
	if err := checkMoveParams(actor, in.FromLocationID, in.ToLocationID); err != nil {
		return nil, err
	}
	if in.EntryID <= 0 {
		return nil, domain.MissingField("entry_id")
	}
	return uc.run(ctx, "single", actor, in.Reason, *in.ToLocationID, func(ctx context.Context, repos TxRepos) ([]*entity.Entry, error) {
		e, err := repos.Entries.GetForUpdate(ctx, in.EntryID)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, &domain.EntryNotFoundError{IDs: []int64{in.EntryID}}
		}
		archived, err := repos.Archives.GetByEntryID(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if archived != nil {
			return nil, &domain.EntryNotFoundError{IDs: []int64{in.EntryID}}
		}
		if !sameLocation(e.LocationID, in.FromLocationID) {
			return nil, &domain.SourceMismatchError{Mismatched: 1, EntryIDs: []int64{e.ID}}
		}
		return []*entity.Entry{e}, nil
	})
}

// MoveMultiple mueve un conjunto de entradas que deben estar todas en from. Si alguna no lo está,
// no se mueve ninguna y el error informa cuántas y cuáles no coinciden.
func (uc *MoveEntriesUseCase) MoveMultiple(ctx context.Context, actor string, in dto.MoveMultipleRequest) (*dto.MoveResponse, error) {
	actor = strings.TrimSpace(actor)
	if err := checkMoveParams(actor, in.FromLocationID, in.ToLocationID); err != nil {
		return nil, err
	}
	ids := uniqueIDs(in.EntryIDs)
	if len(ids) == 0 {
		return nil, domain.MissingField("entry_ids")
	}
	return uc.run(ctx, "multiple", actor, in.Reason, *in.ToLocationID, func(ctx context.Context, repos TxRepos) ([]*entity.Entry, error) {
		entries, err := repos.Entries.ListForUpdate(ctx, ids)
		if err != nil {
			return nil, err
		}
		archives, err := repos.Archives.ListByEntryIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		archived := make(map[int64]bool, len(archives))
		for _, a := range archives {
			archived[a.EntryID] = true
		}
		found := make(map[int64]*entity.Entry, len(entries))
		for _, e := range entries {
			if !archived[e.ID] {
				found[e.ID] = e
			}
		}
		var missing, mismatched []int64
		for _, id := range ids {
			e, ok := found[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			if !sameLocation(e.LocationID, in.FromLocationID) {
				mismatched = append(mismatched, id)
			}
		}
		if len(missing) > 0 {
			return nil, &domain.EntryNotFoundError{IDs: missing}
		}
		if len(mismatched) > 0 {
			return nil, &domain.SourceMismatchError{Mismatched: len(mismatched), EntryIDs: mismatched}
		}
		out := make([]*entity.Entry, 0, len(ids))
		for _, id := range ids {
			out = append(out, found[id])
		}
		return out, nil
	})
}

// MoveBulk mueve todo lo que hay hoy en from hacia to.
func (uc *MoveEntriesUseCase) MoveBulk(ctx context.Context, actor string, in dto.MoveBulkRequest) (*dto.MoveResponse, error) {
	actor = strings.TrimSpace(actor)
	if err := checkMoveParams(actor, in.FromLocationID, in.ToLocationID); err != nil {
		return nil, err
	}
	if in.FromLocationID == nil {
		return nil, domain.MissingField("from_location_id")
	}
	from := *in.FromLocationID
	return uc.run(ctx, "bulk", actor, in.Reason, *in.ToLocationID, func(ctx context.Context, repos TxRepos) ([]*entity.Entry, error) {
		entries, err := repos.Entries.ListAtLocationForUpdate(ctx, from)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, domain.ErrNoEntriesAtSource
		}
		return entries, nil
	})
}

// checkMoveParams validaciones previas a cualquier lectura: actor, destino y origen distinto del destino.
func checkMoveParams(actor string, from, to *int64) error {
	if actor == "" {
		return domain.MissingField("moved_by")
	}
	if sameLocation(from, to) {
		return domain.ErrSameLocation
	}
	if to == nil {
		return domain.MissingField("to_location_id")
	}
	return nil
}

// run ejecuta la transacción común: selecciona y valida las entradas con pick, valida el destino
// y escribe movimientos, nueva ubicación y bitácora.
func (uc *MoveEntriesUseCase) run(
	ctx context.Context,
	mode, actor, reason string,
	to int64,
	pick func(ctx context.Context, repos TxRepos) ([]*entity.Entry, error),
) (*dto.MoveResponse, error) {
	reason = strings.TrimSpace(reason)
	now := uc.now()
	batchID := uuid.New().String()
	var ids []int64

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		entries, err := pick(ctx, repos)
		if err != nil {
			return err
		}
		dest, err := activeLocation(ctx, repos, to)
		if err != nil {
			return err
		}

		movements := make([]*entity.Movement, 0, len(entries))
		logs := make([]*entity.AuditLog, 0, len(entries))
		ids = make([]int64, 0, len(entries))
		for _, e := range entries {
			movements = append(movements, &entity.Movement{
				BatchID:          batchID,
				EntryID:          e.ID,
				FromLocationID:   e.LocationID,
				FromLocationCode: e.LocationCode,
				ToLocationID:     dest.ID,
				ToLocationCode:   dest.Code,
				MovedAt:          now,
				MovedBy:          actor,
				Reason:           reason,
			})
			logs = append(logs, locationChange(e.ID, e.LocationID, &dest.ID, actor, moveReason(reason), now))
			ids = append(ids, e.ID)
		}
		if err := repos.Movements.CreateBatch(ctx, movements); err != nil {
			return err
		}
		if err := repos.Entries.SetLocation(ctx, ids, &dest.ID, actor, now); err != nil {
			return err
		}
		return repos.Audit.CreateBatch(ctx, logs)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("mode", mode).
		Str("batch_id", batchID).
		Ints64("entry_ids", ids).
		Int64("to_location_id", to).
		Str("actor", actor).
		Msg("entradas movidas")
	uc.cache.Invalidate(ports.ScopeEntries, ports.ScopeLocations, ports.ScopeDashboard)
	return &dto.MoveResponse{BatchID: batchID, MovedCount: len(ids), EntryIDs: ids}, nil
}

// activeLocation bloquea la ubicación en modo compartido y exige que exista y esté activa.
func activeLocation(ctx context.Context, repos TxRepos, id int64) (*entity.Location, error) {
	loc, err := repos.Locations.GetForShare(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	if !loc.IsActive {
		return nil, domain.ErrLocationInactive
	}
	return loc, nil
}

func moveReason(reason string) string {
	if reason == "" {
		return "movimiento"
	}
	return reason
}

// uniqueIDs elimina duplicados y no positivos, ordenando por id.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ListMovementHistory historial filtrado por ubicación (origen o destino) y/o entrada.
func (uc *MoveEntriesUseCase) ListMovementHistory(ctx context.Context, filter repository.MovementFilter) ([]dto.MovementResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage(500)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	list, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return out, nil
}
