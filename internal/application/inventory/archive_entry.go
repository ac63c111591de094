package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// ArchiveEntryUseCase retira entradas del inventario activo y las restaura.
// Una entrada está archivada si y solo si existe su registro en entry_archives.
type ArchiveEntryUseCase struct {
	txRunner    TxRunner
	archiveRepo repository.ArchiveRepository
	cache       ports.CacheInvalidator
	log         zerolog.Logger
	now         func() time.Time
}

// NewArchiveEntryUseCase construye el caso de uso.
func NewArchiveEntryUseCase(
	txRunner TxRunner,
	archiveRepo repository.ArchiveRepository,
	cache ports.CacheInvalidator,
	log zerolog.Logger,
) *ArchiveEntryUseCase {
	return &ArchiveEntryUseCase{
		txRunner:    txRunner,
		archiveRepo: archiveRepo,
		cache:       cache,
		log:         log,
		now:         time.Now,
	}
}

// ArchiveEntry guarda la ubicación actual en el registro de archivo y deja la entrada sin ubicar.
func (uc *ArchiveEntryUseCase) ArchiveEntry(ctx context.Context, actor string, entryID int64, in dto.ArchiveEntryRequest) (*dto.ArchiveEntryResponse, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, domain.MissingField("archived_by")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.MissingField("reason")
	}
	now := uc.now()
	archive := &entity.Archive{
		EntryID:    entryID,
		ArchivedAt: now,
		ArchivedBy: actor,
		Reason:     reason,
		Notes:      strings.TrimSpace(in.Notes),
	}

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		e, err := repos.Entries.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if e == nil {
			return &domain.EntryNotFoundError{IDs: []int64{entryID}}
		}
		current, err := repos.Archives.GetByEntryID(ctx, entryID)
		if err != nil {
			return err
		}
		if current != nil {
			return domain.AlreadyArchived(entryID)
		}
		archive.LocationID = e.LocationID
		archive.LocationCode = e.LocationCode
		if err := repos.Archives.Create(ctx, archive); err != nil {
			return err
		}
		if err := repos.Entries.SetLocation(ctx, []int64{entryID}, nil, actor, now); err != nil {
			return err
		}
		return repos.Audit.CreateBatch(ctx, []*entity.AuditLog{
			locationChange(entryID, e.LocationID, nil, actor, "archivo: "+reason, now),
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("entry_id", entryID).
		Int64("archive_id", archive.ID).
		Str("actor", actor).
		Msg("entrada archivada")
	uc.cache.Invalidate(ports.ScopeEntries, ports.ScopeLocations, ports.ScopeDashboard)
	return &dto.ArchiveEntryResponse{ArchiveID: archive.ID, EntryID: entryID}, nil
}

// RestoreEntry devuelve la entrada a OverrideLocationID o, si no se indica, a la ubicación que tenía
// al archivarse. El registro de archivo se elimina para permitir un archivo posterior.
func (uc *ArchiveEntryUseCase) RestoreEntry(ctx context.Context, actor string, archiveID int64, in dto.RestoreEntryRequest) (*dto.RestoreEntryResponse, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, domain.MissingField("restored_by")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = fmt.Sprintf("restauración del archivo %d", archiveID)
	}
	now := uc.now()
	var (
		entryID int64
		target  *int64
	)

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		a, err := repos.Archives.GetForUpdate(ctx, archiveID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrArchiveNotFound
		}
		entryID = a.EntryID

		target = a.LocationID
		if in.OverrideLocationID != nil {
			target = in.OverrideLocationID
		}
		if target != nil {
			loc, err := activeLocation(ctx, repos, *target)
			if err != nil {
				return err
			}
			id := loc.ID
			target = &id
		}

		e, err := repos.Entries.GetForUpdate(ctx, a.EntryID)
		if err != nil {
			return err
		}
		if e == nil {
			return &domain.EntryNotFoundError{IDs: []int64{a.EntryID}}
		}
		if err := repos.Archives.Delete(ctx, a.ID); err != nil {
			return err
		}
		if err := repos.Entries.SetLocation(ctx, []int64{e.ID}, target, actor, now); err != nil {
			return err
		}
		return repos.Audit.CreateBatch(ctx, []*entity.AuditLog{
			locationChange(e.ID, e.LocationID, target, actor, reason, now),
		})
	})
	if err != nil {
		return nil, err
	}

	ev := uc.log.Info().Int64("entry_id", entryID).Int64("archive_id", archiveID).Str("actor", actor)
	if target != nil {
		ev = ev.Int64("location_id", *target)
	}
	ev.Msg("entrada restaurada")
	uc.cache.Invalidate(ports.ScopeEntries, ports.ScopeLocations, ports.ScopeDashboard)
	return &dto.RestoreEntryResponse{EntryID: entryID, LocationID: target}, nil
}

// ListArchives archivos activos, más recientes primero.
func (uc *ArchiveEntryUseCase) ListArchives(ctx context.Context, limit, offset int) ([]dto.ArchiveResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage(500)
	list, err := uc.archiveRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ArchiveResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.NewArchiveResponse(a))
	}
	return out, nil
}
