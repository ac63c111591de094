package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// Actor usado cuando el alta llega sin identidad (procesos internos).
const systemActor = "system"

// Motivo registrado en la bitácora al dar de alta una entrada.
const createReason = "alta de entrada"

// EntryUseCase alta, edición y consulta de entradas. Las escrituras van siempre en una transacción
// junto con sus filas de bitácora.
type EntryUseCase struct {
	txRunner  TxRunner
	entryRepo repository.EntryRepository
	auditRepo repository.AuditLogRepository
	cache     ports.CacheInvalidator
	log       zerolog.Logger
	now       func() time.Time
}

// NewEntryUseCase construye el caso de uso.
func NewEntryUseCase(
	txRunner TxRunner,
	entryRepo repository.EntryRepository,
	auditRepo repository.AuditLogRepository,
	cache ports.CacheInvalidator,
	log zerolog.Logger,
) *EntryUseCase {
	return &EntryUseCase{
		txRunner:  txRunner,
		entryRepo: entryRepo,
		auditRepo: auditRepo,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// CreateEntry registra una entrada recibida. Si location_id no existe o está inactiva la entrada
// queda sin ubicar y se deja un warning en el log; no es un error para el llamador.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, actor string, in dto.CreateEntryRequest) (*dto.CreateEntryResponse, error) {
	e, err := newEntryFromRequest(in)
	if err != nil {
		return nil, err
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = systemActor
	}
	now := uc.now()
	requested := in.LocationID.Int64()
	downgraded := false

	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		if requested != nil {
			loc, err := repos.Locations.GetForShare(ctx, *requested)
			if err != nil {
				return err
			}
			if loc == nil || !loc.IsActive {
				downgraded = true
			} else {
				e.LocationID = requested
				e.LocationCode = loc.Code
			}
		}
		return insertEntry(ctx, repos, e, actor, now)
	})
	if err != nil {
		return nil, err
	}
	if downgraded {
		uc.log.Warn().
			Int64("entry_id", e.ID).
			Int64("location_id", *requested).
			Msg("ubicación inexistente o inactiva en el alta; la entrada queda sin ubicar")
	}
	uc.cache.Invalidate(ports.ScopeEntries, ports.ScopeLocations, ports.ScopeDashboard)
	return &dto.CreateEntryResponse{ID: e.ID, Downgraded: downgraded}, nil
}

// newEntryFromRequest valida el payload y construye la entidad sin ubicación.
func newEntryFromRequest(in dto.CreateEntryRequest) (*entity.Entry, error) {
	e := &entity.Entry{
		CarrierName:    strings.TrimSpace(in.CarrierName),
		TrackingNumber: strings.TrimSpace(in.TrackingNumber),
		ReturnNumber:   strings.TrimSpace(in.ReturnNumber),
		OrderNumber:    strings.TrimSpace(in.OrderNumber),
		CustomerName:   strings.TrimSpace(in.CustomerName),
		ExpectedCarton: in.ExpectedCarton.Int(),
		ActualCarton:   in.ActualCarton.Int(),
		WeightKg:       in.WeightKg.Decimal(),
		Stage:          strings.ToUpper(strings.TrimSpace(in.Stage)),
		Remarks:        strings.TrimSpace(in.Remarks),
	}
	if e.CarrierName == "" {
		return nil, domain.MissingField("carrier_name")
	}
	if err := checkQuantities(e.ExpectedCarton, e.ActualCarton, e.WeightKg); err != nil {
		return nil, err
	}
	if e.Stage == "" {
		e.Stage = entity.StageReceived
	}
	if in.ReceivedAt != nil {
		e.ReceivedAt = *in.ReceivedAt
	}
	return e, nil
}

// insertEntry persiste la entrada y una fila de bitácora por campo auditado poblado.
func insertEntry(ctx context.Context, repos TxRepos, e *entity.Entry, actor string, now time.Time) error {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = now
	}
	e.CreatedAt, e.UpdatedAt = now, now
	e.CreatedBy, e.UpdatedBy = actor, actor
	if err := repos.Entries.Create(ctx, e); err != nil {
		return err
	}
	return repos.Audit.CreateBatch(ctx, diffEntries(nil, e, actor, createReason, now))
}

func checkQuantities(expected, actual *int, weight *decimal.Decimal) error {
	if expected != nil && *expected < 0 {
		return fmt.Errorf("expected_carton: %w", domain.ErrInvalidQuantity)
	}
	if actual != nil && *actual < 0 {
		return fmt.Errorf("actual_carton: %w", domain.ErrInvalidQuantity)
	}
	if weight != nil && weight.IsNegative() {
		return fmt.Errorf("weight_kg: %w", domain.ErrInvalidQuantity)
	}
	return nil
}

// UpdateEntry aplica los campos presentes y registra en la bitácora cada campo auditado que cambió.
// La ubicación no se modifica por esta vía: solo los motores de movimiento y archivo la cambian.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, actor string, id int64, in dto.UpdateEntryRequest) (*dto.UpdateEntryResponse, error) {
	reason := strings.TrimSpace(in.ChangeReason)
	if reason == "" {
		return nil, domain.ErrMissingChangeReason
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, domain.MissingField("actor")
	}
	if err := checkQuantities(in.ExpectedCarton, in.ActualCarton, in.WeightKg); err != nil {
		return nil, err
	}
	if in.CarrierName != nil && strings.TrimSpace(*in.CarrierName) == "" {
		return nil, domain.MissingField("carrier_name")
	}
	now := uc.now()
	auditCount := 0

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		before, err := repos.Entries.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if before == nil {
			return &domain.EntryNotFoundError{IDs: []int64{id}}
		}
		after := *before
		applyUpdate(&after, in)
		after.UpdatedAt = now
		after.UpdatedBy = actor

		logs := diffEntries(before, &after, actor, reason, now)
		if err := repos.Entries.Update(ctx, &after); err != nil {
			return err
		}
		if err := repos.Audit.CreateBatch(ctx, logs); err != nil {
			return err
		}
		auditCount = len(logs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ports.ScopeEntries, ports.ScopeDashboard)
	return &dto.UpdateEntryResponse{ID: id, AuditCount: auditCount}, nil
}

func applyUpdate(e *entity.Entry, in dto.UpdateEntryRequest) {
	setText := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setText(&e.CarrierName, in.CarrierName)
	setText(&e.TrackingNumber, in.TrackingNumber)
	setText(&e.ReturnNumber, in.ReturnNumber)
	setText(&e.OrderNumber, in.OrderNumber)
	setText(&e.CustomerName, in.CustomerName)
	setText(&e.Remarks, in.Remarks)
	if in.Stage != nil {
		e.Stage = strings.ToUpper(strings.TrimSpace(*in.Stage))
	}
	if in.ExpectedCarton != nil {
		v := *in.ExpectedCarton
		e.ExpectedCarton = &v
	}
	if in.ActualCarton != nil {
		v := *in.ActualCarton
		e.ActualCarton = &v
	}
	if in.WeightKg != nil {
		v := *in.WeightKg
		e.WeightKg = &v
	}
}

// GetEntry obtiene una entrada por ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id int64) (*dto.EntryResponse, error) {
	e, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &domain.EntryNotFoundError{IDs: []int64{id}}
	}
	out := dto.NewEntryResponse(e)
	return &out, nil
}

// ListRecentEntries últimas entradas registradas (limit entre 1 y 200, 20 por defecto).
func (uc *EntryUseCase) ListRecentEntries(ctx context.Context, limit int) ([]dto.EntryResponse, error) {
	page := dto.PageRequest{Limit: limit}
	page.DefaultPage(200)
	list, err := uc.entryRepo.ListRecent(ctx, page.Limit)
	if err != nil {
		return nil, err
	}
	return dto.NewEntryResponses(list), nil
}

// SearchEntries búsqueda paginada por transportista, números identificadores, ubicación, etapa o archivo.
func (uc *EntryUseCase) SearchEntries(ctx context.Context, filter repository.EntryFilter) (*dto.EntryListResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage(200)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	filter.Stage = strings.ToUpper(strings.TrimSpace(filter.Stage))

	list, total, err := uc.entryRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.EntryListResponse{
		Items: dto.NewEntryResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// GetAuditTrail historial de cambios de una entrada, en orden cronológico.
func (uc *EntryUseCase) GetAuditTrail(ctx context.Context, id int64) ([]dto.AuditLogResponse, error) {
	e, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &domain.EntryNotFoundError{IDs: []int64{id}}
	}
	logs, err := uc.auditRepo.ListByEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.NewAuditLogResponse(l))
	}
	return out, nil
}
