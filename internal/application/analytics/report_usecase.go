package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// Tamaño de página al recorrer entradas para listados completos y exportaciones.
const scanPageSize = 500

// Límite por defecto y máximo de la línea de tiempo.
const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// inventoryCSVHeader columnas de la exportación de inventario (CSV y XLSX).
var inventoryCSVHeader = []string{
	"id", "carrier_name", "tracking_number", "return_number", "order_number", "customer_name",
	"expected_carton", "actual_carton", "weight_kg", "stage", "location_code", "received_at",
}

// ReportUseCase consultas de solo lectura: inventario por ubicación, actividad y exportaciones.
type ReportUseCase struct {
	locationRepo repository.LocationRepository
	entryRepo    repository.EntryRepository
	reportRepo   repository.ReportRepository
	docs         DocumentGenerator
	now          func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	locationRepo repository.LocationRepository,
	entryRepo repository.EntryRepository,
	reportRepo repository.ReportRepository,
	docs DocumentGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		locationRepo: locationRepo,
		entryRepo:    entryRepo,
		reportRepo:   reportRepo,
		docs:         docs,
		now:          time.Now,
	}
}

// LocationInventory contenido actual de una ubicación.
func (uc *ReportUseCase) LocationInventory(ctx context.Context, locationID int64) (*dto.LocationInventoryResponse, error) {
	loc, entries, err := uc.locationContents(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := dto.NewLocationResponse(loc)
	n := len(entries)
	out.Occupants = &n
	return &dto.LocationInventoryResponse{Location: out, Entries: dto.NewEntryResponses(entries)}, nil
}

func (uc *ReportUseCase) locationContents(ctx context.Context, locationID int64) (*entity.Location, []*entity.Entry, error) {
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return nil, nil, domain.ErrLocationNotFound
	}
	var entries []*entity.Entry
	err = uc.scanEntries(ctx, repository.EntryFilter{LocationID: &locationID}, func(e *entity.Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return loc, entries, nil
}

// scanEntries recorre todas las páginas de una búsqueda.
func (uc *ReportUseCase) scanEntries(ctx context.Context, filter repository.EntryFilter, fn func(*entity.Entry) error) error {
	filter.Limit = scanPageSize
	filter.Offset = 0
	for {
		list, total, err := uc.entryRepo.Search(ctx, filter)
		if err != nil {
			return err
		}
		for _, e := range list {
			if err := fn(e); err != nil {
				return err
			}
		}
		filter.Offset += len(list)
		if len(list) == 0 || filter.Offset >= total {
			return nil
		}
	}
}

// Activity línea de tiempo combinada (ingresos, movimientos y archivos), más reciente primero.
func (uc *ReportUseCase) Activity(ctx context.Context, since *time.Time, limit int) ([]dto.ActivityResponse, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	list, err := uc.reportRepo.ListActivity(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.ActivityResponse{
			Type:         a.Type,
			EntryID:      a.EntryID,
			LocationCode: a.LocationCode,
			FromCode:     a.FromCode,
			Actor:        a.Actor,
			Detail:       a.Detail,
			OccurredAt:   a.OccurredAt,
		})
	}
	return out, nil
}

// ExportInventoryCSV escribe el inventario activo (no archivado) en CSV; locationID opcional filtra
// por ubicación.
func (uc *ReportUseCase) ExportInventoryCSV(ctx context.Context, w io.Writer, locationID *int64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryCSVHeader); err != nil {
		return err
	}
	archived := false
	err := uc.scanEntries(ctx, repository.EntryFilter{LocationID: locationID, Archived: &archived}, func(e *entity.Entry) error {
		return cw.Write(inventoryRecord(e))
	})
	if err != nil {
		return fmt.Errorf("exportar inventario: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// inventorySheet nombre de la hoja del libro exportado.
const inventorySheet = "Inventario"

// ExportInventoryXLSX igual que ExportInventoryCSV en un libro Excel de una hoja. Los conteos y el peso
// se escriben como números; las celdas sin valor quedan vacías.
func (uc *ReportUseCase) ExportInventoryXLSX(ctx context.Context, w io.Writer, locationID *int64) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return fmt.Errorf("xlsx: hoja: %w", err)
	}
	sw, err := f.NewStreamWriter(inventorySheet)
	if err != nil {
		return fmt.Errorf("xlsx: stream: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: estilo: %w", err)
	}
	if err := sw.SetColWidth(1, len(inventoryCSVHeader), 18); err != nil {
		return fmt.Errorf("xlsx: columnas: %w", err)
	}

	header := make([]interface{}, len(inventoryCSVHeader))
	for i, h := range inventoryCSVHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("xlsx: cabecera: %w", err)
	}

	row := 2
	archived := false
	err = uc.scanEntries(ctx, repository.EntryFilter{LocationID: locationID, Archived: &archived}, func(e *entity.Entry) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return sw.SetRow(cell, inventoryCells(e))
	})
	if err != nil {
		return fmt.Errorf("exportar inventario: %w", err)
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush: %w", err)
	}
	return f.Write(w)
}

func inventoryCells(e *entity.Entry) []interface{} {
	optInt := func(n *int) interface{} {
		if n == nil {
			return ""
		}
		return *n
	}
	var weight interface{} = ""
	if e.WeightKg != nil {
		weight = e.WeightKg.InexactFloat64()
	}
	return []interface{}{
		e.ID,
		e.CarrierName,
		e.TrackingNumber,
		e.ReturnNumber,
		e.OrderNumber,
		e.CustomerName,
		optInt(e.ExpectedCarton),
		optInt(e.ActualCarton),
		weight,
		e.Stage,
		e.LocationCode,
		e.ReceivedAt.Format(time.RFC3339),
	}
}

func inventoryRecord(e *entity.Entry) []string {
	optInt := func(n *int) string {
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	}
	weight := ""
	if e.WeightKg != nil {
		weight = e.WeightKg.String()
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.CarrierName,
		e.TrackingNumber,
		e.ReturnNumber,
		e.OrderNumber,
		e.CustomerName,
		optInt(e.ExpectedCarton),
		optInt(e.ActualCarton),
		weight,
		e.Stage,
		e.LocationCode,
		e.ReceivedAt.Format(time.RFC3339),
	}
}

// LocationSheetPDF hoja de inventario imprimible de una ubicación.
func (uc *ReportUseCase) LocationSheetPDF(ctx context.Context, locationID int64) (pdfBytes []byte, filename string, err error) {
	loc, entries, err := uc.locationContents(ctx, locationID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.docs.LocationSheet(ctx, loc, entries, uc.now())
	if err != nil {
		return nil, "", fmt.Errorf("pdf: hoja de inventario: %w", err)
	}
	return pdfBytes, fmt.Sprintf("inventario-%s.pdf", loc.Code), nil
}

// LocationLabelPDF etiqueta imprimible de una ubicación.
func (uc *ReportUseCase) LocationLabelPDF(ctx context.Context, locationID int64) (pdfBytes []byte, filename string, err error) {
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, "", err
	}
	if loc == nil {
		return nil, "", domain.ErrLocationNotFound
	}
	pdfBytes, err = uc.docs.LocationLabel(ctx, loc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: etiqueta: %w", err)
	}
	return pdfBytes, fmt.Sprintf("etiqueta-%s.pdf", loc.Code), nil
}
