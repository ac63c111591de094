// Package analytics contiene los reportes de solo lectura sobre entradas, movimientos y archivos:
// dashboard, inventario por ubicación, línea de tiempo y exportaciones.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

const dashboardTopLocations = 5 // número de ubicaciones en el widget del dashboard

// DashboardUseCase genera el resumen operativo del día y del mes en curso.
//
// Fuente de datos: ReportRepository (consultas read-only).
type DashboardUseCase struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, now: time.Now}
}

// WithClock reemplaza el reloj usado para calcular "hoy" y "mes en curso".
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cinco consultas en paralelo:
//  1. CountEntriesByState          → ubicadas / sin ubicar / archivadas
//  2. CountMovements(hoy)          → MovementsToday
//  3. CountMovements(mes)          → MovementsMonth
//  4. CountArchives(mes)           → ArchivesMonth
//  5. TopLocationsByOccupancy(5)   → TopLocations
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Hoy: [00:00, mañana 00:00)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	// Mes en curso: [día 1 00:00, mañana 00:00)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type countResult struct {
		n   int
		err error
	}
	type stateResult struct {
		counts repository.EntryStateCounts
		err    error
	}
	type topResult struct {
		rows []repository.LocationOccupancyResult
		err  error
	}

	stateCh := make(chan stateResult, 1)
	movTodayCh := make(chan countResult, 1)
	movMonthCh := make(chan countResult, 1)
	archMonthCh := make(chan countResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		c, err := uc.reportRepo.CountEntriesByState(ctx)
		stateCh <- stateResult{c, err}
	}()
	go func() {
		n, err := uc.reportRepo.CountMovements(ctx, todayStart, todayEnd)
		movTodayCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.reportRepo.CountMovements(ctx, monthStart, todayEnd)
		movMonthCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.reportRepo.CountArchives(ctx, monthStart, todayEnd)
		archMonthCh <- countResult{n, err}
	}()
	go func() {
		rows, err := uc.reportRepo.TopLocationsByOccupancy(ctx, dashboardTopLocations)
		topCh <- topResult{rows, err}
	}()

	state := <-stateCh
	movToday := <-movTodayCh
	movMonth := <-movMonthCh
	archMonth := <-archMonthCh
	top := <-topCh

	if state.err != nil {
		return nil, fmt.Errorf("dashboard: conteo de entradas: %w", state.err)
	}
	if movToday.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos de hoy: %w", movToday.err)
	}
	if movMonth.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos del mes: %w", movMonth.err)
	}
	if archMonth.err != nil {
		return nil, fmt.Errorf("dashboard: archivos del mes: %w", archMonth.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top ubicaciones: %w", top.err)
	}

	locations := make([]dto.LocationOccupancyDTO, 0, len(top.rows))
	for _, r := range top.rows {
		locations = append(locations, dto.LocationOccupancyDTO{
			LocationID: r.LocationID,
			Code:       r.Code,
			Area:       r.Area,
			Occupants:  r.Occupants,
		})
	}

	return &dto.DashboardSummaryDTO{
		PlacedEntries:   state.counts.Placed,
		UnplacedEntries: state.counts.Unplaced,
		ArchivedEntries: state.counts.Archived,
		MovementsToday:  movToday.n,
		MovementsMonth:  movMonth.n,
		ArchivesMonth:   archMonth.n,
		TopLocations:    locations,
		MonthLabel:      monthLabel(now),
		GeneratedAt:     now,
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
