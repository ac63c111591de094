package analytics_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Returns-api/internal/application/analytics"
	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// fakeDocs registra lo que se pidió imprimir.
type fakeDocs struct {
	sheetEntries int
	labelCode    string
}

func (f *fakeDocs) LocationSheet(_ context.Context, _ *entity.Location, entries []*entity.Entry, _ time.Time) ([]byte, error) {
	f.sheetEntries = len(entries)
	return []byte("%PDF-sheet"), nil
}

func (f *fakeDocs) LocationLabel(_ context.Context, loc *entity.Location) ([]byte, error) {
	f.labelCode = loc.Code
	return []byte("%PDF-label"), nil
}

func newReportUseCase(store *inventorytest.Store, docs analytics.DocumentGenerator) *analytics.ReportUseCase {
	repos := store.Repos()
	return analytics.NewReportUseCase(repos.Locations, repos.Entries, store.Reports(), docs)
}

func TestLocationInventory(t *testing.T) {
	store := inventorytest.NewStore()
	l1 := store.SeedLocation("L1", true)
	store.SeedEntry("DHL", &l1)
	store.SeedEntry("UPS", &l1)
	store.SeedEntry("FedEx", nil)

	uc := newReportUseCase(store, &fakeDocs{})
	res, err := uc.LocationInventory(context.Background(), l1)
	require.NoError(t, err)
	assert.Equal(t, "L1", res.Location.Code)
	assert.Equal(t, 2, *res.Location.Occupants)
	assert.Len(t, res.Entries, 2)

	_, err = uc.LocationInventory(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestActivity_CombinaEventos(t *testing.T) {
	store := inventorytest.NewStore()
	ctx := context.Background()
	cache, log := ports.NopCache{}, zerolog.Nop()
	repos := store.Repos()
	entries := inventory.NewEntryUseCase(store, repos.Entries, repos.Audit, cache, log)
	moves := inventory.NewMoveEntriesUseCase(store, repos.Movements, cache, log)
	archives := inventory.NewArchiveEntryUseCase(store, repos.Archives, cache, log)

	l1 := store.SeedLocation("L1", true)
	created, err := entries.CreateEntry(ctx, "recepcion", dto.CreateEntryRequest{CarrierName: "DHL"})
	require.NoError(t, err)
	_, err = moves.MoveSingle(ctx, "mlopez", dto.MoveSingleRequest{EntryID: created.ID, ToLocationID: &l1, Reason: "ubicar"})
	require.NoError(t, err)
	_, err = archives.ArchiveEntry(ctx, "jperez", created.ID, dto.ArchiveEntryRequest{Reason: "devuelta al cliente"})
	require.NoError(t, err)

	uc := newReportUseCase(store, &fakeDocs{})
	list, err := uc.Activity(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byType := map[string]dto.ActivityResponse{}
	for _, a := range list {
		byType[a.Type] = a
	}
	assert.Equal(t, "DHL", byType[entity.ActivityInbound].Detail)
	assert.Equal(t, "L1", byType[entity.ActivityMovement].LocationCode)
	assert.Equal(t, "mlopez", byType[entity.ActivityMovement].Actor)
	assert.Equal(t, "L1", byType[entity.ActivityArchive].LocationCode)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].OccurredAt.After(list[i-1].OccurredAt), "orden descendente por fecha")
	}

	future := time.Now().Add(time.Hour)
	list, err = uc.Activity(ctx, &future, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExportInventoryCSV_ExcluyeArchivadas(t *testing.T) {
	store := inventorytest.NewStore()
	ctx := context.Background()
	l1 := store.SeedLocation("L1", true)
	store.SeedEntry("DHL", &l1)
	store.SeedEntry("UPS", nil)
	gone := store.SeedEntry("FedEx", nil)
	require.NoError(t, store.Repos().Archives.Create(ctx, &entity.Archive{EntryID: gone}))

	uc := newReportUseCase(store, &fakeDocs{})
	var buf bytes.Buffer
	require.NoError(t, uc.ExportInventoryCSV(ctx, &buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "carrier_name", records[0][1])

	buf.Reset()
	require.NoError(t, uc.ExportInventoryCSV(ctx, &buf, &l1))
	records, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "DHL", records[1][1])
	assert.Equal(t, "L1", records[1][10])
}

func TestExportInventoryXLSX_LibroLegible(t *testing.T) {
	store := inventorytest.NewStore()
	ctx := context.Background()
	l1 := store.SeedLocation("L1", true)
	cartons := 3
	weight := decimal.RequireFromString("12.5")
	received := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	placed := &entity.Entry{
		CarrierName:  "DHL",
		ActualCarton: &cartons,
		WeightKg:     &weight,
		LocationID:   &l1,
		ReceivedAt:   received,
	}
	require.NoError(t, store.Repos().Entries.Create(ctx, placed))
	store.SeedEntry("UPS", nil)
	gone := store.SeedEntry("FedEx", nil)
	require.NoError(t, store.Repos().Archives.Create(ctx, &entity.Archive{EntryID: gone}))

	uc := newReportUseCase(store, &fakeDocs{})
	var buf bytes.Buffer
	require.NoError(t, uc.ExportInventoryXLSX(ctx, &buf, nil))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Inventario"}, book.GetSheetList())
	rows, err := book.GetRows("Inventario")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "carrier_name", rows[0][1])
	assert.Equal(t, "received_at", rows[0][11])

	var dhl []string
	for _, r := range rows[1:] {
		if r[1] == "DHL" {
			dhl = r
		}
	}
	require.NotNil(t, dhl)
	assert.Equal(t, "3", dhl[7])
	assert.Equal(t, "12.5", dhl[8])
	assert.Equal(t, "L1", dhl[10])
	assert.Equal(t, received.Format(time.RFC3339), dhl[11])

	buf.Reset()
	require.NoError(t, uc.ExportInventoryXLSX(ctx, &buf, &l1))
	filtered, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer filtered.Close()
	rows, err = filtered.GetRows("Inventario")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "DHL", rows[1][1])
}

func TestLocationPDFs(t *testing.T) {
	store := inventorytest.NewStore()
	l1 := store.SeedLocation("R1-B2", true)
	store.SeedEntry("DHL", &l1)
	docs := &fakeDocs{}
	uc := newReportUseCase(store, docs)

	body, name, err := uc.LocationSheetPDF(context.Background(), l1)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Equal(t, "inventario-R1-B2.pdf", name)
	assert.Equal(t, 1, docs.sheetEntries)

	_, name, err = uc.LocationLabelPDF(context.Background(), l1)
	require.NoError(t, err)
	assert.Equal(t, "etiqueta-R1-B2.pdf", name)
	assert.Equal(t, "R1-B2", docs.labelCode)

	_, _, err = uc.LocationLabelPDF(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}
