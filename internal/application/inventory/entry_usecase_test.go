package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

func TestCreateEntry_ConUbicacionActiva(t *testing.T) {
	f := newFixture()
	loc := f.store.SeedLocation("A-01", true)

	res, err := f.entries.CreateEntry(context.Background(), actor, dto.CreateEntryRequest{
		CarrierName:    "DHL",
		TrackingNumber: "TRK-1",
		ExpectedCarton: dto.NewLenientInt(3),
		LocationID:     dto.NewLenientInt(loc),
	})
	require.NoError(t, err)
	assert.False(t, res.Downgraded)

	e, ok := f.store.Entry(res.ID)
	require.True(t, ok)
	require.NotNil(t, e.LocationID)
	assert.Equal(t, loc, *e.LocationID)
	assert.Equal(t, entity.StageReceived, e.Stage)
	assert.Equal(t, actor, e.CreatedBy)

	logs := f.auditFor(res.ID, entity.FieldLocationID)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].OldValue)
	assert.NotNil(t, logs[0].NewValue)
	assert.Len(t, f.auditFor(res.ID, entity.FieldCarrierName), 1)
	assert.Empty(t, f.auditFor(res.ID, entity.FieldReturnNumber), "los campos vacíos no se auditan en el alta")
}

func TestCreateEntry_UbicacionInexistenteQuedaSinUbicar(t *testing.T) {
	f := newFixture()

	res, err := f.entries.CreateEntry(context.Background(), actor, dto.CreateEntryRequest{
		CarrierName: "DHL",
		LocationID:  dto.NewLenientInt(9999),
	})
	require.NoError(t, err)
	assert.True(t, res.Downgraded)
	assert.Nil(t, f.locationOf(res.ID))
}

func TestCreateEntry_UbicacionInactivaQuedaSinUbicar(t *testing.T) {
	f := newFixture()
	loc := f.store.SeedLocation("OLD", false)

	res, err := f.entries.CreateEntry(context.Background(), actor, dto.CreateEntryRequest{
		CarrierName: "UPS",
		LocationID:  dto.NewLenientInt(loc),
	})
	require.NoError(t, err)
	assert.True(t, res.Downgraded)
	assert.Nil(t, f.locationOf(res.ID))
}

func TestCreateEntry_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.entries.CreateEntry(ctx, actor, dto.CreateEntryRequest{CarrierName: "  "})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = f.entries.CreateEntry(ctx, actor, dto.CreateEntryRequest{CarrierName: "DHL", ActualCarton: dto.NewLenientInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Empty(t, f.store.AuditLogs())
}

func TestCreateEntry_SinActorUsaSystem(t *testing.T) {
	f := newFixture()

	res, err := f.entries.CreateEntry(context.Background(), "", dto.CreateEntryRequest{CarrierName: "FedEx", Stage: "inspected"})
	require.NoError(t, err)

	e, _ := f.store.Entry(res.ID)
	assert.Equal(t, "system", e.CreatedBy)
	assert.Equal(t, entity.StageInspected, e.Stage)
}

func TestCreateEntry_FalloDeBitacoraNoDejaLaEntrada(t *testing.T) {
	f := newFixture()
	f.store.FailAuditWrites = assert.AnError

	_, err := f.entries.CreateEntry(context.Background(), actor, dto.CreateEntryRequest{CarrierName: "DHL"})
	require.ErrorIs(t, err, assert.AnError)

	list, total, err := f.store.Repos().Entries.Search(context.Background(), repository.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestUpdateEntry_AuditaSoloLosCamposCambiados(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.entries.CreateEntry(ctx, actor, dto.CreateEntryRequest{CarrierName: "DHL", ExpectedCarton: dto.NewLenientInt(2)})
	require.NoError(t, err)
	before := len(f.store.AuditLogs())

	upd, err := f.entries.UpdateEntry(ctx, "jperez", res.ID, dto.UpdateEntryRequest{
		CarrierName:    ptr("DHL"),
		ExpectedCarton: ptr(4),
		Remarks:        ptr("caja golpeada"),
		ChangeReason:   "reconteo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, upd.AuditCount, "carrier no cambió y remarks no se audita")

	logs := f.auditFor(res.ID, entity.FieldExpectedCarton)
	require.Len(t, logs, 2)
	last := logs[1]
	assert.Equal(t, "2", *last.OldValue)
	assert.Equal(t, "4", *last.NewValue)
	assert.Equal(t, "jperez", last.ChangedBy)
	assert.Equal(t, "reconteo", last.ChangeReason)
	assert.Len(t, f.store.AuditLogs(), before+1)

	e, _ := f.store.Entry(res.ID)
	assert.Equal(t, "caja golpeada", e.Remarks)
}

func TestUpdateEntry_CantidadNegativaNoEscribeNada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.entries.CreateEntry(ctx, actor, dto.CreateEntryRequest{CarrierName: "DHL", ActualCarton: dto.NewLenientInt(5)})
	require.NoError(t, err)
	before := len(f.store.AuditLogs())

	_, err = f.entries.UpdateEntry(ctx, actor, res.ID, dto.UpdateEntryRequest{ActualCarton: ptr(-1), ChangeReason: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	e, _ := f.store.Entry(res.ID)
	assert.Equal(t, 5, *e.ActualCarton)
	assert.Len(t, f.store.AuditLogs(), before)
}

func TestUpdateEntry_MotivoObligatorio(t *testing.T) {
	f := newFixture()
	id := f.store.SeedEntry("DHL", nil)

	_, err := f.entries.UpdateEntry(context.Background(), actor, id, dto.UpdateEntryRequest{Stage: ptr("INSPECTED")})
	assert.ErrorIs(t, err, domain.ErrMissingChangeReason)
}

func TestUpdateEntry_Inexistente(t *testing.T) {
	f := newFixture()

	_, err := f.entries.UpdateEntry(context.Background(), actor, 404, dto.UpdateEntryRequest{Stage: ptr("INSPECTED"), ChangeReason: "x"})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestUpdateEntry_NoCambiaLaUbicacion(t *testing.T) {
	f := newFixture()
	loc := f.store.SeedLocation("A-01", true)
	id := f.store.SeedEntry("DHL", &loc)

	_, err := f.entries.UpdateEntry(context.Background(), actor, id, dto.UpdateEntryRequest{Stage: ptr("restocked"), ChangeReason: "x"})
	require.NoError(t, err)

	e, _ := f.store.Entry(id)
	assert.Equal(t, loc, *e.LocationID)
	assert.Equal(t, entity.StageRestocked, e.Stage)
}

func TestGetAuditTrail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.entries.CreateEntry(ctx, actor, dto.CreateEntryRequest{CarrierName: "DHL"})
	require.NoError(t, err)

	trail, err := f.entries.GetAuditTrail(ctx, res.ID)
	require.NoError(t, err)
	require.NotEmpty(t, trail)
	assert.Equal(t, entity.FieldCarrierName, trail[0].FieldName)

	_, err = f.entries.GetAuditTrail(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSearchEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	loc := f.store.SeedLocation("A-01", true)
	f.store.SeedEntry("DHL Express", &loc)
	f.store.SeedEntry("UPS", nil)
	f.store.SeedEntry("dhl", nil)

	res, err := f.entries.SearchEntries(ctx, repository.EntryFilter{Carrier: "dhl"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page.Total)
	assert.Equal(t, 20, res.Page.Limit)

	res, err = f.entries.SearchEntries(ctx, repository.EntryFilter{LocationID: &loc})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "A-01", res.Items[0].LocationCode)

	recent, err := f.entries.ListRecentEntries(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
