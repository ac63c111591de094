package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

func TestArchiveRestore_VuelveALaUbicacionOriginal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	id := f.store.SeedEntry("DHL", &l1)

	arch, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "cliente retiró", Notes: "firmado"})
	require.NoError(t, err)
	assert.Nil(t, f.locationOf(id))
	assert.Equal(t, 1, f.store.ArchiveCount(id))

	list, err := f.archives.ListArchives(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "L1", list[0].LocationCode)

	res, err := f.archives.RestoreEntry(ctx, "jperez", arch.ArchiveID, dto.RestoreEntryRequest{})
	require.NoError(t, err)
	require.NotNil(t, res.LocationID)
	assert.Equal(t, l1, *res.LocationID)
	assert.Equal(t, l1, *f.locationOf(id))
	assert.Zero(t, f.store.ArchiveCount(id))
	assert.Empty(t, f.store.Movements(), "restaurar no es un movimiento")

	logs := f.auditFor(id, entity.FieldLocationID)
	require.Len(t, logs, 2)
	assert.Equal(t, "archivo: cliente retiró", logs[0].ChangeReason)
	assert.Nil(t, logs[0].NewValue)
	assert.Nil(t, logs[1].OldValue)
	assert.Equal(t, "jperez", logs[1].ChangedBy)

	// Tras restaurar se puede volver a archivar.
	_, err = f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "otra vez"})
	require.NoError(t, err)
}

func TestArchiveEntry_YaArchivada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.store.SeedEntry("DHL", nil)

	_, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "dañada"})
	require.NoError(t, err)

	_, err = f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "dañada"})
	assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Equal(t, 1, f.store.ArchiveCount(id))
}

func TestArchiveEntry_ArchivoConfirmadoDuranteElBloqueo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	id := f.store.SeedEntry("DHL", &l1)
	_, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "dañada"})
	require.NoError(t, err)
	f.store.StaleArchivedFlag = true

	_, err = f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "otra"})
	assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
	assert.Equal(t, 1, f.store.ArchiveCount(id))
	assert.Len(t, f.auditFor(id, entity.FieldLocationID), 1)
}

// El repositorio rechaza el segundo archivo con el mismo error que la comprobación previa.
func TestArchiveRepository_CreateDuplicadoMismoError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.store.SeedEntry("DHL", nil)
	repos := f.store.Repos()

	require.NoError(t, repos.Archives.Create(ctx, &entity.Archive{EntryID: id, ArchivedBy: actor, Reason: "x"}))
	err := repos.Archives.Create(ctx, &entity.Archive{EntryID: id, ArchivedBy: actor, Reason: "y"})
	assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
	var nf *domain.EntryNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{id}, nf.IDs)
}

func TestArchiveEntry_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.store.SeedEntry("DHL", nil)

	_, err := f.archives.ArchiveEntry(ctx, "", id, dto.ArchiveEntryRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: " "})
	var missing *domain.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "reason", missing.Field)

	_, err = f.archives.ArchiveEntry(ctx, actor, 999, dto.ArchiveEntryRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Zero(t, f.store.ArchiveCount(id))
}

func TestArchiveEntry_FalloRevierte(t *testing.T) {
	f := newFixture()
	l1 := f.store.SeedLocation("L1", true)
	id := f.store.SeedEntry("DHL", &l1)
	f.store.FailAuditWrites = assert.AnError

	_, err := f.archives.ArchiveEntry(context.Background(), actor, id, dto.ArchiveEntryRequest{Reason: "x"})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, l1, *f.locationOf(id))
	assert.Zero(t, f.store.ArchiveCount(id))
}

func TestRestoreEntry_ConUbicacionAlternativa(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	id := f.store.SeedEntry("DHL", &l1)
	arch, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "x"})
	require.NoError(t, err)

	res, err := f.archives.RestoreEntry(ctx, actor, arch.ArchiveID, dto.RestoreEntryRequest{OverrideLocationID: &l2})
	require.NoError(t, err)
	assert.Equal(t, l2, *res.LocationID)
	assert.Equal(t, l2, *f.locationOf(id))
}

func TestRestoreEntry_UbicacionOriginalInactiva(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	id := f.store.SeedEntry("DHL", &l1)
	arch, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "x"})
	require.NoError(t, err)

	loc, err := f.store.Repos().Locations.GetByID(ctx, l1)
	require.NoError(t, err)
	loc.IsActive = false
	require.NoError(t, f.store.Repos().Locations.Update(ctx, loc))

	_, err = f.archives.RestoreEntry(ctx, actor, arch.ArchiveID, dto.RestoreEntryRequest{})
	assert.ErrorIs(t, err, domain.ErrLocationInactive)
	assert.Equal(t, 1, f.store.ArchiveCount(id), "el archivo sigue vigente")
}

func TestRestoreEntry_SinUbicacionPrevia(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.store.SeedEntry("DHL", nil)
	arch, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "x"})
	require.NoError(t, err)

	res, err := f.archives.RestoreEntry(ctx, actor, arch.ArchiveID, dto.RestoreEntryRequest{})
	require.NoError(t, err)
	assert.Nil(t, res.LocationID)
	assert.Nil(t, f.locationOf(id))
	assert.Zero(t, f.store.ArchiveCount(id))
}

func TestRestoreEntry_ArchivoInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.archives.RestoreEntry(context.Background(), actor, 42, dto.RestoreEntryRequest{})
	assert.ErrorIs(t, err, domain.ErrArchiveNotFound)
}
