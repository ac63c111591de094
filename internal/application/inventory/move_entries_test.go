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
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

func TestMoveSingle_DesdeSinUbicar(t *testing.T) {
	f := newFixture()
	to := f.store.SeedLocation("A-01", true)
	id := f.store.SeedEntry("DHL", nil)

	res, err := f.moves.MoveSingle(context.Background(), actor, dto.MoveSingleRequest{EntryID: id, ToLocationID: &to, Reason: "ubicación inicial"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MovedCount)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, to, *f.locationOf(id))

	movs := f.store.Movements()
	require.Len(t, movs, 1)
	assert.Nil(t, movs[0].FromLocationID)
	assert.Equal(t, "A-01", movs[0].ToLocationCode)
	assert.Equal(t, actor, movs[0].MovedBy)

	logs := f.auditFor(id, entity.FieldLocationID)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].OldValue)
	assert.Equal(t, "ubicación inicial", logs[0].ChangeReason)
}

func TestMoveSingle_OrigenDesactualizado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	l3 := f.store.SeedLocation("L3", true)
	id := f.store.SeedEntry("DHL", &l1)

	_, err := f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, FromLocationID: &l1, ToLocationID: &l2})
	require.NoError(t, err)

	// Un segundo operador con la vista vieja (la entrada aún en L1).
	_, err = f.moves.MoveSingle(ctx, "jperez", dto.MoveSingleRequest{EntryID: id, FromLocationID: &l1, ToLocationID: &l3})
	require.ErrorIs(t, err, domain.ErrSourceLocationMismatch)

	var mismatch *domain.SourceMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []int64{id}, mismatch.EntryIDs)
	assert.Equal(t, l2, *f.locationOf(id))
	assert.Len(t, f.store.Movements(), 1)
}

func TestMoveSingle_MismaUbicacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	id := f.store.SeedEntry("DHL", &l1)

	_, err := f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, FromLocationID: &l1, ToLocationID: ptr(l1)})
	assert.ErrorIs(t, err, domain.ErrSameLocation)

	_, err = f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id})
	assert.ErrorIs(t, err, domain.ErrSameLocation, "origen y destino nulos también son la misma ubicación")
	assert.Empty(t, f.store.Movements())
}

func TestMoveSingle_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	off := f.store.SeedLocation("OFF", false)
	id := f.store.SeedEntry("DHL", nil)

	_, err := f.moves.MoveSingle(ctx, "", dto.MoveSingleRequest{EntryID: id, ToLocationID: &l1})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: 777, ToLocationID: &l1})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	_, err = f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, ToLocationID: ptr(int64(9999))})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, ToLocationID: &off})
	assert.ErrorIs(t, err, domain.ErrLocationInactive)

	assert.Nil(t, f.locationOf(id))
	assert.Empty(t, f.store.Movements())
	assert.Empty(t, f.auditFor(id, entity.FieldLocationID))
}

func TestMoveSingle_EntradaArchivada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	id := f.store.SeedEntry("DHL", &l1)
	_, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "dañada"})
	require.NoError(t, err)

	_, err = f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, ToLocationID: &l2})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Nil(t, f.locationOf(id))
}

// La lectura bloqueante puede traer Archived=false si el archivo se confirmó mientras se esperaba
// el bloqueo; el movimiento debe rechazarse igual.
func TestMoveSingle_ArchivoConfirmadoDuranteElBloqueo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l2 := f.store.SeedLocation("L2", true)
	id := f.store.SeedEntry("DHL", nil)
	_, err := f.archives.ArchiveEntry(ctx, actor, id, dto.ArchiveEntryRequest{Reason: "dañada"})
	require.NoError(t, err)
	f.store.StaleArchivedFlag = true

	_, err = f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, ToLocationID: &l2})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Nil(t, f.locationOf(id))
	assert.Empty(t, f.store.Movements())
}

func TestMoveMultiple_ArchivoConfirmadoDuranteElBloqueo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l2 := f.store.SeedLocation("L2", true)
	a := f.store.SeedEntry("A", nil)
	b := f.store.SeedEntry("B", nil)
	_, err := f.archives.ArchiveEntry(ctx, actor, b, dto.ArchiveEntryRequest{Reason: "dañada"})
	require.NoError(t, err)
	f.store.StaleArchivedFlag = true

	_, err = f.moves.MoveMultiple(ctx, actor, dto.MoveMultipleRequest{EntryIDs: []int64{a, b}, ToLocationID: &l2})
	var nf *domain.EntryNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{b}, nf.IDs)
	assert.Nil(t, f.locationOf(a))
	assert.Nil(t, f.locationOf(b))
	assert.Empty(t, f.store.Movements())
}

func TestMoveMultiple_TodoONada(t *testing.T) {
	f := newFixture()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	l3 := f.store.SeedLocation("L3", true)
	a := f.store.SeedEntry("A", &l1)
	b := f.store.SeedEntry("B", &l1)
	c := f.store.SeedEntry("C", &l2)

	_, err := f.moves.MoveMultiple(context.Background(), actor, dto.MoveMultipleRequest{
		EntryIDs:       []int64{a, b, c},
		FromLocationID: &l1,
		ToLocationID:   &l3,
	})
	require.ErrorIs(t, err, domain.ErrSourceLocationMismatch)

	var mismatch *domain.SourceMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Mismatched)
	assert.Equal(t, []int64{c}, mismatch.EntryIDs)

	assert.Equal(t, l1, *f.locationOf(a))
	assert.Equal(t, l1, *f.locationOf(b))
	assert.Equal(t, l2, *f.locationOf(c))
	assert.Empty(t, f.store.Movements())
}

func TestMoveMultiple_MismoLoteYSinDuplicados(t *testing.T) {
	f := newFixture()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	a := f.store.SeedEntry("A", &l1)
	b := f.store.SeedEntry("B", &l1)

	res, err := f.moves.MoveMultiple(context.Background(), actor, dto.MoveMultipleRequest{
		EntryIDs:       []int64{b, a, b},
		FromLocationID: &l1,
		ToLocationID:   &l2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.MovedCount)
	assert.Equal(t, []int64{a, b}, res.EntryIDs)

	movs := f.store.Movements()
	require.Len(t, movs, 2)
	assert.Equal(t, movs[0].BatchID, movs[1].BatchID)
	assert.Equal(t, res.BatchID, movs[0].BatchID)
}

func TestMoveMultiple_EntradaInexistente(t *testing.T) {
	f := newFixture()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	a := f.store.SeedEntry("A", &l1)

	_, err := f.moves.MoveMultiple(context.Background(), actor, dto.MoveMultipleRequest{
		EntryIDs:       []int64{a, 5000},
		FromLocationID: &l1,
		ToLocationID:   &l2,
	})
	var nf *domain.EntryNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{5000}, nf.IDs)
	assert.Equal(t, l1, *f.locationOf(a))

	_, err = f.moves.MoveMultiple(context.Background(), actor, dto.MoveMultipleRequest{EntryIDs: []int64{0, -3}, ToLocationID: &l2})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestMoveBulk_VaciaElOrigen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l1 := f.store.SeedLocation("L1", true)
	l2 := f.store.SeedLocation("L2", true)
	var ids []int64
	for range 5 {
		ids = append(ids, f.store.SeedEntry("DHL", &l1))
	}

	res, err := f.moves.MoveBulk(ctx, actor, dto.MoveBulkRequest{FromLocationID: &l1, ToLocationID: &l2, Reason: "reorganización"})
	require.NoError(t, err)
	assert.Equal(t, 5, res.MovedCount)

	for _, id := range ids {
		assert.Equal(t, l2, *f.locationOf(id))
	}
	n, err := f.store.Repos().Entries.CountAtLocation(ctx, l1)
	require.NoError(t, err)
	assert.Zero(t, n)

	movs := f.store.Movements()
	require.Len(t, movs, 5)
	for _, m := range movs {
		assert.Equal(t, res.BatchID, m.BatchID)
		assert.Equal(t, l1, *m.FromLocationID)
		assert.Equal(t, "L1", m.FromLocationCode)
	}

	_, err = f.moves.MoveBulk(ctx, actor, dto.MoveBulkRequest{FromLocationID: &l1, ToLocationID: &l2})
	assert.ErrorIs(t, err, domain.ErrNoEntriesAtSource)
}

func TestMoveBulk_RequiereOrigen(t *testing.T) {
	f := newFixture()
	l2 := f.store.SeedLocation("L2", true)

	_, err := f.moves.MoveBulk(context.Background(), actor, dto.MoveBulkRequest{ToLocationID: &l2})
	var missing *domain.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "from_location_id", missing.Field)
}

func TestMove_FalloDeAlmacenamientoRevierteTodo(t *testing.T) {
	cases := []struct {
		name   string
		inject func(f *fixture)
	}{
		{"movimientos", func(f *fixture) { f.store.FailMovementWrites = assert.AnError }},
		{"ubicación", func(f *fixture) { f.store.FailSetLocation = assert.AnError }},
		{"bitácora", func(f *fixture) { f.store.FailAuditWrites = assert.AnError }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			l1 := f.store.SeedLocation("L1", true)
			l2 := f.store.SeedLocation("L2", true)
			a := f.store.SeedEntry("A", &l1)
			b := f.store.SeedEntry("B", &l1)
			tc.inject(f)

			_, err := f.moves.MoveBulk(context.Background(), actor, dto.MoveBulkRequest{FromLocationID: &l1, ToLocationID: &l2})
			require.ErrorIs(t, err, assert.AnError)

			assert.Equal(t, l1, *f.locationOf(a))
			assert.Equal(t, l1, *f.locationOf(b))
			assert.Empty(t, f.store.Movements())
			assert.Empty(t, f.auditFor(a, entity.FieldLocationID))
		})
	}
}

// Tras cualquier secuencia de movimientos, location_id coincide con el destino del último movimiento.
func TestMove_UbicacionIgualAlUltimoMovimiento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	locs := []int64{
		f.store.SeedLocation("L1", true),
		f.store.SeedLocation("L2", true),
		f.store.SeedLocation("L3", true),
	}
	id := f.store.SeedEntry("DHL", nil)

	var from *int64
	for i := 0; i < 7; i++ {
		to := locs[i%len(locs)]
		_, err := f.moves.MoveSingle(ctx, actor, dto.MoveSingleRequest{EntryID: id, FromLocationID: from, ToLocationID: &to})
		require.NoError(t, err)
		from = &to
	}

	hist, err := f.moves.ListMovementHistory(ctx, repository.MovementFilter{EntryID: &id})
	require.NoError(t, err)
	require.Len(t, hist, 7)
	assert.Equal(t, hist[0].ToLocationID, *f.locationOf(id), "el historial viene del más reciente al más antiguo")
	assert.Len(t, f.auditFor(id, entity.FieldLocationID), 7)
}
