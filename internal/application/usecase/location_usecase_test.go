package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/application/usecase"
	"github.com/jhoicas/Returns-api/internal/domain"
)

func newLocationUseCase() (*usecase.LocationUseCase, *inventorytest.Store) {
	store := inventorytest.NewStore()
	return usecase.NewLocationUseCase(store.Repos().Locations, store, ports.NopCache{}, zerolog.Nop()), store
}

func TestLocationUseCase_CreateCodigoDuplicado(t *testing.T) {
	uc, _ := newLocationUseCase()
	ctx := context.Background()

	loc, err := uc.Create(ctx, "admin", dto.CreateLocationRequest{Code: " R1-B2 ", Area: "Rack 1"})
	require.NoError(t, err)
	assert.Equal(t, "R1-B2", loc.Code)
	assert.True(t, loc.IsActive)

	_, err = uc.Create(ctx, "admin", dto.CreateLocationRequest{Code: "R1-B2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	_, err = uc.Create(ctx, "admin", dto.CreateLocationRequest{Code: "  "})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestLocationUseCase_UpdateReemplazoCompleto(t *testing.T) {
	uc, _ := newLocationUseCase()
	ctx := context.Background()
	loc, err := uc.Create(ctx, "admin", dto.CreateLocationRequest{Code: "A", Description: "piso", Area: "Z1"})
	require.NoError(t, err)

	upd, err := uc.Update(ctx, loc.ID, dto.UpdateLocationRequest{Code: "A2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", upd.Code)
	assert.Empty(t, upd.Description)
	assert.Empty(t, upd.Area)
	assert.True(t, upd.IsActive, "is_active ausente conserva el valor")

	off := false
	upd, err = uc.Update(ctx, loc.ID, dto.UpdateLocationRequest{Code: "A2", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, upd.IsActive)

	_, err = uc.Update(ctx, 999, dto.UpdateLocationRequest{Code: "X"})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestLocationUseCase_DeleteConOcupantes(t *testing.T) {
	uc, store := newLocationUseCase()
	ctx := context.Background()
	busy := store.SeedLocation("BUSY", true)
	store.SeedEntry("DHL", &busy)
	store.SeedEntry("UPS", &busy)
	free := store.SeedLocation("FREE", true)

	err := uc.Delete(ctx, busy)
	var inUse *domain.LocationInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, 2, inUse.Occupants)

	require.NoError(t, uc.Delete(ctx, free))
	_, err = uc.GetByID(ctx, free)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	assert.ErrorIs(t, uc.Delete(ctx, free), domain.ErrLocationNotFound)
}

func TestLocationUseCase_ListConOcupacion(t *testing.T) {
	uc, store := newLocationUseCase()
	ctx := context.Background()
	b := store.SeedLocation("B", true)
	store.SeedLocation("A", true)
	store.SeedLocation("C", false)
	store.SeedEntry("DHL", &b)

	res, err := uc.List(ctx, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "A", res.Items[0].Code)
	assert.Equal(t, 0, *res.Items[0].Occupants)
	assert.Equal(t, 1, *res.Items[1].Occupants)

	all, err := uc.List(ctx, false, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)

	found, err := uc.FindByCode(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, b, found.ID)
}
