package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Returns-api/pkg/config"
)

// pgEnv base real con el esquema migrado. Requiere DATABASE_URL; sin ella los tests se omiten.
type pgEnv struct {
	pool     *pgxpool.Pool
	tx       *postgres.TxRunner
	moves    *inventory.MoveEntriesUseCase
	archives *inventory.ArchiveEntryUseCase

	entryIDs    []int64
	locationIDs []int64
}

func newPGEnv(t *testing.T) *pgEnv {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido")
	}
	ctx := context.Background()

	m, err := postgres.NewMigrator(url)
	require.NoError(t, err)
	require.NoError(t, m.MigrateUp(ctx))
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 8})
	require.NoError(t, err)

	log := zerolog.Nop()
	tx := postgres.NewTxRunner(pool)
	env := &pgEnv{
		pool:     pool,
		tx:       tx,
		moves:    inventory.NewMoveEntriesUseCase(tx, postgres.NewMovementRepository(pool), ports.NopCache{}, log),
		archives: inventory.NewArchiveEntryUseCase(tx, postgres.NewArchiveRepository(pool), ports.NopCache{}, log),
	}
	t.Cleanup(func() {
		env.cleanup(t)
		pool.Close()
	})
	return env
}

// cleanup borra lo creado por el test, hijos primero.
func (env *pgEnv) cleanup(t *testing.T) {
	ctx := context.Background()
	for _, q := range []string{
		`DELETE FROM entry_audit_logs WHERE entry_id = ANY($1)`,
		`DELETE FROM movements WHERE entry_id = ANY($1)`,
		`DELETE FROM entry_archives WHERE entry_id = ANY($1)`,
		`DELETE FROM entries WHERE id = ANY($1)`,
	} {
		_, err := env.pool.Exec(ctx, q, env.entryIDs)
		assert.NoError(t, err)
	}
	_, err := env.pool.Exec(ctx, `DELETE FROM locations WHERE id = ANY($1)`, env.locationIDs)
	assert.NoError(t, err)
}

func (env *pgEnv) seedLocation(t *testing.T) int64 {
	t.Helper()
	now := time.Now()
	loc := &entity.Location{
		Code:      "T-" + uuid.NewString()[:8],
		Area:      "TEST",
		IsActive:  true,
		CreatedAt: now,
		CreatedBy: "test",
		UpdatedAt: now,
	}
	require.NoError(t, postgres.NewLocationRepository(env.pool).Create(context.Background(), loc))
	env.locationIDs = append(env.locationIDs, loc.ID)
	return loc.ID
}

func (env *pgEnv) seedEntry(t *testing.T, locationID *int64) int64 {
	t.Helper()
	now := time.Now()
	e := &entity.Entry{
		CarrierName: "DHL",
		Stage:       "RECEIVED",
		LocationID:  locationID,
		ReceivedAt:  now,
		CreatedAt:   now,
		CreatedBy:   "test",
		UpdatedAt:   now,
		UpdatedBy:   "test",
	}
	require.NoError(t, postgres.NewEntryRepository(env.pool).Create(context.Background(), e))
	env.entryIDs = append(env.entryIDs, e.ID)
	return e.ID
}

func (env *pgEnv) locationOf(t *testing.T, entryID int64) *int64 {
	t.Helper()
	e, err := postgres.NewEntryRepository(env.pool).GetByID(context.Background(), entryID)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e.LocationID
}

func (env *pgEnv) countMovements(t *testing.T, entryID int64) int {
	t.Helper()
	var n int
	require.NoError(t, env.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM movements WHERE entry_id = $1`, entryID).Scan(&n))
	return n
}

func TestPG_MoveSingleConcurrente_SoloUnoGana(t *testing.T) {
	env := newPGEnv(t)
	l1, l2, l3 := env.seedLocation(t), env.seedLocation(t), env.seedLocation(t)
	id := env.seedEntry(t, &l1)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, to := range []int64{l2, l3} {
		wg.Add(1)
		go func(i int, to int64) {
			defer wg.Done()
			<-start
			_, errs[i] = env.moves.MoveSingle(context.Background(), "test", dto.MoveSingleRequest{
				EntryID: id, FromLocationID: &l1, ToLocationID: &to,
			})
		}(i, to)
	}
	close(start)
	wg.Wait()

	var ok, mismatch int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrSourceLocationMismatch):
			mismatch++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, mismatch)
	assert.Equal(t, 1, env.countMovements(t, id))

	got := env.locationOf(t, id)
	require.NotNil(t, got)
	assert.Contains(t, []int64{l2, l3}, *got)
}

// El archivo se confirma mientras el movimiento espera el bloqueo de la fila; la sentencia de
// bloqueo del movimiento ya tomó su foto y no ve el archivo.
func TestPG_MoverMientrasSeArchiva_RechazaElMovimiento(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	l2 := env.seedLocation(t)
	id := env.seedEntry(t, nil)

	locked := make(chan struct{})
	archiveDone := make(chan error, 1)
	go func() {
		archiveDone <- env.tx.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
			if _, err := repos.Entries.GetForUpdate(ctx, id); err != nil {
				return err
			}
			close(locked)
			// Deja que el movimiento quede bloqueado esperando la fila.
			time.Sleep(300 * time.Millisecond)
			if err := repos.Archives.Create(ctx, &entity.Archive{
				EntryID: id, ArchivedAt: time.Now(), ArchivedBy: "test", Reason: "dañada",
			}); err != nil {
				return err
			}
			return repos.Entries.SetLocation(ctx, []int64{id}, nil, "test", time.Now())
		})
	}()

	<-locked
	_, err := env.moves.MoveSingle(ctx, "test", dto.MoveSingleRequest{EntryID: id, ToLocationID: &l2})
	require.NoError(t, <-archiveDone)

	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Nil(t, env.locationOf(t, id), "una entrada archivada no puede quedar ubicada")
	assert.Zero(t, env.countMovements(t, id))
}

func TestPG_MoveMultipleMientrasSeArchiva_RechazaElLote(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	l2 := env.seedLocation(t)
	a := env.seedEntry(t, nil)
	b := env.seedEntry(t, nil)

	locked := make(chan struct{})
	archiveDone := make(chan error, 1)
	go func() {
		archiveDone <- env.tx.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
			if _, err := repos.Entries.GetForUpdate(ctx, b); err != nil {
				return err
			}
			close(locked)
			time.Sleep(300 * time.Millisecond)
			return repos.Archives.Create(ctx, &entity.Archive{
				EntryID: b, ArchivedAt: time.Now(), ArchivedBy: "test", Reason: "dañada",
			})
		})
	}()

	<-locked
	_, err := env.moves.MoveMultiple(ctx, "test", dto.MoveMultipleRequest{EntryIDs: []int64{a, b}, ToLocationID: &l2})
	require.NoError(t, <-archiveDone)

	var nf *domain.EntryNotFoundError
	require.True(t, errors.As(err, &nf), "err = %v", err)
	assert.Equal(t, []int64{b}, nf.IDs)
	assert.Nil(t, env.locationOf(t, a))
	assert.Zero(t, env.countMovements(t, a))
}

func TestPG_ArchivarConcurrente_UnSoloArchivo(t *testing.T) {
	env := newPGEnv(t)
	l1 := env.seedLocation(t)
	id := env.seedEntry(t, &l1)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = env.archives.ArchiveEntry(context.Background(), "test", id, dto.ArchiveEntryRequest{Reason: "dañada"})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyArchived):
			already++
			assert.ErrorIs(t, err, domain.ErrEntryNotFound)
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)
	assert.Nil(t, env.locationOf(t, id))
}

func TestPG_ArchiveCreateDuplicado_MismoErrorQueElCasoDeUso(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	id := env.seedEntry(t, nil)
	repo := postgres.NewArchiveRepository(env.pool)

	require.NoError(t, repo.Create(ctx, &entity.Archive{EntryID: id, ArchivedAt: time.Now(), ArchivedBy: "test", Reason: "x"}))
	err := repo.Create(ctx, &entity.Archive{EntryID: id, ArchivedAt: time.Now(), ArchivedBy: "test", Reason: "y"})
	assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
	var nf *domain.EntryNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{id}, nf.IDs)

	list, err := repo.ListByEntryIDs(ctx, []int64{id, -1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].EntryID)
}
