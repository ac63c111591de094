package inventory_test

import (
	"github.com/rs/zerolog"

	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/Returns-api/internal/application/ports"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

const actor = "mlopez"

type fixture struct {
	store    *inventorytest.Store
	entries  *inventory.EntryUseCase
	moves    *inventory.MoveEntriesUseCase
	archives *inventory.ArchiveEntryUseCase
	imports  *inventory.ImportEntriesUseCase
}

func newFixture() *fixture {
	store := inventorytest.NewStore()
	repos := store.Repos()
	log := zerolog.Nop()
	cache := ports.NopCache{}
	return &fixture{
		store:    store,
		entries:  inventory.NewEntryUseCase(store, repos.Entries, repos.Audit, cache, log),
		moves:    inventory.NewMoveEntriesUseCase(store, repos.Movements, cache, log),
		archives: inventory.NewArchiveEntryUseCase(store, repos.Archives, cache, log),
		imports:  inventory.NewImportEntriesUseCase(store, cache, log),
	}
}

func ptr[T any](v T) *T { return &v }

// locationOf ubicación actual guardada de la entrada.
func (f *fixture) locationOf(id int64) *int64 {
	e, ok := f.store.Entry(id)
	if !ok {
		return nil
	}
	return e.LocationID
}

// auditFor filas de bitácora de una entrada para un campo.
func (f *fixture) auditFor(entryID int64, field string) []entity.AuditLog {
	var out []entity.AuditLog
	for _, l := range f.store.AuditLogs() {
		if l.EntryID == entryID && l.FieldName == field {
			out = append(out, l)
		}
	}
	return out
}
