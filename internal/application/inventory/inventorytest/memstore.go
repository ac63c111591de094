// Package inventorytest ofrece un almacén en memoria con transacciones (snapshot y rollback)
// que implementa los repositorios de dominio, para probar los casos de uso sin PostgreSQL.
package inventorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/domain"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

type state struct {
	seq       int64
	locations map[int64]entity.Location
	entries   map[int64]entity.Entry
	movements []entity.Movement
	archives  map[int64]entity.Archive
	audit     []entity.AuditLog
	users     map[string]entity.User
}

func newState() *state {
	return &state{
		locations: make(map[int64]entity.Location),
		entries:   make(map[int64]entity.Entry),
		archives:  make(map[int64]entity.Archive),
		users:     make(map[string]entity.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:       s.seq,
		locations: make(map[int64]entity.Location, len(s.locations)),
		entries:   make(map[int64]entity.Entry, len(s.entries)),
		movements: append([]entity.Movement(nil), s.movements...),
		archives:  make(map[int64]entity.Archive, len(s.archives)),
		audit:     append([]entity.AuditLog(nil), s.audit...),
		users:     make(map[string]entity.User, len(s.users)),
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.archives {
		c.archives[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store almacén en memoria. Run serializa las transacciones y restaura el estado previo si fn falla.
type Store struct {
	mu   sync.Mutex
	data *state

	// Errores inyectables para simular fallos de almacenamiento a mitad de una transacción.
	FailMovementWrites error
	FailAuditWrites    error
	FailSetLocation    error

	// StaleArchivedFlag simula la foto de la sentencia de bloqueo tomada antes de que otra
	// transacción confirmara el archivo: las entradas leídas reportan Archived=false.
	StaleArchivedFlag bool
}

var _ inventory.TxRunner = (*Store)(nil)

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn como una transacción: todo o nada.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	v := &view{store: s}
	if err := fn(ctx, v.repos()); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repos repositorios para uso fuera de transacción (cada llamada toma el lock).
func (s *Store) Repos() inventory.TxRepos {
	return (&view{store: s, locking: true}).repos()
}

// Reports repositorio de reportes sobre el almacén.
func (s *Store) Reports() repository.ReportRepository {
	return &view{store: s, locking: true}
}

// Users repositorio de usuarios sobre el almacén.
func (s *Store) Users() repository.UserRepository {
	return &view{store: s, locking: true}
}

// Snapshot accesos de solo lectura para las aserciones de los tests.

// Entry devuelve la entrada tal como está guardada.
func (s *Store) Entry(id int64) (entity.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.entries[id]
	return e, ok
}

// Movements copia de todos los movimientos.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Movement(nil), s.data.movements...)
}

// AuditLogs copia de la bitácora completa.
func (s *Store) AuditLogs() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditLog(nil), s.data.audit...)
}

// ArchiveCount archivos activos de una entrada.
func (s *Store) ArchiveCount(entryID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.data.archives {
		if a.EntryID == entryID {
			n++
		}
	}
	return n
}

// SeedLocation inserta una ubicación y devuelve su ID.
func (s *Store) SeedLocation(code string, active bool) int64 {
	l := &entity.Location{Code: code, Area: "A", IsActive: active, CreatedBy: "seed"}
	if err := s.Repos().Locations.Create(context.Background(), l); err != nil {
		panic(err)
	}
	return l.ID
}

// SeedEntry inserta una entrada en locationID (nil = sin ubicar) y devuelve su ID.
func (s *Store) SeedEntry(carrier string, locationID *int64) int64 {
	e := &entity.Entry{CarrierName: carrier, Stage: entity.StageReceived, LocationID: locationID, CreatedBy: "seed"}
	if err := s.Repos().Entries.Create(context.Background(), e); err != nil {
		panic(err)
	}
	return e.ID
}

// view adapta el estado del Store a los puertos de repositorio.
type view struct {
	store   *Store
	locking bool
}

func (v *view) repos() inventory.TxRepos {
	return inventory.TxRepos{
		Entries:   entryRepo{v},
		Locations: locationRepo{v},
		Movements: movementRepo{v},
		Archives:  archiveRepo{v},
		Audit:     auditRepo{v},
	}
}

func (v *view) lock() func() {
	if !v.locking {
		return func() {}
	}
	v.store.mu.Lock()
	return v.store.mu.Unlock
}

func (v *view) st() *state { return v.store.data }

// ── ubicaciones ──────────────────────────────────────────────────────────────

type locationRepo struct{ v *view }

func (r locationRepo) Create(_ context.Context, l *entity.Location) error {
	defer r.v.lock()()
	st := r.v.st()
	for _, x := range st.locations {
		if x.Code == l.Code {
			return domain.ErrDuplicateCode
		}
	}
	l.ID = st.nextID()
	st.locations[l.ID] = *l
	return nil
}

func (r locationRepo) get(id int64) (*entity.Location, error) {
	defer r.v.lock()()
	l, ok := r.v.st().locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r locationRepo) GetByID(_ context.Context, id int64) (*entity.Location, error) { return r.get(id) }
func (r locationRepo) GetForShare(_ context.Context, id int64) (*entity.Location, error) {
	return r.get(id)
}
func (r locationRepo) GetForUpdate(_ context.Context, id int64) (*entity.Location, error) {
	return r.get(id)
}

func (r locationRepo) GetByCode(_ context.Context, code string) (*entity.Location, error) {
	defer r.v.lock()()
	for _, l := range r.v.st().locations {
		if l.Code == code {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (r locationRepo) Update(_ context.Context, l *entity.Location) error {
	defer r.v.lock()()
	st := r.v.st()
	if _, ok := st.locations[l.ID]; !ok {
		return domain.ErrLocationNotFound
	}
	for _, x := range st.locations {
		if x.Code == l.Code && x.ID != l.ID {
			return domain.ErrDuplicateCode
		}
	}
	st.locations[l.ID] = *l
	return nil
}

func (r locationRepo) Delete(_ context.Context, id int64) error {
	defer r.v.lock()()
	st := r.v.st()
	if _, ok := st.locations[id]; !ok {
		return domain.ErrLocationNotFound
	}
	for _, e := range st.entries {
		if e.LocationID != nil && *e.LocationID == id {
			return domain.ErrLocationInUse
		}
	}
	delete(st.locations, id)
	return nil
}

func (r locationRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*entity.LocationWithOccupancy, error) {
	defer r.v.lock()()
	st := r.v.st()
	var out []*entity.LocationWithOccupancy
	for _, l := range st.locations {
		if activeOnly && !l.IsActive {
			continue
		}
		n := 0
		for _, e := range st.entries {
			if e.LocationID != nil && *e.LocationID == l.ID {
				n++
			}
		}
		out = append(out, &entity.LocationWithOccupancy{Location: l, Occupants: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), nil
}

// ── entradas ─────────────────────────────────────────────────────────────────

type entryRepo struct{ v *view }

// hydrate completa los campos derivados (código de ubicación y archivo).
func (st *state) hydrate(e entity.Entry) *entity.Entry {
	e.LocationCode = ""
	if e.LocationID != nil {
		if l, ok := st.locations[*e.LocationID]; ok {
			e.LocationCode = l.Code
		}
	}
	e.Archived = false
	for _, a := range st.archives {
		if a.EntryID == e.ID {
			e.Archived = true
			break
		}
	}
	return &e
}

func (r entryRepo) Create(_ context.Context, e *entity.Entry) error {
	defer r.v.lock()()
	st := r.v.st()
	if e.LocationID != nil {
		if _, ok := st.locations[*e.LocationID]; !ok {
			return domain.ErrLocationNotFound
		}
	}
	e.ID = st.nextID()
	stored := *e
	stored.LocationCode, stored.Archived = "", false
	st.entries[e.ID] = stored
	return nil
}

func (r entryRepo) get(id int64) (*entity.Entry, error) {
	defer r.v.lock()()
	st := r.v.st()
	e, ok := st.entries[id]
	if !ok {
		return nil, nil
	}
	return st.hydrate(e), nil
}

func (r entryRepo) GetByID(_ context.Context, id int64) (*entity.Entry, error) { return r.get(id) }
func (r entryRepo) GetForUpdate(_ context.Context, id int64) (*entity.Entry, error) {
	e, err := r.get(id)
	if e != nil && r.v.store.StaleArchivedFlag {
		e.Archived = false
	}
	return e, err
}

func (r entryRepo) ListForUpdate(_ context.Context, ids []int64) ([]*entity.Entry, error) {
	defer r.v.lock()()
	st := r.v.st()
	var out []*entity.Entry
	for _, id := range ids {
		if e, ok := st.entries[id]; ok {
			h := st.hydrate(e)
			if r.v.store.StaleArchivedFlag {
				h.Archived = false
			}
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r entryRepo) ListAtLocationForUpdate(_ context.Context, locationID int64) ([]*entity.Entry, error) {
	defer r.v.lock()()
	st := r.v.st()
	var out []*entity.Entry
	for _, e := range st.entries {
		if e.LocationID != nil && *e.LocationID == locationID {
			out = append(out, st.hydrate(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r entryRepo) Update(_ context.Context, e *entity.Entry) error {
	defer r.v.lock()()
	st := r.v.st()
	cur, ok := st.entries[e.ID]
	if !ok {
		return domain.ErrEntryNotFound
	}
	upd := *e
	upd.LocationID = cur.LocationID
	upd.LocationCode, upd.Archived = "", false
	upd.CreatedAt, upd.CreatedBy = cur.CreatedAt, cur.CreatedBy
	st.entries[e.ID] = upd
	return nil
}

func (r entryRepo) SetLocation(_ context.Context, ids []int64, locationID *int64, actor string, at time.Time) error {
	defer r.v.lock()()
	if err := r.v.store.FailSetLocation; err != nil {
		return err
	}
	st := r.v.st()
	if locationID != nil {
		if _, ok := st.locations[*locationID]; !ok {
			return domain.ErrLocationNotFound
		}
	}
	for _, id := range ids {
		e, ok := st.entries[id]
		if !ok {
			return domain.ErrEntryNotFound
		}
		if locationID != nil {
			v := *locationID
			e.LocationID = &v
		} else {
			e.LocationID = nil
		}
		e.UpdatedAt, e.UpdatedBy = at, actor
		st.entries[id] = e
	}
	return nil
}

func (r entryRepo) CountAtLocation(_ context.Context, locationID int64) (int, error) {
	defer r.v.lock()()
	n := 0
	for _, e := range r.v.st().entries {
		if e.LocationID != nil && *e.LocationID == locationID {
			n++
		}
	}
	return n, nil
}

func (r entryRepo) ListRecent(_ context.Context, limit int) ([]*entity.Entry, error) {
	defer r.v.lock()()
	st := r.v.st()
	out := make([]*entity.Entry, 0, len(st.entries))
	for _, e := range st.entries {
		out = append(out, st.hydrate(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, 0), nil
}

func (r entryRepo) Search(_ context.Context, f repository.EntryFilter) ([]*entity.Entry, int, error) {
	defer r.v.lock()()
	st := r.v.st()
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
	}
	var out []*entity.Entry
	for _, raw := range st.entries {
		e := st.hydrate(raw)
		if f.Carrier != "" && !contains(e.CarrierName, f.Carrier) {
			continue
		}
		if f.Search != "" && !contains(e.TrackingNumber, f.Search) && !contains(e.ReturnNumber, f.Search) &&
			!contains(e.OrderNumber, f.Search) && !contains(e.CustomerName, f.Search) {
			continue
		}
		if f.LocationID != nil && (e.LocationID == nil || *e.LocationID != *f.LocationID) {
			continue
		}
		if f.Stage != "" && e.Stage != f.Stage {
			continue
		}
		if f.Archived != nil && e.Archived != *f.Archived {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Limit, f.Offset), len(out), nil
}

// ── movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct{ v *view }

func (r movementRepo) CreateBatch(_ context.Context, ms []*entity.Movement) error {
	defer r.v.lock()()
	if err := r.v.store.FailMovementWrites; err != nil {
		return err
	}
	st := r.v.st()
	for _, m := range ms {
		m.ID = st.nextID()
		st.movements = append(st.movements, *m)
	}
	return nil
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	defer r.v.lock()()
	var out []*entity.Movement
	for _, m := range r.v.st().movements {
		m := m
		if f.LocationID != nil {
			fromMatch := m.FromLocationID != nil && *m.FromLocationID == *f.LocationID
			if !fromMatch && m.ToLocationID != *f.LocationID {
				continue
			}
		}
		if f.EntryID != nil && m.EntryID != *f.EntryID {
			continue
		}
		if f.From != nil && m.MovedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.MovedAt.Before(*f.To) {
			continue
		}
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Limit, f.Offset), nil
}

// ── archivos ─────────────────────────────────────────────────────────────────

type archiveRepo struct{ v *view }

func (r archiveRepo) Create(_ context.Context, a *entity.Archive) error {
	defer r.v.lock()()
	st := r.v.st()
	for _, x := range st.archives {
		if x.EntryID == a.EntryID {
			return domain.AlreadyArchived(a.EntryID)
		}
	}
	a.ID = st.nextID()
	st.archives[a.ID] = *a
	return nil
}

func (r archiveRepo) get(match func(entity.Archive) bool) (*entity.Archive, error) {
	defer r.v.lock()()
	for _, a := range r.v.st().archives {
		if match(a) {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r archiveRepo) GetForUpdate(_ context.Context, id int64) (*entity.Archive, error) {
	return r.get(func(a entity.Archive) bool { return a.ID == id })
}

func (r archiveRepo) GetByEntryID(_ context.Context, entryID int64) (*entity.Archive, error) {
	return r.get(func(a entity.Archive) bool { return a.EntryID == entryID })
}

func (r archiveRepo) ListByEntryIDs(_ context.Context, entryIDs []int64) ([]*entity.Archive, error) {
	defer r.v.lock()()
	want := make(map[int64]bool, len(entryIDs))
	for _, id := range entryIDs {
		want[id] = true
	}
	var out []*entity.Archive
	for _, a := range r.v.st().archives {
		if want[a.EntryID] {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out, nil
}

func (r archiveRepo) Delete(_ context.Context, id int64) error {
	defer r.v.lock()()
	st := r.v.st()
	if _, ok := st.archives[id]; !ok {
		return domain.ErrArchiveNotFound
	}
	delete(st.archives, id)
	return nil
}

func (r archiveRepo) List(_ context.Context, limit, offset int) ([]*entity.Archive, error) {
	defer r.v.lock()()
	var out []*entity.Archive
	for _, a := range r.v.st().archives {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// ── bitácora ─────────────────────────────────────────────────────────────────

type auditRepo struct{ v *view }

func (r auditRepo) CreateBatch(_ context.Context, logs []*entity.AuditLog) error {
	defer r.v.lock()()
	if len(logs) == 0 {
		return nil
	}
	if err := r.v.store.FailAuditWrites; err != nil {
		return err
	}
	st := r.v.st()
	for _, l := range logs {
		l.ID = st.nextID()
		st.audit = append(st.audit, *l)
	}
	return nil
}

func (r auditRepo) ListByEntry(_ context.Context, entryID int64) ([]*entity.AuditLog, error) {
	defer r.v.lock()()
	var out []*entity.AuditLog
	for _, l := range r.v.st().audit {
		if l.EntryID == entryID {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

// ── reportes ─────────────────────────────────────────────────────────────────

func (v *view) ListActivity(_ context.Context, since *time.Time, limit int) ([]*entity.Activity, error) {
	defer v.lock()()
	st := v.st()
	var out []*entity.Activity
	keep := func(t time.Time) bool { return since == nil || !t.Before(*since) }
	for _, e := range st.entries {
		if keep(e.CreatedAt) {
			out = append(out, &entity.Activity{
				Type: entity.ActivityInbound, EntryID: e.ID, Actor: e.CreatedBy,
				Detail: e.CarrierName, OccurredAt: e.CreatedAt,
			})
		}
	}
	for _, m := range st.movements {
		if keep(m.MovedAt) {
			out = append(out, &entity.Activity{
				Type: entity.ActivityMovement, EntryID: m.EntryID, LocationCode: m.ToLocationCode,
				FromCode: m.FromLocationCode, Actor: m.MovedBy, Detail: m.Reason, OccurredAt: m.MovedAt,
			})
		}
	}
	for _, a := range st.archives {
		if keep(a.ArchivedAt) {
			out = append(out, &entity.Activity{
				Type: entity.ActivityArchive, EntryID: a.EntryID, LocationCode: a.LocationCode,
				Actor: a.ArchivedBy, Detail: a.Reason, OccurredAt: a.ArchivedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].EntryID > out[j].EntryID
		}
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return page(out, limit, 0), nil
}

func (v *view) CountEntriesByState(_ context.Context) (repository.EntryStateCounts, error) {
	defer v.lock()()
	st := v.st()
	var c repository.EntryStateCounts
	for _, e := range st.entries {
		switch h := st.hydrate(e); {
		case h.Archived:
			c.Archived++
		case h.LocationID != nil:
			c.Placed++
		default:
			c.Unplaced++
		}
	}
	return c, nil
}

func (v *view) TopLocationsByOccupancy(_ context.Context, limit int) ([]repository.LocationOccupancyResult, error) {
	defer v.lock()()
	st := v.st()
	counts := make(map[int64]int)
	for _, e := range st.entries {
		if e.LocationID != nil {
			counts[*e.LocationID]++
		}
	}
	var out []repository.LocationOccupancyResult
	for id, n := range counts {
		l := st.locations[id]
		out = append(out, repository.LocationOccupancyResult{LocationID: id, Code: l.Code, Area: l.Area, Occupants: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occupants == out[j].Occupants {
			return out[i].Code < out[j].Code
		}
		return out[i].Occupants > out[j].Occupants
	})
	return page(out, limit, 0), nil
}

func (v *view) CountMovements(_ context.Context, from, to time.Time) (int, error) {
	defer v.lock()()
	n := 0
	for _, m := range v.st().movements {
		if !m.MovedAt.Before(from) && m.MovedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (v *view) CountArchives(_ context.Context, from, to time.Time) (int, error) {
	defer v.lock()()
	n := 0
	for _, a := range v.st().archives {
		if !a.ArchivedAt.Before(from) && a.ArchivedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// ── usuarios ─────────────────────────────────────────────────────────────────

func (v *view) Create(_ context.Context, u *entity.User) error {
	defer v.lock()()
	st := v.st()
	if _, ok := st.users[u.Username]; ok {
		return domain.ErrConflict
	}
	u.ID = st.nextID()
	st.users[u.Username] = *u
	return nil
}

func (v *view) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer v.lock()()
	u, ok := v.st().users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// Decimal atajo para construir pesos en los tests.
func Decimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
