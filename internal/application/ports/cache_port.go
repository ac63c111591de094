package ports

// Ámbitos de caché que una escritura puede dejar obsoletos.
const (
	ScopeEntries   = "entries"
	ScopeLocations = "locations"
	ScopeDashboard = "dashboard"
)

// CacheInvalidator descarta lecturas cacheadas de los ámbitos indicados.
// Se llama solo después de un commit exitoso.
type CacheInvalidator interface {
	Invalidate(scopes ...string)
}

// NopCache implementación vacía para tests y arranques sin caché.
type NopCache struct{}

// Invalidate no hace nada.
func (NopCache) Invalidate(...string) {}
