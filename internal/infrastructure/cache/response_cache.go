package cache

import (
	"sync"
	"time"

	"github.com/jhoicas/Returns-api/internal/application/ports"
)

var _ ports.CacheInvalidator = (*ResponseCache)(nil)

type cachedResponse struct {
	body      []byte
	expiresAt time.Time
}

// ResponseCache guarda respuestas de lectura por ámbito (entries, locations, dashboard).
// Es solo una optimización: la fuente de verdad siempre es la BD.
type ResponseCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	scopes map[string]map[string]cachedResponse
	// gens aumenta en cada Invalidate del ámbito; SetIfGeneration lo compara.
	gens map[string]uint64
	now  func() time.Time
}

// NewResponseCache crea la caché. ttl <= 0 la deshabilita (Get nunca acierta).
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		ttl:    ttl,
		scopes: make(map[string]map[string]cachedResponse),
		gens:   make(map[string]uint64),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (c *ResponseCache) WithClock(now func() time.Time) *ResponseCache {
	c.now = now
	return c
}

// Get devuelve la respuesta cacheada si existe y no expiró.
func (c *ResponseCache) Get(scope, key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.scopes[scope][key]
	if !ok || !c.now().Before(r.expiresAt) {
		return nil, false
	}
	return r.body, true
}

// Set guarda una respuesta bajo scope/key.
func (c *ResponseCache) Set(scope, key string, body []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(scope, key, body)
}

// Generation generación actual del ámbito. Se lee antes de calcular la respuesta a cachear.
func (c *ResponseCache) Generation(scope string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[scope]
}

// SetIfGeneration guarda la respuesta solo si el ámbito no se invalidó desde que se leyó gen.
// Una respuesta calculada antes de una escritura no pisa la invalidación de esa escritura.
func (c *ResponseCache) SetIfGeneration(scope, key string, gen uint64, body []byte) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[scope] != gen {
		return false
	}
	c.store(scope, key, body)
	return true
}

func (c *ResponseCache) store(scope, key string, body []byte) {
	m, ok := c.scopes[scope]
	if !ok {
		m = make(map[string]cachedResponse)
		c.scopes[scope] = m
	}
	m[key] = cachedResponse{body: body, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate descarta todo lo cacheado en los ámbitos indicados.
func (c *ResponseCache) Invalidate(scopes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range scopes {
		delete(c.scopes, s)
		c.gens[s]++
	}
}

// Len número de respuestas guardadas (incluye expiradas aún no purgadas).
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, m := range c.scopes {
		n += len(m)
	}
	return n
}
