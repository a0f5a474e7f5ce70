package uritemplate

import (
	"sync"
	"sync/atomic"
)

// Cache memoizes parsed templates keyed by their literal text. Entries are never
// evicted, so it should only hold program-controlled templates. A Cache is safe for
// concurrent use; two goroutines racing on the same new template may both parse it,
// but only one *Template is ever stored and returned.
type Cache struct {
	entries sync.Map // string -> *Template
	parses  atomic.Int64
}

// NewCache creates an empty template cache.
func NewCache() *Cache {
	return &Cache{}
}

// Parse returns the cached template for raw, parsing it on first use.
// Syntax errors are not cached.
func (c *Cache) Parse(raw string) (*Template, error) {
	if t, ok := c.entries.Load(raw); ok {
		return t.(*Template), nil
	}

	t, err := parse(raw)
	if err != nil {
		return nil, err
	}
	c.parses.Add(1)

	actual, _ := c.entries.LoadOrStore(raw, t)
	return actual.(*Template), nil
}

// Expand parses raw through the cache and expands it with params.
func (c *Cache) Expand(raw string, params map[string]any) (string, error) {
	t, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return t.Expand(params)
}

// Len reports the number of cached templates.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

var defaultCache = NewCache()

// DefaultCache returns the process-wide cache used by Parse and Expand.
func DefaultCache() *Cache {
	return defaultCache
}

// Parse parses raw through the default cache.
func Parse(raw string) (*Template, error) {
	return defaultCache.Parse(raw)
}

// Expand parses raw through the default cache and expands it with params.
func Expand(raw string, params map[string]any) (string, error) {
	return defaultCache.Expand(raw, params)
}
