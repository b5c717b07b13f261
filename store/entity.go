package store

import (
	"sort"
	"sync"

	"github.com/ontoframe/reflex/errors"
)

// Entity is the unit of data under unified projection: a URI-like
// identifier plus a map of named facets. All facets are loaded once;
// the facet-name set is fixed for the entity's lifetime, only values
// change. Every context reads through the same Entity — nothing is
// ejected or reloaded when a caller switches context.
type Entity struct {
	id string

	// mu guards facet values for readers; mutateMu serializes writers.
	// Two locks because a mutation spans more than the map write: the
	// engine holds mutateMu across read-old-value, durable append, and
	// the facet write, while readers only contend on mu.
	mu       sync.RWMutex
	facets   map[string]any
	mutateMu sync.Mutex
}

func newEntity(id string, facets map[string]any) *Entity {
	return &Entity{
		id:     id,
		facets: copyFacets(facets),
	}
}

// ID returns the entity's unique identifier.
func (e *Entity) ID() string {
	return e.id
}

// Facet returns the current value of the named facet.
// Fails with ErrUnknownFacet for names not present at load time.
// The returned value is a deep copy: mutating it cannot change the
// entity, so every write has to go through a context adapter where it
// is attributed and logged.
func (e *Entity) Facet(name string) (any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	value, ok := e.facets[name]
	if !ok {
		return nil, errors.NewUnknownFacetError("facet %q not loaded for entity %s", name, e.id)
	}
	return deepCopyValue(value), nil
}

// HasFacet reports whether the named facet was loaded.
func (e *Entity) HasFacet(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.facets[name]
	return ok
}

// FacetNames returns the fixed set of facet names, sorted.
func (e *Entity) FacetNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.facets))
	for name := range e.facets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// setFacet overwrites a facet value. Unexported: all mutation flows
// through Store.SetFacet so that change-log attribution stays with the
// calling adapter, never inside the entity.
func (e *Entity) setFacet(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.facets[name]; !ok {
		return errors.NewUnknownFacetError("facet %q not loaded for entity %s", name, e.id)
	}
	// Copied so a caller-retained payload reference cannot mutate the
	// stored value behind the change log's back.
	e.facets[name] = deepCopyValue(value)
	return nil
}

// copyFacets deep-copies a facet map so that loaded values cannot be
// aliased by the backing source.
func copyFacets(facets map[string]any) map[string]any {
	copied := make(map[string]any, len(facets))
	for name, value := range facets {
		copied[name] = deepCopyValue(value)
	}
	return copied
}

// deepCopyValue copies the JSON/YAML-shaped values facets are made of:
// maps, slices, and scalars.
func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, item := range v {
			copied[key] = deepCopyValue(item)
		}
		return copied
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = deepCopyValue(item)
		}
		return copied
	default:
		return v
	}
}
