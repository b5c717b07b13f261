// Package contexts defines the processing contexts an entity can be
// viewed under, the transition graph between them, and the per-context
// adapters that broker every mutation.
//
// A context is a caller-side processing mode, not a property of stored
// data: concurrent sessions may hold different contexts over the same
// entity, and switching context never reloads or copies facet data.
package contexts

import (
	"sort"

	"github.com/ontoframe/reflex/errors"
)

// Definition declares one context at configuration time.
//
// An empty Facets set permits every facet; an empty Transitions set
// permits switching to every other registered context (the default is
// a fully connected graph, restricted only when declared).
type Definition struct {
	Name        string
	Facets      []string
	Transitions []string
}

// Registry holds the statically configured contexts and their
// transition graph. It is immutable after construction.
type Registry struct {
	defaultContext string
	defs           map[string]Definition
	adapters       map[string]Adapter
}

// DefaultDefinitions returns the built-in three-context configuration
// used when the embedding application declares none: meta, domain and
// instance, fully connected, all facets permitted.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "meta"},
		{Name: "domain"},
		{Name: "instance"},
	}
}

// NewRegistry validates the context definitions and builds the
// registry. The default context must be one of the definitions, and
// every declared transition must reference a registered context.
func NewRegistry(defaultContext string, definitions []Definition) (*Registry, error) {
	if len(definitions) == 0 {
		definitions = DefaultDefinitions()
	}
	if defaultContext == "" {
		defaultContext = definitions[0].Name
	}

	defs := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		if def.Name == "" {
			return nil, errors.New("context definition missing name")
		}
		if _, dup := defs[def.Name]; dup {
			return nil, errors.Newf("duplicate context definition %q", def.Name)
		}
		defs[def.Name] = def
	}

	if _, ok := defs[defaultContext]; !ok {
		return nil, errors.NewUnknownContextError("default context %q is not defined", defaultContext)
	}

	for _, def := range defs {
		for _, target := range def.Transitions {
			if _, ok := defs[target]; !ok {
				return nil, errors.NewUnknownContextError(
					"context %q declares transition to undefined context %q", def.Name, target)
			}
		}
	}

	adapters := make(map[string]Adapter, len(defs))
	for name, def := range defs {
		adapters[name] = newFacetAdapter(def)
	}

	return &Registry{
		defaultContext: defaultContext,
		defs:           defs,
		adapters:       adapters,
	}, nil
}

// Default returns the configured initial context name.
func (r *Registry) Default() string {
	return r.defaultContext
}

// Names returns all registered context names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the named context is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// CanTransition reports whether the graph permits switching from one
// context to another. A context with no declared transitions may
// switch to any other registered context.
func (r *Registry) CanTransition(from, to string) bool {
	def, ok := r.defs[from]
	if !ok {
		return false
	}
	if _, ok := r.defs[to]; !ok {
		return false
	}
	if from == to {
		return true
	}
	if len(def.Transitions) == 0 {
		return true
	}
	for _, target := range def.Transitions {
		if target == to {
			return true
		}
	}
	return false
}

// Adapter returns the stateless adapter for the named context.
// Fails with ErrUnknownContext if the context is not registered.
func (r *Registry) Adapter(name string) (Adapter, error) {
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, errors.NewUnknownContextError("context %q is not registered", name)
	}
	return adapter, nil
}
