package contexts

import (
	"math"

	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/store"
)

// Adapter is a per-context strategy bound to the unified store's data.
// Adapters are stateless: they hold no private copy of facet data, so
// switching context swaps the policy, never the data. Process plans a
// mutation but does not apply it — the engine commits the facet write
// only after the change record is durably appended.
type Adapter interface {
	// Context returns the context name the adapter serves.
	Context() string

	// CanTouch reports whether the context's permitted facet set
	// includes the named facet.
	CanTouch(facet string) bool

	// Process validates and interprets a generic operation envelope
	// against the entity's current state, returning the planned
	// mutation. Fails with ErrContextPermission when the operation
	// touches a facet outside the permitted set, ErrUnknownFacet when
	// the facet was never loaded, and ErrInvalidOperation for kinds
	// the adapter cannot interpret.
	Process(entity *store.Entity, op Operation) (*Mutation, error)
}

// facetAdapter is the generic adapter built from a context definition.
// Per-context behavior is entirely data-driven: the permitted facet
// set restricts what the context may touch.
type facetAdapter struct {
	def       Definition
	permitted map[string]struct{}
}

func newFacetAdapter(def Definition) *facetAdapter {
	var permitted map[string]struct{}
	if len(def.Facets) > 0 {
		permitted = make(map[string]struct{}, len(def.Facets))
		for _, facet := range def.Facets {
			permitted[facet] = struct{}{}
		}
	}
	return &facetAdapter{def: def, permitted: permitted}
}

func (a *facetAdapter) Context() string {
	return a.def.Name
}

func (a *facetAdapter) CanTouch(facet string) bool {
	if a.permitted == nil {
		return true
	}
	_, ok := a.permitted[facet]
	return ok
}

func (a *facetAdapter) Process(entity *store.Entity, op Operation) (*Mutation, error) {
	if op.Facet == "" {
		return nil, errors.Wrap(errors.ErrInvalidOperation, "operation missing facet")
	}
	if !a.CanTouch(op.Facet) {
		return nil, errors.NewContextPermissionError(
			"context %q may not touch facet %q", a.def.Name, op.Facet)
	}

	old, err := entity.Facet(op.Facet)
	if err != nil {
		return nil, err
	}

	switch op.Kind {
	case OpModifyProperty:
		return &Mutation{
			Facet:    op.Facet,
			OldValue: old,
			NewValue: op.Payload,
			Kind:     OpModifyProperty,
			Metadata: op.Metadata,
		}, nil
	case OpClearProperty:
		return &Mutation{
			Facet:    op.Facet,
			OldValue: old,
			NewValue: nil,
			Kind:     OpClearProperty,
			Metadata: op.Metadata,
		}, nil
	case OpIncrementProperty:
		// Resolved against the current value, so the delta applies to
		// the true prior state when the engine holds the mutation lock.
		next, err := incrementValue(old, op.Payload)
		if err != nil {
			return nil, err
		}
		return &Mutation{
			Facet:    op.Facet,
			OldValue: old,
			NewValue: next,
			Kind:     OpIncrementProperty,
			Metadata: op.Metadata,
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidOperation, "unsupported operation kind %q", op.Kind)
	}
}

func incrementValue(current, delta any) (any, error) {
	cur, ok := asInt64(current)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidOperation, "facet value %v is not an integer", current)
	}
	d, ok := asInt64(delta)
	if !ok {
		if delta == nil {
			d = 1
		} else {
			return nil, errors.Wrapf(errors.ErrInvalidOperation, "increment payload %v is not an integer", delta)
		}
	}
	return cur + d, nil
}

// asInt64 accepts the numeric shapes facet values arrive in: native
// ints from fixtures, int from YAML, float64 from JSON. Fractional
// floats are rejected rather than truncated.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
