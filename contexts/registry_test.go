package contexts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoframe/reflex/contexts"
	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/store"
)

type fixtureSource struct{}

func (fixtureSource) Fetch(_ context.Context, entityID string) (map[string]any, error) {
	return map[string]any{
		"definition": map[string]any{"label": entityID},
		"instances":  []any{},
		"counter":    2,
	}, nil
}

func loadEntity(t *testing.T) *store.Entity {
	t.Helper()
	s := store.New(fixtureSource{}, nil)
	e, err := s.Load(context.Background(), "Widget")
	require.NoError(t, err)
	return e
}

func TestNewRegistryDefaults(t *testing.T) {
	r, err := contexts.NewRegistry("", nil)
	require.NoError(t, err)

	assert.Equal(t, "meta", r.Default())
	assert.Equal(t, []string{"domain", "instance", "meta"}, r.Names())

	// Fully connected by default
	assert.True(t, r.CanTransition("meta", "domain"))
	assert.True(t, r.CanTransition("instance", "meta"))
	assert.True(t, r.CanTransition("domain", "domain"))
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := contexts.NewRegistry("missing", []contexts.Definition{{Name: "meta"}})
	require.Error(t, err)
	assert.True(t, errors.IsUnknownContext(err))

	_, err = contexts.NewRegistry("meta", []contexts.Definition{
		{Name: "meta", Transitions: []string{"ghost"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsUnknownContext(err))

	_, err = contexts.NewRegistry("meta", []contexts.Definition{
		{Name: "meta"},
		{Name: "meta"},
	})
	require.Error(t, err)
}

func TestRestrictedTransitionGraph(t *testing.T) {
	r, err := contexts.NewRegistry("meta", []contexts.Definition{
		{Name: "meta", Transitions: []string{"domain"}},
		{Name: "domain", Transitions: []string{"instance"}},
		{Name: "instance", Transitions: []string{"domain"}},
	})
	require.NoError(t, err)

	assert.True(t, r.CanTransition("meta", "domain"))
	assert.False(t, r.CanTransition("meta", "instance"), "meta -> instance is not declared")
	assert.True(t, r.CanTransition("domain", "instance"))
	assert.False(t, r.CanTransition("instance", "meta"), "graph is directional")
	assert.False(t, r.CanTransition("meta", "ghost"))
}

func TestAdapterLookup(t *testing.T) {
	r, err := contexts.NewRegistry("", nil)
	require.NoError(t, err)

	adapter, err := r.Adapter("domain")
	require.NoError(t, err)
	assert.Equal(t, "domain", adapter.Context())

	_, err = r.Adapter("ghost")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownContext(err))
}

func TestAdapterProcessModify(t *testing.T) {
	r, err := contexts.NewRegistry("", nil)
	require.NoError(t, err)
	adapter, err := r.Adapter("domain")
	require.NoError(t, err)

	e := loadEntity(t)

	mut, err := adapter.Process(e, contexts.Operation{
		Kind:    contexts.OpModifyProperty,
		Facet:   "instances",
		Payload: []any{"W1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "instances", mut.Facet)
	assert.Equal(t, []any{}, mut.OldValue)
	assert.Equal(t, []any{"W1"}, mut.NewValue)
	assert.Equal(t, contexts.OpModifyProperty, mut.Kind)

	// Planning a mutation must not apply it
	current, err := e.Facet("instances")
	require.NoError(t, err)
	assert.Equal(t, []any{}, current)
}

func TestAdapterPermittedFacets(t *testing.T) {
	r, err := contexts.NewRegistry("meta", []contexts.Definition{
		{Name: "meta", Facets: []string{"definition"}},
		{Name: "domain", Facets: []string{"instances"}},
	})
	require.NoError(t, err)

	meta, err := r.Adapter("meta")
	require.NoError(t, err)
	assert.True(t, meta.CanTouch("definition"))
	assert.False(t, meta.CanTouch("instances"))

	e := loadEntity(t)
	_, err = meta.Process(e, contexts.Operation{
		Kind:    contexts.OpModifyProperty,
		Facet:   "instances",
		Payload: []any{"W1"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsContextPermission(err))
}

func TestAdapterIncrementRejectsFractionalDelta(t *testing.T) {
	r, err := contexts.NewRegistry("", nil)
	require.NoError(t, err)
	adapter, err := r.Adapter("domain")
	require.NoError(t, err)

	e := loadEntity(t)

	// JSON payloads arrive as float64; whole values increment, but a
	// fractional delta must fail instead of silently truncating.
	mut, err := adapter.Process(e, contexts.Operation{
		Kind:    contexts.OpIncrementProperty,
		Facet:   "counter",
		Payload: float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), mut.NewValue)

	_, err = adapter.Process(e, contexts.Operation{
		Kind:    contexts.OpIncrementProperty,
		Facet:   "counter",
		Payload: 2.5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidOperation))
}

func TestAdapterProcessErrors(t *testing.T) {
	r, err := contexts.NewRegistry("", nil)
	require.NoError(t, err)
	adapter, err := r.Adapter("meta")
	require.NoError(t, err)

	e := loadEntity(t)

	_, err = adapter.Process(e, contexts.Operation{Kind: contexts.OpModifyProperty})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidOperation))

	_, err = adapter.Process(e, contexts.Operation{Kind: "teleport", Facet: "definition"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidOperation))

	_, err = adapter.Process(e, contexts.Operation{Kind: contexts.OpModifyProperty, Facet: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsUnknownFacet(err))
}
