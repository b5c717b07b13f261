package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrapPreservesSentinel(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "loading entity")

	assert.Contains(t, wrapped.Error(), "loading entity")
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrUnknownFacet))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrUnknownFacet,
		ErrUnknownContext,
		ErrInvalidTransition,
		ErrContextPermission,
		ErrInvalidOperation,
		ErrPersistence,
		ErrInvalidPolicy,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				assert.True(t, Is(a, b))
			} else {
				assert.False(t, Is(a, b), "sentinel %d should not match sentinel %d", i, j)
			}
		}
	}
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(Wrap(ErrNotFound, "ctx")))
	assert.True(t, IsUnknownFacet(Wrap(ErrUnknownFacet, "ctx")))
	assert.True(t, IsUnknownContext(Wrap(ErrUnknownContext, "ctx")))
	assert.True(t, IsInvalidTransition(Wrap(ErrInvalidTransition, "ctx")))
	assert.True(t, IsContextPermission(Wrap(ErrContextPermission, "ctx")))
	assert.True(t, IsPersistence(Wrap(ErrPersistence, "ctx")))
	assert.True(t, IsInvalidPolicy(Wrap(ErrInvalidPolicy, "ctx")))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsPersistence(New("unrelated")))
}

func TestNewFormattedConstructors(t *testing.T) {
	err := NewUnknownFacetError("facet %q not loaded for %s", "patterns", "Widget")
	require.NotNil(t, err)
	assert.True(t, IsUnknownFacet(err))
	assert.Contains(t, err.Error(), `"patterns"`)
	assert.Contains(t, err.Error(), "Widget")

	err = NewInvalidTransitionError("%s -> %s not in graph", "meta", "instance")
	assert.True(t, IsInvalidTransition(err))

	err = NewContextPermissionError("context %s may not touch %s", "domain", "definition")
	assert.True(t, IsContextPermission(err))
}

func TestWrapPersistence(t *testing.T) {
	cause := New("disk full")
	err := WrapPersistence(cause, "append change record")

	assert.True(t, IsPersistence(err))
	assert.Contains(t, err.Error(), "append change record")
	assert.Contains(t, err.Error(), "disk full")
}
