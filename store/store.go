// Package store implements the unified data store: every facet of an
// entity is loaded exactly once and addressed uniformly regardless of
// which processing context is active. Context switches never reload or
// copy facet data — only the interpretation changes, never the data.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ontoframe/reflex/errors"
)

// FacetSource supplies an entity's full facet map. It is a black box
// to the core: a database, an RDF store, a directory of files, or an
// in-memory fixture in tests.
type FacetSource interface {
	// Fetch returns all facets for the entity, or an error wrapping
	// errors.ErrNotFound when no backing data exists.
	Fetch(ctx context.Context, entityID string) (map[string]any, error)
}

// Store is the unified data store. Load is idempotent per process:
// the first call reads from the FacetSource, every later call returns
// the same cached Entity.
type Store struct {
	source FacetSource
	logger *zap.SugaredLogger

	mu       sync.Mutex
	entities map[string]*Entity
	inflight map[string]*loadCall
}

type loadCall struct {
	done   chan struct{}
	entity *Entity
	err    error
}

// New creates a Store backed by the given facet source.
func New(source FacetSource, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		source:   source,
		logger:   logger,
		entities: make(map[string]*Entity),
		inflight: make(map[string]*loadCall),
	}
}

// Load returns the entity for entityID, fetching its facets from the
// backing source on first use. Concurrent loads of the same entity
// share one fetch. Fails with ErrNotFound if the source has no data.
func (s *Store) Load(ctx context.Context, entityID string) (*Entity, error) {
	s.mu.Lock()
	if entity, ok := s.entities[entityID]; ok {
		s.mu.Unlock()
		return entity, nil
	}
	if call, ok := s.inflight[entityID]; ok {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.entity, call.err
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "waiting for entity load")
		}
	}

	call := &loadCall{done: make(chan struct{})}
	s.inflight[entityID] = call
	s.mu.Unlock()

	facets, err := s.source.Fetch(ctx, entityID)
	if err != nil {
		call.err = errors.Wrapf(err, "load entity %s", entityID)
	} else if facets == nil {
		call.err = errors.NewNotFoundError("no facet data for entity %s", entityID)
	} else {
		call.entity = newEntity(entityID, facets)
	}

	s.mu.Lock()
	delete(s.inflight, entityID)
	if call.err == nil {
		s.entities[entityID] = call.entity
	}
	s.mu.Unlock()
	close(call.done)

	if call.err == nil {
		s.logger.Debugw("Entity loaded",
			"entity_id", entityID,
			"facets", len(facets),
		)
	}
	return call.entity, call.err
}

// Cached returns the already-loaded entity, or nil if Load has not
// succeeded for entityID yet.
func (s *Store) Cached(entityID string) *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities[entityID]
}

// SetFacet overwrites the in-memory facet value. It deliberately does
// not write the change log: attribution of a mutation to a context is
// the adapter/engine's responsibility, so no write can slip into the
// history unattributed.
func (s *Store) SetFacet(e *Entity, facet string, value any) error {
	return e.setFacet(facet, value)
}

// Mutate serializes facet mutations for one entity: at most one
// mutation is in flight per entity, so the old value recorded for a
// change is always the true prior state. Reads do not block on it.
func (s *Store) Mutate(e *Entity, fn func() error) error {
	e.mutateMu.Lock()
	defer e.mutateMu.Unlock()
	return fn()
}
