// Package reflex is a multi-context reflective data projection core
// with change logging.
//
// An entity's facets are loaded once into a unified store; callers
// open sessions, switch between registered processing contexts, and
// apply operations through per-context adapters. Every mutation —
// including context switches — is appended to a durable change log
// before it becomes visible, and transaction boundaries are
// reconstructed from the log on demand rather than enforced by the
// core.
package reflex

import (
	"context"

	"go.uber.org/zap"

	"github.com/ontoframe/reflex/changelog"
	"github.com/ontoframe/reflex/contexts"
	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/logger"
	"github.com/ontoframe/reflex/store"
	"github.com/ontoframe/reflex/txn"
)

// Engine wires the unified store, context registry and change log into
// the public API surface. It is safe for concurrent use: mutation is
// serialized per entity, reads and queries are not.
type Engine struct {
	store    *store.Store
	registry *contexts.Registry
	log      *changelog.SQLStore
	logger   *zap.SugaredLogger
}

// New creates an engine over a facet source, a context registry and a
// change-log store.
func New(source store.FacetSource, registry *contexts.Registry, log *changelog.SQLStore) *Engine {
	return &Engine{
		store:    store.New(source, logger.Logger),
		registry: registry,
		log:      log,
		logger:   logger.Logger,
	}
}

// Registry returns the engine's context registry.
func (e *Engine) Registry() *contexts.Registry {
	return e.registry
}

// LoadEntity loads all facets for entityID exactly once per process;
// later calls return the cached entity. Fails with ErrNotFound when
// the backing source has no data.
func (e *Engine) LoadEntity(ctx context.Context, entityID string) (*store.Entity, error) {
	return e.store.Load(ctx, entityID)
}

// OpenSession loads the entity (cached after the first call) and opens
// a session on it in the registry's default context. Sessions are
// caller-side state: concurrent sessions over the same entity hold
// independent contexts and never coordinate.
func (e *Engine) OpenSession(ctx context.Context, entityID string) (*Session, error) {
	entity, err := e.store.Load(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return newSession(entity, e.registry.Default()), nil
}

// SwitchContext moves the session to a new context if the transition
// graph permits, appending a context_switch change record. The switch
// touches no facet data and triggers no reload; on append failure the
// session stays in its current context.
func (e *Engine) SwitchContext(ctx context.Context, session *Session, newContext string) error {
	if !e.registry.Contains(newContext) {
		return errors.NewUnknownContextError("context %q is not registered", newContext)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	current := session.context
	if current == newContext {
		return nil
	}
	if !e.registry.CanTransition(current, newContext) {
		return errors.NewInvalidTransitionError(
			"transition %s -> %s not permitted for entity %s", current, newContext, session.entity.ID())
	}

	rec := changelog.Record{
		EntityID:  session.entity.ID(),
		Context:   current,
		Operation: contexts.OpContextSwitch,
		Facet:     contexts.FacetSentinel,
		OldValue:  current,
		NewValue:  newContext,
		Metadata:  map[string]any{"session_id": session.ID()},
	}
	if _, err := e.log.Append(ctx, &rec); err != nil {
		return err
	}

	session.context = newContext
	e.logger.Debugw("Context switched",
		"session_id", session.ID(),
		"entity_id", session.entity.ID(),
		"from", current,
		"to", newContext,
	)
	return nil
}

// ApplyOperation routes a generic operation through the session's
// context adapter and commits it append-then-visible: the change
// record is durably appended first, and only then does the in-memory
// facet value change. On a persistence failure the facet is untouched
// and the caller may retry the whole operation.
func (e *Engine) ApplyOperation(ctx context.Context, session *Session, op contexts.Operation) (string, error) {
	contextName := session.Context()
	adapter, err := e.registry.Adapter(contextName)
	if err != nil {
		return "", err
	}

	entity := session.entity
	var changeID string
	err = e.store.Mutate(entity, func() error {
		mut, err := adapter.Process(entity, op)
		if err != nil {
			return err
		}

		rec := changelog.Record{
			EntityID:  entity.ID(),
			Context:   contextName,
			Operation: mut.Kind,
			Facet:     mut.Facet,
			OldValue:  mut.OldValue,
			NewValue:  mut.NewValue,
			Metadata:  withSessionID(mut.Metadata, session.ID()),
		}
		if _, err := e.log.Append(ctx, &rec); err != nil {
			// Not committed: the facet value is still the old one.
			return err
		}
		changeID = rec.ID

		return e.store.SetFacet(entity, mut.Facet, mut.NewValue)
	})
	if err != nil {
		return "", err
	}
	return changeID, nil
}

// QueryChanges returns a lazy iterator over an entity's change records
// in append order, bounded by the log size at call time.
func (e *Engine) QueryChanges(ctx context.Context, entityID string, filter changelog.Filter) (*changelog.Iterator, error) {
	return e.log.Query(ctx, entityID, filter)
}

// ReconstructTransactions replays the entity's change log and groups
// records into transactions using the supplied policy; a nil policy
// falls back to same-context grouping within txn.DefaultMaxGap.
func (e *Engine) ReconstructTransactions(ctx context.Context, entityID string, policy txn.Policy) ([]txn.Transaction, error) {
	if policy == nil {
		policy = txn.SameContextWithin(txn.DefaultMaxGap)
	}

	it, err := e.log.Query(ctx, entityID, changelog.Filter{})
	if err != nil {
		return nil, err
	}
	records, err := it.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return txn.Group(records, policy)
}

func withSessionID(meta map[string]any, sessionID string) map[string]any {
	merged := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		merged[k] = v
	}
	merged["session_id"] = sessionID
	return merged
}
