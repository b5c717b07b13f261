package reflex

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ontoframe/reflex/store"
)

// Session is one caller's view of an entity: the entity handle plus
// the caller's current context. Context is per-session, not per-entity
// — that is what makes switching free of reloads, and why two sessions
// over the same entity never have to coordinate.
type Session struct {
	id     string
	entity *store.Entity

	mu      sync.Mutex
	context string
}

func newSession(entity *store.Entity, initialContext string) *Session {
	return &Session{
		id:      "SES-" + uuid.NewString(),
		entity:  entity,
		context: initialContext,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Entity returns the entity this session projects.
func (s *Session) Entity() *store.Entity {
	return s.entity
}

// Context returns the session's current context name.
func (s *Session) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}
