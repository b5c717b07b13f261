// Package changelog implements the append-only change log: the sole
// source of truth for what happened to every entity. Records are
// appended durably, never mutated, never reordered, and carry no
// transaction concept — grouping is a read-side concern (see txn).
package changelog

import (
	"time"
)

// Record is one immutable log entry: a facet mutation or a context
// switch, attributed to the context active at the time.
//
// Seq is assigned by the store at append time and strictly increases
// in append order. ID is an opaque identifier for external reference.
type Record struct {
	Seq       int64          `json:"seq"`
	ID        string         `json:"id"`
	EntityID  string         `json:"entity_id"`
	Context   string         `json:"context"`
	Operation string         `json:"operation"`
	Facet     string         `json:"facet"`
	OldValue  any            `json:"old_value"`
	NewValue  any            `json:"new_value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Filter narrows a change-log query. Zero values match everything.
type Filter struct {
	Context string     // records written under this context only
	Since   *time.Time // inclusive lower bound on Timestamp
	Until   *time.Time // inclusive upper bound on Timestamp
	Limit   int        // 0 = no limit
}

// Stats summarizes the log for operational tooling.
type Stats struct {
	TotalRecords   int64
	UniqueEntities int64
	ByContext      map[string]int64
	ByOperation    map[string]int64
}
