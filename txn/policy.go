package txn

import (
	"time"

	"github.com/ontoframe/reflex/changelog"
)

// DefaultMaxGap is the default temporal window for grouping: records
// closer together than this (and in the same context) belong to one
// transaction.
const DefaultMaxGap = time.Second

// SameContextWithin returns the default grouping policy: two adjacent
// records share a transaction when they carry the same context and
// their timestamps are no further apart than maxGap.
func SameContextWithin(maxGap time.Duration) Policy {
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	return func(prev, next changelog.Record) bool {
		if prev.Context != next.Context {
			return false
		}
		gap := next.Timestamp.Sub(prev.Timestamp)
		if gap < 0 {
			gap = -gap
		}
		return gap <= maxGap
	}
}

// SameContext groups purely by context, ignoring time.
func SameContext() Policy {
	return func(prev, next changelog.Record) bool {
		return prev.Context == next.Context
	}
}

// SameFacet groups runs of changes to one facet.
func SameFacet() Policy {
	return func(prev, next changelog.Record) bool {
		return prev.Facet == next.Facet
	}
}
