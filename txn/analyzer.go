// Package txn reconstructs application-meaningful transactions from the
// raw change log. The log itself is transaction-agnostic: there is no
// commit or rollback primitive in the durable core, so what counts as
// one transaction is decided here, after the fact, by a pluggable
// grouping policy. Transactions are derived values — computed on
// demand, never stored.
package txn

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ontoframe/reflex/changelog"
	"github.com/ontoframe/reflex/errors"
)

// Policy decides whether two adjacent records (sorted by sequence id,
// filtered to one entity) belong to the same transaction.
type Policy func(prev, next changelog.Record) bool

// Transaction is a derived grouping of change records. Records keep
// their append order; StartTime and EndTime span the group.
type Transaction struct {
	ID        string
	Records   []changelog.Record
	StartTime time.Time
	EndTime   time.Time
}

// Context returns the context of the transaction's first record, which
// under the default policy is the context of every record in it.
func (t *Transaction) Context() string {
	if len(t.Records) == 0 {
		return ""
	}
	return t.Records[0].Context
}

// Group partitions records into transactions using the policy.
// Every input record lands in exactly one transaction; a single
// isolated record forms a transaction of size 1; empty input yields an
// empty result, not an error.
//
// A policy that panics fails the whole grouping with ErrInvalidPolicy —
// the analyzer is pure computation over already-durable data and has no
// other failure mode.
func Group(records []changelog.Record, policy Policy) ([]Transaction, error) {
	if policy == nil {
		return nil, errors.Wrap(errors.ErrInvalidPolicy, "nil grouping policy")
	}
	if len(records) == 0 {
		return []Transaction{}, nil
	}

	sorted := make([]changelog.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	var transactions []Transaction
	current := []changelog.Record{sorted[0]}

	for i := 1; i < len(sorted); i++ {
		same, err := evaluate(policy, sorted[i-1], sorted[i])
		if err != nil {
			return nil, err
		}
		if same {
			current = append(current, sorted[i])
			continue
		}
		transactions = append(transactions, seal(current))
		current = []changelog.Record{sorted[i]}
	}
	transactions = append(transactions, seal(current))

	return transactions, nil
}

func seal(records []changelog.Record) Transaction {
	return Transaction{
		ID:        "TX-" + uuid.NewString(),
		Records:   records,
		StartTime: records[0].Timestamp,
		EndTime:   records[len(records)-1].Timestamp,
	}
}

func evaluate(policy Policy, prev, next changelog.Record) (same bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInvalidPolicy,
				"grouping policy panicked on records %d/%d: %v", prev.Seq, next.Seq, r)
		}
	}()
	return policy(prev, next), nil
}
