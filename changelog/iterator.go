package changelog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ontoframe/reflex/errors"
)

// iteratorBatchSize bounds how many records one page fetch pulls in.
const iteratorBatchSize = 256

// Iterator walks an entity's change records in sequence order using
// keyset pagination, so it never holds a database cursor open between
// Next calls and is safe to use concurrently with ongoing appends.
// The sequence is bounded by the log size when Query was called.
type Iterator struct {
	db       *sql.DB
	entityID string
	filter   Filter
	maxSeq   int64

	lastSeq  int64
	batch    []Record
	pos      int
	current  Record
	returned int
	done     bool
	err      error
}

func newIterator(db *sql.DB, entityID string, filter Filter, maxSeq int64) *Iterator {
	return &Iterator{
		db:       db,
		entityID: entityID,
		filter:   filter,
		maxSeq:   maxSeq,
	}
}

// Next advances to the next record, returning false when the sequence
// is exhausted or an error occurred (check Err).
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	if it.filter.Limit > 0 && it.returned >= it.filter.Limit {
		it.done = true
		return false
	}

	if it.pos >= len(it.batch) {
		if !it.fetchBatch(ctx) {
			return false
		}
	}

	it.current = it.batch[it.pos]
	it.pos++
	it.lastSeq = it.current.Seq
	it.returned++
	return true
}

// Record returns the record most recently advanced to by Next.
func (it *Iterator) Record() Record {
	return it.current
}

// Err returns the first error encountered while iterating.
func (it *Iterator) Err() error {
	return it.err
}

// Reset restarts the iterator from the beginning of the bounded
// sequence. Already-returned records are returned again, unchanged.
func (it *Iterator) Reset() {
	it.lastSeq = 0
	it.batch = nil
	it.pos = 0
	it.returned = 0
	it.done = false
	it.err = nil
}

func (it *Iterator) fetchBatch(ctx context.Context) bool {
	where := []string{"entity_id = ?", "seq > ?", "seq <= ?"}
	args := []any{it.entityID, it.lastSeq, it.maxSeq}

	if it.filter.Context != "" {
		where = append(where, "context = ?")
		args = append(args, it.filter.Context)
	}
	// Timestamps are stored in UTC and sqlite compares the bound
	// values as strings, so bounds must be normalized to UTC too or
	// the comparison is not total across zone offsets.
	if it.filter.Since != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, it.filter.Since.UTC())
	}
	if it.filter.Until != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, it.filter.Until.UTC())
	}

	query := "SELECT " + changeSelectColumns + " FROM changes WHERE " +
		strings.Join(where, " AND ") + " ORDER BY seq ASC LIMIT ?"
	args = append(args, iteratorBatchSize)

	rows, err := it.db.QueryContext(ctx, query, args...)
	if err != nil {
		it.err = errors.Wrap(err, "fetch change batch")
		return false
	}
	defer rows.Close()

	it.batch = it.batch[:0]
	it.pos = 0
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			it.err = err
			return false
		}
		it.batch = append(it.batch, rec)
	}
	if err := rows.Err(); err != nil {
		it.err = errors.Wrap(err, "iterate change batch")
		return false
	}

	if len(it.batch) == 0 {
		it.done = true
		return false
	}
	return true
}

// Collect drains the iterator into a slice.
func (it *Iterator) Collect(ctx context.Context) ([]Record, error) {
	var records []Record
	for it.Next(ctx) {
		records = append(records, it.Record())
	}
	return records, it.Err()
}
