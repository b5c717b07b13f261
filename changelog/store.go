package changelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ontoframe/reflex/errors"
)

// Query constants
const (
	changeInsertQuery = `
		INSERT INTO changes (id, entity_id, context, operation, facet, old_value, new_value, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	changeSelectColumns = `seq, id, entity_id, context, operation, facet, old_value, new_value, metadata, timestamp`

	maxSeqQuery = `SELECT COALESCE(MAX(seq), 0) FROM changes`
)

// SQLStore persists change records in SQLite. The connection must be
// opened through db.Open so that synchronous=FULL holds: Append only
// returns after the record is durable.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a change-log store over an open database.
func NewSQLStore(db *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{db: db, logger: logger}
}

// NewChangeID generates an opaque change identifier.
func NewChangeID() string {
	return "CH-" + uuid.NewString()
}

// Append durably writes one record and assigns its sequence id.
// On success the record's Seq and ID fields are populated and the ID is
// returned. On failure the record is not committed and the caller must
// treat the corresponding mutation as not having happened: the engine
// never applies an in-memory facet write before Append returns.
func (s *SQLStore) Append(ctx context.Context, rec *Record) (string, error) {
	if rec.ID == "" {
		rec.ID = NewChangeID()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	// Stored in UTC so the column's string ordering matches time order.
	rec.Timestamp = rec.Timestamp.UTC()

	oldJSON, err := json.Marshal(rec.OldValue)
	if err != nil {
		return "", errors.Wrap(err, "marshal old value")
	}
	newJSON, err := json.Marshal(rec.NewValue)
	if err != nil {
		return "", errors.Wrap(err, "marshal new value")
	}
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return "", errors.Wrap(err, "marshal metadata")
	}

	res, err := s.db.ExecContext(ctx, changeInsertQuery,
		rec.ID,
		rec.EntityID,
		rec.Context,
		rec.Operation,
		rec.Facet,
		string(oldJSON),
		string(newJSON),
		string(metaJSON),
		rec.Timestamp,
	)
	if err != nil {
		return "", errors.WrapPersistence(err, "append change record")
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return "", errors.WrapPersistence(err, "read change sequence id")
	}
	rec.Seq = seq

	s.logger.Debugw("Change appended",
		"change_id", rec.ID,
		"seq", seq,
		"entity_id", rec.EntityID,
		"context", rec.Context,
		"operation", rec.Operation,
		"facet", rec.Facet,
	)
	return rec.ID, nil
}

// Query returns a lazy iterator over an entity's records matching the
// filter, in sequence order. The iterator is bounded by the maximum
// sequence id at call time: records appended during iteration are not
// observed (read committed as of call time).
func (s *SQLStore) Query(ctx context.Context, entityID string, filter Filter) (*Iterator, error) {
	var maxSeq int64
	if err := s.db.QueryRowContext(ctx, maxSeqQuery).Scan(&maxSeq); err != nil {
		return nil, errors.Wrap(err, "snapshot change log bound")
	}
	return newIterator(s.db, entityID, filter, maxSeq), nil
}

// Stats aggregates record counts for operational tooling.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByContext:   make(map[string]int64),
		ByOperation: make(map[string]int64),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT entity_id) FROM changes`,
	).Scan(&stats.TotalRecords, &stats.UniqueEntities)
	if err != nil {
		return nil, errors.Wrap(err, "query change log totals")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT context, COUNT(*) FROM changes GROUP BY context`)
	if err != nil {
		return nil, errors.Wrap(err, "query per-context counts")
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, errors.Wrap(err, "scan per-context count")
		}
		stats.ByContext[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate per-context counts")
	}

	opRows, err := s.db.QueryContext(ctx, `SELECT operation, COUNT(*) FROM changes GROUP BY operation`)
	if err != nil {
		return nil, errors.Wrap(err, "query per-operation counts")
	}
	defer opRows.Close()
	for opRows.Next() {
		var name string
		var count int64
		if err := opRows.Scan(&name, &count); err != nil {
			return nil, errors.Wrap(err, "scan per-operation count")
		}
		stats.ByOperation[name] = count
	}
	return stats, opRows.Err()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var oldJSON, newJSON, metaJSON string
	if err := rows.Scan(
		&rec.Seq,
		&rec.ID,
		&rec.EntityID,
		&rec.Context,
		&rec.Operation,
		&rec.Facet,
		&oldJSON,
		&newJSON,
		&metaJSON,
		&rec.Timestamp,
	); err != nil {
		return Record{}, errors.Wrap(err, "scan change record")
	}

	if err := json.Unmarshal([]byte(oldJSON), &rec.OldValue); err != nil {
		return Record{}, errors.Wrapf(err, "unmarshal old value of %s", rec.ID)
	}
	if err := json.Unmarshal([]byte(newJSON), &rec.NewValue); err != nil {
		return Record{}, errors.Wrapf(err, "unmarshal new value of %s", rec.ID)
	}
	if metaJSON != "" && metaJSON != "null" {
		if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
			return Record{}, errors.Wrapf(err, "unmarshal metadata of %s", rec.ID)
		}
	}
	return rec, nil
}
