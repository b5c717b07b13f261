package txn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoframe/reflex/changelog"
	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/txn"
)

func record(seq int64, ctxName string, at time.Time) changelog.Record {
	return changelog.Record{
		Seq:       seq,
		ID:        "CH-test",
		EntityID:  "Widget",
		Context:   ctxName,
		Operation: "modify_property",
		Facet:     "instances",
		Timestamp: at,
	}
}

func TestGroupEmptyInput(t *testing.T) {
	transactions, err := txn.Group(nil, txn.SameContextWithin(time.Second))
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestGroupSingleRecord(t *testing.T) {
	now := time.Now()
	transactions, err := txn.Group(
		[]changelog.Record{record(1, "meta", now)},
		txn.SameContextWithin(time.Second),
	)
	require.NoError(t, err)

	require.Len(t, transactions, 1)
	assert.Len(t, transactions[0].Records, 1)
	assert.Equal(t, now, transactions[0].StartTime)
	assert.Equal(t, now, transactions[0].EndTime)
	assert.Equal(t, "meta", transactions[0].Context())
	assert.NotEmpty(t, transactions[0].ID)
}

func TestGroupByContextAndGap(t *testing.T) {
	base := time.Now()
	records := []changelog.Record{
		record(1, "meta", base),
		record(2, "meta", base.Add(200*time.Millisecond)),
		record(3, "meta", base.Add(5*time.Second)), // gap too large
		record(4, "domain", base.Add(5100*time.Millisecond)), // context changes
		record(5, "domain", base.Add(5200*time.Millisecond)),
	}

	transactions, err := txn.Group(records, txn.SameContextWithin(time.Second))
	require.NoError(t, err)

	require.Len(t, transactions, 3)
	assert.Len(t, transactions[0].Records, 2)
	assert.Len(t, transactions[1].Records, 1)
	assert.Len(t, transactions[2].Records, 2)
	assert.Equal(t, "meta", transactions[0].Context())
	assert.Equal(t, "domain", transactions[2].Context())
}

func TestGroupRoundTrip(t *testing.T) {
	// Partition property: every input record appears in exactly one
	// returned transaction, none omitted, none duplicated.
	base := time.Now()
	var records []changelog.Record
	contextsCycle := []string{"meta", "meta", "domain", "instance", "instance", "instance"}
	for i := 0; i < 30; i++ {
		records = append(records, record(
			int64(i+1),
			contextsCycle[i%len(contextsCycle)],
			base.Add(time.Duration(i*700)*time.Millisecond),
		))
	}

	transactions, err := txn.Group(records, txn.SameContextWithin(time.Second))
	require.NoError(t, err)

	seen := make(map[int64]int)
	total := 0
	for _, tx := range transactions {
		for _, rec := range tx.Records {
			seen[rec.Seq]++
			total++
		}
	}
	assert.Equal(t, len(records), total)
	for _, rec := range records {
		assert.Equal(t, 1, seen[rec.Seq], "record %d must appear exactly once", rec.Seq)
	}
}

func TestGroupSortsBySequence(t *testing.T) {
	base := time.Now()
	records := []changelog.Record{
		record(3, "meta", base.Add(2*time.Millisecond)),
		record(1, "meta", base),
		record(2, "meta", base.Add(time.Millisecond)),
	}

	transactions, err := txn.Group(records, txn.SameContextWithin(time.Second))
	require.NoError(t, err)

	require.Len(t, transactions, 1)
	seqs := []int64{}
	for _, rec := range transactions[0].Records {
		seqs = append(seqs, rec.Seq)
	}
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestGroupPanickingPolicy(t *testing.T) {
	base := time.Now()
	records := []changelog.Record{
		record(1, "meta", base),
		record(2, "meta", base.Add(time.Millisecond)),
	}

	_, err := txn.Group(records, func(prev, next changelog.Record) bool {
		panic("misbehaving policy")
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidPolicy(err))
}

func TestGroupNilPolicy(t *testing.T) {
	_, err := txn.Group([]changelog.Record{record(1, "meta", time.Now())}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidPolicy(err))
}

func TestSameFacetPolicy(t *testing.T) {
	base := time.Now()
	records := []changelog.Record{
		{Seq: 1, Facet: "definition", Timestamp: base},
		{Seq: 2, Facet: "definition", Timestamp: base},
		{Seq: 3, Facet: "instances", Timestamp: base},
	}

	transactions, err := txn.Group(records, txn.SameFacet())
	require.NoError(t, err)
	require.Len(t, transactions, 2)
}
