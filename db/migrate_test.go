package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateFreshDatabase(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db, nil))

	// changes table exists with the expected columns
	rows, err := db.Query("SELECT seq, id, entity_id, context, operation, facet, old_value, new_value, metadata, timestamp FROM changes")
	require.NoError(t, err)
	rows.Close()

	// schema_migrations records every migration
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.GreaterOrEqual(t, count, 2)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db, nil))

	var before int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&before))

	// Second run applies nothing new
	require.NoError(t, Migrate(db, nil))

	var after int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&after))
	assert.Equal(t, before, after)
}

func TestOpenOnDiskDatabase(t *testing.T) {
	path := t.TempDir() + "/reflex.db"

	db, err := Open(path, nil)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var sync int
	require.NoError(t, db.QueryRow("PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, 2, sync, "synchronous should be FULL")
}
