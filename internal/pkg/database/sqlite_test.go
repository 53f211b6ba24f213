package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id TEXT);\n", ExtractUpMigration(content))
	assert.Equal(t, "SELECT 1;", ExtractUpMigration("SELECT 1;"))
}

func TestNewSQLiteDB_AppliesMigrationsOnce(t *testing.T) {
	migrations := fstest.MapFS{
		"001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE things (id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE things;\n")},
		"002_seed.sql": {Data: []byte("-- +migrate Up\nINSERT INTO things (id) VALUES ('a');\n")},
	}
	path := filepath.Join(t.TempDir(), "engine.db")

	db, err := NewSQLiteDB(path, migrations)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-run the seed.
	db, err = NewSQLiteDB(path, migrations)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM things").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNewSQLiteDB_RequiresPath(t *testing.T) {
	_, err := NewSQLiteDB("  ", fstest.MapFS{})
	assert.Error(t, err)
}

func TestNewSQLiteDB_AppliesPragmas(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "engine.db"), fstest.MapFS{})
	require.NoError(t, err)
	defer db.Close()

	var journal string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)

	var timeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}
