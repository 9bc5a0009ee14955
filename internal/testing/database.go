// Package testing holds database fixtures shared by package tests
package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/db"
)

// CreateTestDB opens an empty in-memory SQLite database with foreign keys on.
// It is closed when the test ends.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "open in-memory database")
	t.Cleanup(func() { conn.Close() })

	// every pooled connection would get its own :memory: database
	conn.SetMaxOpenConns(1)

	_, err = conn.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err, "enable foreign keys")
	return conn
}

// CreateMigratedTestDB is CreateTestDB with the run schema applied
func CreateMigratedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn := CreateTestDB(t)
	require.NoError(t, db.Migrate(conn, nil), "migrate test database")
	return conn
}
