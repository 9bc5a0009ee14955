package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/graphminer/errors"
)

func TestOpen_Pragmas(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	_, err := os.Stat(dbPath)
	require.True(t, os.IsNotExist(err))

	db, err := Open(dbPath, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file is created on open")

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			var got string
			require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	db, err := Open("/nonexistent/graphminer/runs.db", nil)
	if err == nil {
		// some drivers connect lazily
		err = db.Ping()
		db.Close()
	}
	require.Error(t, err)
	assert.NotNil(t, errors.GetStack(err), "open errors carry a stack trace")
}

func TestOpenWithMigrations_FailureIsWrapped(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	db, err := Open(dbPath, nil)
	require.NoError(t, err)
	// a mining_runs table with the wrong shape makes 001 fail
	_, err = db.Exec("CREATE TABLE schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO schema_migrations (version) VALUES ('000')")
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE mining_runs (id TEXT)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenWithMigrations(dbPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate "+dbPath)
	assert.Contains(t, err.Error(), "001_create_mining_runs.sql")
}
