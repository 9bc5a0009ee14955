package db

import (
	"strings"

	"github.com/teranos/graphminer/errors"
)

// ErrDatabaseClosed is returned when the run store is used after Close,
// typically when mining workers outlive an interrupted command.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err is ErrDatabaseClosed or a raw driver
// error about a closed database.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
