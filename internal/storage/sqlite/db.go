// Package sqlite persists the ingestion aggregate, per-player physical
// stats, per-team PPDA and job records in an embedded database. Schema
// changes ship as embedded migrations.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so store types can hang methods off it.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// pragmas the stores rely on. ":memory:" works for tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// Single writer with retry instead of SQLITE_BUSY surfacing to stores.
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return &DB{db}, nil
}
