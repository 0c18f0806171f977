// Package store persists analysis output for the surrounding system:
// assessments, alerts and compliance rows are stored as independent
// records, mirroring how the product keeps agent logs, document-analysis
// rows and alerts apart.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (and creates if needed) the SQLite database at path. Use
// ":memory:" for tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	// SQLite allows one writer; serialize access through one connection.
	db.SetMaxOpenConns(1)
	return db, nil
}
