package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a sql.DB for the series catalog.
type DB struct {
	conn *sql.DB
}

// dsnParams holds the connection pragmas. Batch ingest readers hit the
// catalog from several goroutines, so WAL plus a busy timeout is required.
const dsnParams = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// Open opens (or creates) the catalog database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", "file:"+path+"?"+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
