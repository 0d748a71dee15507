package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/schema"
)

// MemoryPath opens a private in-memory database. Tests use it.
const MemoryPath = ":memory:"

// Embedded is a single-file SQLite database (modernc.org/sqlite, pure Go,
// no cgo).
type Embedded struct {
	Path string
}

var _ Backend = (*Embedded)(nil)

func (e *Embedded) Name() string            { return config.DatabaseSQLite }
func (e *Embedded) Dialect() schema.Dialect { return schema.SQLite }

// Open creates the database file (and its directory) if missing.
//
// PRAGMAS LIVE IN THE DSN:
// PRAGMA settings are per connection, and database/sql may open a new
// connection at any time. modernc.org/sqlite applies every _pragma
// parameter to each connection it opens, so foreign keys can never be
// silently off on a fresh connection.
//
// ONE CONNECTION:
// SQLite allows one writer at a time, and every ":memory:" connection is a
// separate empty database. Capping the pool at one connection serializes
// access and keeps in-memory databases whole.
func (e *Embedded) Open(ctx context.Context) (*sql.DB, func(), error) {
	if e.Path != MemoryPath {
		dir := filepath.Dir(e.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("sqlite: creating directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("sqlite", e.dsn())
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}
	return conn, func() {}, nil
}

func (e *Embedded) dsn() string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	if e.Path != MemoryPath {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	// Store time.Time as "YYYY-MM-DD HH:MM:SS.fff+00:00" so values sort as text.
	params.Set("_time_format", "sqlite")
	return e.Path + "?" + params.Encode()
}

func (e *Embedded) Classify(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return apperror.ErrUniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return apperror.ErrInvalidReference
	}
	return nil
}
