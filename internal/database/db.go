package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sakif/blog-api/internal/schema"
)

// DB is the handle repositories query through. Queries are written with ?
// placeholders and rebound for the backend's dialect.
type DB struct {
	conn    *sql.DB
	backend Backend
	release func()
}

// Open connects to b without migrating. Most callers want Connector.Get.
func Open(ctx context.Context, b Backend) (*DB, error) {
	conn, release, err := b.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn, backend: b, release: release}, nil
}

func (db *DB) Dialect() schema.Dialect { return db.backend.Dialect() }

// Classify forwards to the backend; see Backend.Classify.
func (db *DB) Classify(err error) error { return db.backend.Classify(err) }

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.Dialect().Rebind(query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.Dialect().Rebind(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.Dialect().Rebind(query), args...)
}

// Ping checks the connection is still usable. /health calls it.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Collector exports connection pool statistics (open, in use, waits) to
// Prometheus, labelled with the backend name.
func (db *DB) Collector() prometheus.Collector {
	return collectors.NewDBStatsCollector(db.conn, db.backend.Name())
}

// Migrate creates every table and index that does not exist yet. It is
// idempotent and never alters existing tables.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema.CreateStatements(db.Dialect()) {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: migrating: %w", db.backend.Name(), err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	err := db.conn.Close()
	if db.release != nil {
		db.release()
	}
	return err
}
