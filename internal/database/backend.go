// Package database opens the relational store the repositories run on.
//
// TWO BACKENDS, ONE HANDLE:
// The service runs either on an embedded SQLite file or on a PostgreSQL
// server. Both are reached through database/sql, so the repositories are
// written once against *DB. What differs per backend is kept behind the
// Backend interface:
//   - how a connection is opened (file + pragmas vs. a pgx pool)
//   - which SQL dialect renders the schema and the ? placeholders
//   - how a driver error is recognized as a constraint violation
//
// The Connector opens a Backend lazily, exactly once, and hands the same
// *DB to every caller after that.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/schema"
)

// Backend is one concrete relational store.
type Backend interface {
	// Name is the configured database type ("sqlite", "postgresql").
	Name() string
	Dialect() schema.Dialect
	// Open connects and verifies the connection with a ping. The returned
	// release func frees anything the *sql.DB does not own; it runs after
	// the *sql.DB is closed.
	Open(ctx context.Context) (db *sql.DB, release func(), err error)
	// Classify maps a driver error to apperror.ErrUniqueViolation or
	// apperror.ErrInvalidReference. It returns nil for anything else.
	Classify(err error) error
}

// NewBackend picks the backend variant for cfg. An unknown type is an
// apperror.ErrConfiguration.
func NewBackend(cfg config.Database) (Backend, error) {
	dbType, err := config.ParseDatabaseType(cfg.Type)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case config.DatabaseSQLite:
		return &Embedded{Path: cfg.URL}, nil
	case config.DatabasePostgreSQL:
		return &Networked{URL: cfg.URL, MaxConns: cfg.MaxConns}, nil
	}
	return nil, apperror.Configuration("DATABASE_TYPE", fmt.Sprintf("unsupported database type %q", cfg.Type))
}
