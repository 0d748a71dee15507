package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/schema"
)

// PostgreSQL SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Networked is a PostgreSQL server reached through a pgx connection pool.
// The pool is wrapped by pgx's database/sql adapter so repositories use the
// same *sql.DB API as on SQLite.
type Networked struct {
	URL      string
	MaxConns int
}

var _ Backend = (*Networked)(nil)

func (n *Networked) Name() string            { return config.DatabasePostgreSQL }
func (n *Networked) Dialect() schema.Dialect { return schema.Postgres }

func (n *Networked) Open(ctx context.Context) (*sql.DB, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(n.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: parsing connection string: %w", err)
	}
	if n.MaxConns > 0 {
		poolCfg.MaxConns = int32(n.MaxConns)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	// The *sql.DB borrows connections from the pool but does not own it.
	return stdlib.OpenDBFromPool(pool), pool.Close, nil
}

func (n *Networked) Classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.ErrUniqueViolation
	case pgForeignKeyViolation:
		return apperror.ErrInvalidReference
	}
	return nil
}
