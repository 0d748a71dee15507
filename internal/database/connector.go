package database

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Connector owns the process-wide database handle.
//
// The first Get opens the backend, pings it and applies the schema. Every
// later Get returns that same *DB. If the first attempt fails nothing is
// remembered, so the next Get tries again.
type Connector struct {
	backend Backend
	logger  *slog.Logger

	mu sync.Mutex
	db *DB
}

func NewConnector(backend Backend, logger *slog.Logger) *Connector {
	return &Connector{backend: backend, logger: logger}
}

func (c *Connector) Backend() Backend { return c.backend }

func (c *Connector) Get(ctx context.Context) (*DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	start := time.Now()
	db, err := Open(ctx, c.backend)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	c.logger.Info("database connected",
		slog.String("type", c.backend.Name()),
		slog.Duration("duration", time.Since(start)),
	)
	c.db = db
	return db, nil
}

// Close releases the handle if one was opened. A later Get reconnects.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
