// Package sqlrepo implements the repository interfaces with plain SQL over
// database/sql.
//
// The same code runs on SQLite and PostgreSQL. Queries are written with ?
// placeholders (database.DB rebinds them), column lists come from the
// schema package, and only syntax both backends understand is used:
// LIMIT/OFFSET, RETURNING, LEFT JOIN, COUNT(*).
package sqlrepo

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Clock returns the current time. Repositories stamp created_at and
// updated_at with it.
type Clock func() time.Time

// SystemClock is UTC wall time truncated to microseconds, the finest
// precision PostgreSQL stores. Truncating up front means a record reads
// back exactly as it was written on either backend.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type options struct {
	now Clock
}

// Option configures a repository.
type Option func(*options)

// WithClock replaces SystemClock. Tests use it to get deterministic
// timestamps and ordering.
func WithClock(c Clock) Option {
	return func(o *options) { o.now = c }
}

func buildOptions(opts []Option) options {
	o := options{now: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// timestamp scans a timestamp column into a UTC time.Time. PostgreSQL hands
// back time.Time; SQLite hands back time.Time for declared DATETIME
// columns but plain text for some expressions (RETURNING, joins on older
// builds), so both are accepted.
type timestamp struct {
	t *time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		*ts.t = time.Time{}
		return nil
	}
	return fmt.Errorf("sqlrepo: cannot scan %T into timestamp", src)
}

func (ts timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqlrepo: unrecognized timestamp %q", s)
}

var _ sql.Scanner = timestamp{}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}
