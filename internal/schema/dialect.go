package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect renders the logical schema for one SQL backend.
type Dialect interface {
	// Name identifies the dialect ("sqlite", "postgres").
	Name() string
	// ColumnType renders the SQL type of c, including the primary key
	// clause for Serial columns.
	ColumnType(c Column) string
	// DefaultLiteral renders a DEFAULT expression.
	DefaultLiteral(d Default) string
	// Check returns an optional CHECK expression enforcing what the SQL
	// type alone does not (e.g. string length on SQLite).
	Check(c Column) string
	// Rebind rewrites ? placeholders into the dialect's bind syntax.
	Rebind(query string) string
}

var (
	SQLite   Dialect = sqliteDialect{}
	Postgres Dialect = postgresDialect{}
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) ColumnType(c Column) string {
	switch c.Type {
	case Serial:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case BigInt:
		return "INTEGER"
	case String, Text:
		return "TEXT"
	case Bool:
		return "BOOLEAN"
	case Timestamp:
		return "DATETIME"
	}
	panic(fmt.Sprintf("schema: sqlite: unknown column type %d", c.Type))
}

func (sqliteDialect) DefaultLiteral(d Default) string {
	switch d {
	case DefaultTrue:
		return "1"
	case DefaultFalse:
		return "0"
	case DefaultNow:
		return "CURRENT_TIMESTAMP"
	}
	return ""
}

// SQLite ignores VARCHAR lengths, so bounded strings get an explicit CHECK.
func (sqliteDialect) Check(c Column) string {
	if c.Type == String && c.Size > 0 {
		return fmt.Sprintf("length(%s) <= %d", c.Name, c.Size)
	}
	return ""
}

func (sqliteDialect) Rebind(query string) string { return query }

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) ColumnType(c Column) string {
	switch c.Type {
	case Serial:
		return "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case BigInt:
		return "BIGINT"
	case String:
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	case Text:
		return "TEXT"
	case Bool:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMPTZ"
	}
	panic(fmt.Sprintf("schema: postgres: unknown column type %d", c.Type))
}

func (postgresDialect) DefaultLiteral(d Default) string {
	switch d {
	case DefaultTrue:
		return "TRUE"
	case DefaultFalse:
		return "FALSE"
	case DefaultNow:
		return "NOW()"
	}
	return ""
}

func (postgresDialect) Check(Column) string { return "" }

// Rebind turns "a = ? AND b = ?" into "a = $1 AND b = $2". Queries in this
// module never contain a literal question mark.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
