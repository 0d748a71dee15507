// Package schema is the single description of the relational tables.
//
// Tables are declared once, in logical terms (a bounded string, a boolean
// that defaults to true, a reference to users.id). A Dialect turns that
// description into SQL for one backend, so the SQLite and PostgreSQL
// schemas are always derived from the same source and cannot drift apart.
package schema

import "strings"

// Type is a logical column type. Dialects map it to a concrete SQL type.
type Type int

const (
	// Serial is a backend-generated, monotonically assigned integer key.
	Serial Type = iota
	// BigInt is a 64-bit integer (used for references to Serial keys).
	BigInt
	// String is a bounded string; Column.Size holds the maximum length.
	String
	// Text is an unbounded string.
	Text
	Bool
	Timestamp
)

// Default is a logical column default.
type Default int

const (
	NoDefault Default = iota
	DefaultTrue
	DefaultFalse
	DefaultNow
)

// Action is a referential action for ON DELETE.
type Action string

const (
	NoAction Action = "NO ACTION"
	Restrict Action = "RESTRICT"
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
)

// ForeignKey declares that a column references Table(Column).
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete Action
}

type Column struct {
	Name       string
	Type       Type
	Size       int // max length for String
	PrimaryKey bool
	Nullable   bool
	Unique     bool
	Default    Default
	References *ForeignKey
}

type Index struct {
	Name    string
	Columns []string
}

type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
}

// ColumnNames returns the table's column names in declaration order.
// Repositories scan rows in exactly this order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// SelectList renders the column list for SELECT and RETURNING clauses,
// optionally qualified by a table alias ("p.id, p.title, ...").
func (t Table) SelectList(alias string) string {
	names := t.ColumnNames()
	if alias != "" {
		for i, n := range names {
			names[i] = alias + "." + n
		}
	}
	return strings.Join(names, ", ")
}

// MaxNameLength and friends mirror the String sizes below so the service
// layer validates against the same limits the tables declare.
const (
	MaxNameLength  = 255
	MaxEmailLength = 255
	MaxTitleLength = 255
)

// Users is the users table.
var Users = Table{
	Name: "users",
	Columns: []Column{
		{Name: "id", Type: Serial, PrimaryKey: true},
		{Name: "name", Type: String, Size: MaxNameLength},
		{Name: "email", Type: String, Size: MaxEmailLength, Unique: true},
		{Name: "bio", Type: Text, Nullable: true},
		{Name: "is_active", Type: Bool, Default: DefaultTrue},
		{Name: "created_at", Type: Timestamp, Default: DefaultNow},
		{Name: "updated_at", Type: Timestamp, Default: DefaultNow},
	},
	Indexes: []Index{
		{Name: "idx_users_created_at", Columns: []string{"created_at"}},
	},
}

// Posts is the posts table. Deleting a user keeps their posts and clears
// author_id.
var Posts = Table{
	Name: "posts",
	Columns: []Column{
		{Name: "id", Type: Serial, PrimaryKey: true},
		{Name: "title", Type: String, Size: MaxTitleLength},
		{Name: "content", Type: Text},
		{Name: "author_id", Type: BigInt, Nullable: true,
			References: &ForeignKey{Table: "users", Column: "id", OnDelete: SetNull}},
		{Name: "published", Type: Bool, Default: DefaultFalse},
		{Name: "created_at", Type: Timestamp, Default: DefaultNow},
		{Name: "updated_at", Type: Timestamp, Default: DefaultNow},
	},
	Indexes: []Index{
		{Name: "idx_posts_created_at", Columns: []string{"created_at"}},
		{Name: "idx_posts_author_id", Columns: []string{"author_id"}},
	},
}

// Tables lists every table in creation order (referenced tables first).
var Tables = []Table{Users, Posts}
