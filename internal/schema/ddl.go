package schema

import (
	"fmt"
	"strings"
)

// CreateStatements derives the DDL for every table and index in Tables.
// All statements are idempotent (IF NOT EXISTS).
func CreateStatements(d Dialect) []string {
	var stmts []string
	for _, t := range Tables {
		stmts = append(stmts, CreateTable(d, t))
		for _, idx := range t.Indexes {
			stmts = append(stmts, CreateIndex(t, idx))
		}
	}
	return stmts
}

// CreateTable renders CREATE TABLE IF NOT EXISTS for t.
func CreateTable(d Dialect, t Table) string {
	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		parts = append(parts, "    "+columnDefinition(d, c))
	}
	for _, c := range t.Columns {
		if c.References != nil {
			parts = append(parts, "    "+foreignKeyDefinition(t, c))
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", t.Name, strings.Join(parts, ",\n"))
}

// CreateIndex renders CREATE INDEX IF NOT EXISTS; the syntax is shared by
// both dialects.
func CreateIndex(t Table, idx Index) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		idx.Name, t.Name, strings.Join(idx.Columns, ", "))
}

func columnDefinition(d Dialect, c Column) string {
	parts := []string{c.Name, d.ColumnType(c)}
	if c.Type == Serial {
		// primary key clause is part of the type
		return strings.Join(parts, " ")
	}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != NoDefault {
		parts = append(parts, "DEFAULT", d.DefaultLiteral(c.Default))
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	if check := d.Check(c); check != "" {
		parts = append(parts, "CHECK ("+check+")")
	}
	return strings.Join(parts, " ")
}

func foreignKeyDefinition(t Table, c Column) string {
	fk := c.References
	def := fmt.Sprintf("CONSTRAINT %s_%s_fkey FOREIGN KEY (%s) REFERENCES %s (%s)",
		t.Name, c.Name, c.Name, fk.Table, fk.Column)
	if fk.OnDelete != "" && fk.OnDelete != NoAction {
		def += " ON DELETE " + string(fk.OnDelete)
	}
	return def
}
