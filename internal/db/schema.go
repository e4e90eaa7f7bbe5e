package db

import "strings"

// Column is one column of a table definition.
type Column struct {
	Name       string
	Type       string
	Constraint string // e.g. "NOT NULL", "UNIQUE NOT NULL", "DEFAULT FALSE"
}

// Index is a secondary index created alongside its table.
type Index struct {
	Name    string
	Columns []string
}

// Table describes a table once. The same definition renders the CREATE TABLE
// statement and the column list every SELECT uses, so rows are always decoded
// by name against the layout that created them.
type Table struct {
	Name        string
	Columns     []Column
	Constraints []string // table-level clauses such as FOREIGN KEY
	Indexes     []Index
}

// UsersTable holds the people whose attendance is tracked.
var UsersTable = Table{
	Name: "users",
	Columns: []Column{
		{Name: "id", Type: "INTEGER", Constraint: "PRIMARY KEY AUTOINCREMENT"},
		{Name: "name", Type: "TEXT", Constraint: "NOT NULL"},
		{Name: "email", Type: "TEXT", Constraint: "UNIQUE NOT NULL"},
		{Name: "role", Type: "TEXT", Constraint: "NOT NULL"},
		{Name: "biotime_id", Type: "TEXT"},
		{Name: "created_at", Type: "TIMESTAMP", Constraint: "DEFAULT CURRENT_TIMESTAMP"},
	},
}

// AttendanceTable holds check-in/check-out sessions; many rows per user.
var AttendanceTable = Table{
	Name: "attendance",
	Columns: []Column{
		{Name: "id", Type: "INTEGER", Constraint: "PRIMARY KEY AUTOINCREMENT"},
		{Name: "user_id", Type: "INTEGER", Constraint: "NOT NULL"},
		{Name: "check_in", Type: "TIMESTAMP", Constraint: "NOT NULL"},
		{Name: "check_out", Type: "TIMESTAMP"},
		{Name: "status", Type: "TEXT", Constraint: "NOT NULL"},
		{Name: "synced_with_biotime", Type: "BOOLEAN", Constraint: "NOT NULL DEFAULT FALSE"},
	},
	Constraints: []string{
		"FOREIGN KEY (user_id) REFERENCES users (id)",
	},
	Indexes: []Index{
		{Name: "idx_attendance_user_check_in", Columns: []string{"user_id", "check_in"}},
	},
}

// Tables lists every table in creation order. Referenced tables come first.
var Tables = []Table{UsersTable, AttendanceTable}

// CreateStatement renders an idempotent CREATE TABLE statement.
func (t Table) CreateStatement() string {
	defs := make([]string, 0, len(t.Columns)+len(t.Constraints))
	for _, c := range t.Columns {
		def := c.Name + " " + c.Type
		if c.Constraint != "" {
			def += " " + c.Constraint
		}
		defs = append(defs, "\t"+def)
	}
	for _, c := range t.Constraints {
		defs = append(defs, "\t"+c)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(t.Name)
	b.WriteString(" (\n")
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

// IndexStatements renders one idempotent CREATE INDEX statement per index.
func (t Table) IndexStatements() []string {
	out := make([]string, 0, len(t.Indexes))
	for _, ix := range t.Indexes {
		out = append(out, "CREATE INDEX IF NOT EXISTS "+ix.Name+" ON "+t.Name+" ("+strings.Join(ix.Columns, ", ")+")")
	}
	return out
}

// ColumnNames returns the column names in definition order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnList returns the columns joined for use in a SELECT.
func (t Table) ColumnList() string {
	return strings.Join(t.ColumnNames(), ", ")
}

// QualifiedColumnList is ColumnList with every column prefixed by alias,
// for SELECTs that join tables sharing column names.
func (t Table) QualifiedColumnList(alias string) string {
	names := t.ColumnNames()
	for i, n := range names {
		names[i] = alias + "." + n
	}
	return strings.Join(names, ", ")
}
