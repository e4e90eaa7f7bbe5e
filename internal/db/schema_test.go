package db

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoManager/models"
)

func TestCreateStatement(t *testing.T) {
	tbl := Table{
		Name: "things",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Constraint: "PRIMARY KEY"},
			{Name: "label", Type: "TEXT"},
		},
		Constraints: []string{"UNIQUE (label)"},
	}

	want := "CREATE TABLE IF NOT EXISTS things (\n" +
		"\tid INTEGER PRIMARY KEY,\n" +
		"\tlabel TEXT,\n" +
		"\tUNIQUE (label)\n" +
		")"
	assert.Equal(t, want, tbl.CreateStatement())
}

func TestIndexStatements(t *testing.T) {
	stmts := AttendanceTable.IndexStatements()

	require.Len(t, stmts, 1)
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS idx_attendance_user_check_in ON attendance (user_id, check_in)", stmts[0])
	assert.Empty(t, UsersTable.IndexStatements())
}

func TestColumnList(t *testing.T) {
	assert.Equal(t, "id, name, email, role, biotime_id, created_at", UsersTable.ColumnList())
	assert.Equal(t, "id, user_id, check_in, check_out, status, synced_with_biotime", AttendanceTable.ColumnList())
	assert.Equal(t, "u.id, u.name, u.email, u.role, u.biotime_id, u.created_at", UsersTable.QualifiedColumnList("u"))
}

func TestTablesCoverModelFields(t *testing.T) {
	cases := []struct {
		table Table
		model any
	}{
		{UsersTable, models.User{}},
		{AttendanceTable, models.AttendanceRecord{}},
	}
	for _, tc := range cases {
		t.Run(tc.table.Name, func(t *testing.T) {
			typ := reflect.TypeOf(tc.model)
			var tags []string
			for i := 0; i < typ.NumField(); i++ {
				if tag := typ.Field(i).Tag.Get("db"); tag != "" {
					tags = append(tags, tag)
				}
			}
			assert.ElementsMatch(t, tc.table.ColumnNames(), tags)
		})
	}
}

func TestTablesOrderedByDependency(t *testing.T) {
	require.Len(t, Tables, 2)
	assert.Equal(t, "users", Tables[0].Name)
	assert.Equal(t, "attendance", Tables[1].Name)
}
