// Package script holds the fixed statement sequence executed against the remote service.
package script

import (
	"fmt"
	"strings"

	"github.com/hivekrb/hivekrb/core"
)

const (
	Database = "default"
	Table    = "jdbc_example"
)

// City is one row of the sample dataset.
type City struct {
	Key     int
	Name    string
	Country string
}

// Dataset is inserted by the populate statement.
// "Netherland" is kept as in the reference dataset.
var Dataset = []City{
	{1, "Paris", "France"},
	{2, "Lyon", "France"},
	{3, "London", "UK"},
	{4, "Madrid", "Spain"},
	{5, "Barcelona", "Spain"},
	{6, "Amsterdam", "Netherland"},
	{7, "Warsaw", "Poland"},
	{8, "Krakow", "Poland"},
}

func values(cities []City) string {
	parts := make([]string, 0, len(cities))
	for _, c := range cities {
		parts = append(parts, fmt.Sprintf("(%d, '%s', '%s')", c.Key, c.Name, c.Country))
	}
	return strings.Join(parts, ", ")
}

func query(sql string, columns int, indent bool) core.Statement {
	return core.Statement{
		Text:     sql,
		Kind:     core.StatementKindQuery,
		Columns:  columns,
		Indent:   indent,
		Announce: "\nExecuting: " + sql,
	}
}

// Default returns the drop/create/populate/inspect script for database.table.
func Default() []core.Statement {
	return Build(Database, Table)
}

// Build returns the script for the given database and table.
func Build(database, table string) []core.Statement {
	qualified := database + "." + table

	return []core.Statement{
		{
			Text:     fmt.Sprintf("USE %s", database),
			Kind:     core.StatementKindDDL,
			Announce: "Cleaning DB",
		},
		{
			Text: fmt.Sprintf("DROP TABLE IF EXISTS %s", table),
			Kind: core.StatementKindDDL,
		},
		{
			Text: fmt.Sprintf("CREATE TABLE %s (key int, name string, country string)", table),
			Kind: core.StatementKindDDL,
		},
		{
			Text:     fmt.Sprintf("INSERT INTO TABLE %s VALUES %s", qualified, values(Dataset)),
			Kind:     core.StatementKindDML,
			Announce: "Populating table",
		},
		query(fmt.Sprintf("DESCRIBE %s", qualified), 2, false),
		query(fmt.Sprintf("SELECT * FROM %s", qualified), 3, true),
		query(fmt.Sprintf("SELECT * FROM %s WHERE country='France'", qualified), 3, true),
	}
}
