package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/script"
)

func TestDefault_Order(t *testing.T) {
	stmts := script.Default()
	require.Len(t, stmts, 7)

	want := []struct {
		text string
		kind core.StatementKind
	}{
		{"USE default", core.StatementKindDDL},
		{"DROP TABLE IF EXISTS jdbc_example", core.StatementKindDDL},
		{"CREATE TABLE jdbc_example (key int, name string, country string)", core.StatementKindDDL},
		{"INSERT INTO TABLE default.jdbc_example VALUES (1, 'Paris', 'France'), (2, 'Lyon', 'France'), " +
			"(3, 'London', 'UK'), (4, 'Madrid', 'Spain'), (5, 'Barcelona', 'Spain'), " +
			"(6, 'Amsterdam', 'Netherland'), (7, 'Warsaw', 'Poland'), (8, 'Krakow', 'Poland')", core.StatementKindDML},
		{"DESCRIBE default.jdbc_example", core.StatementKindQuery},
		{"SELECT * FROM default.jdbc_example", core.StatementKindQuery},
		{"SELECT * FROM default.jdbc_example WHERE country='France'", core.StatementKindQuery},
	}

	for i, w := range want {
		assert.Equal(t, w.text, stmts[i].Text, "statement %d", i)
		assert.Equal(t, w.kind, stmts[i].Kind, "statement %d", i)
	}
}

func TestDefault_QueryShape(t *testing.T) {
	stmts := script.Default()

	describe := stmts[4]
	assert.Equal(t, 2, describe.Columns)
	assert.False(t, describe.Indent)
	assert.Equal(t, "\nExecuting: DESCRIBE default.jdbc_example", describe.Announce)

	for _, sel := range stmts[5:] {
		assert.Equal(t, 3, sel.Columns)
		assert.True(t, sel.Indent)
		assert.True(t, sel.ProducesRows())
	}

	for _, s := range stmts[:4] {
		assert.False(t, s.ProducesRows())
	}
}

func TestBuild_CustomTable(t *testing.T) {
	stmts := script.Build("staging", "cities")

	assert.Equal(t, "USE staging", stmts[0].Text)
	assert.Equal(t, "DROP TABLE IF EXISTS cities", stmts[1].Text)
	assert.Equal(t, "DESCRIBE staging.cities", stmts[4].Text)
}
