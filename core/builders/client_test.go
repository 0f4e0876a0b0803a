package builders_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/core/builders"
)

func setupConn(t *testing.T, opts ...builders.ClientOption) (*builders.Conn, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := builders.NewClient(db, opts...).Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, mock
}

func drain(t *testing.T, rs core.ResultStream) []core.Row {
	t.Helper()

	var out []core.Row
	for rs.HasNext() {
		row, err := rs.Next()
		require.NoError(t, err)
		out = append(out, row)
	}
	return out
}

func TestConn_Query(t *testing.T) {
	r := require.New(t)
	conn, mock := setupConn(t)

	mock.ExpectQuery("SELECT * FROM default.jdbc_example").
		WillReturnRows(sqlmock.NewRows([]string{"jdbc_example.key", "jdbc_example.name", "jdbc_example.country"}).
			AddRow(int64(1), []byte("Paris"), "France").
			AddRow(int64(2), "Lyon", "France"))

	rs, err := conn.Query(context.Background(), "SELECT * FROM default.jdbc_example")
	r.NoError(err)
	defer rs.Close()

	r.Equal(core.Header{"jdbc_example.key", "jdbc_example.name", "jdbc_example.country"}, rs.Header())
	r.Equal("SELECT * FROM default.jdbc_example", rs.Meta().Query)
	r.False(rs.Meta().Timestamp.IsZero())

	// repeated HasNext calls must not skip rows
	r.True(rs.HasNext())
	r.True(rs.HasNext())

	rows := drain(t, rs)
	r.Equal([]core.Row{
		{int64(1), "Paris", "France"},
		{int64(2), "Lyon", "France"},
	}, rows)
	r.False(rs.HasNext())
	r.NoError(mock.ExpectationsWereMet())
}

func TestConn_Query_RowError(t *testing.T) {
	conn, mock := setupConn(t)
	errBroken := errors.New("connection reset by peer")

	mock.ExpectQuery("SELECT * FROM t").
		WillReturnRows(sqlmock.NewRows([]string{"a"}).
			AddRow("x").
			AddRow("y").
			RowError(1, errBroken))

	rs, err := conn.Query(context.Background(), "SELECT * FROM t")
	require.NoError(t, err)

	require.True(t, rs.HasNext())
	row, err := rs.Next()
	require.NoError(t, err)
	assert.Equal(t, core.Row{"x"}, row)

	require.True(t, rs.HasNext(), "a pending iteration error is surfaced through Next")
	_, err = rs.Next()
	assert.ErrorIs(t, err, errBroken)
	assert.False(t, rs.HasNext())
}

func TestConn_Query_Error(t *testing.T) {
	conn, mock := setupConn(t)

	mock.ExpectQuery("SELECT * FROM missing").WillReturnError(sql.ErrConnDone)

	rs, err := conn.Query(context.Background(), "SELECT * FROM missing")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Nil(t, rs)
}

func TestConn_Exec(t *testing.T) {
	tests := []struct {
		name    string
		give    string
		result  driver.Result
		err     error
		want    int64
		wantErr bool
	}{
		{
			name:   "ddl",
			give:   "DROP TABLE IF EXISTS jdbc_example",
			result: sqlmock.NewResult(0, 0),
			want:   0,
		},
		{
			name:   "insert",
			give:   "INSERT INTO TABLE default.jdbc_example VALUES (1, 'Paris', 'France')",
			result: sqlmock.NewResult(0, 1),
			want:   1,
		},
		{
			name:   "unknown affected rows",
			give:   "USE default",
			result: sqlmock.NewErrorResult(errors.New("not supported")),
			want:   -1,
		},
		{
			name:    "failure",
			give:    "CREATE TABLE jdbc_example (key int)",
			err:     errors.New("AlreadyExistsException"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := setupConn(t)

			exp := mock.ExpectExec(tt.give)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			got, err := conn.Exec(context.Background(), tt.give)
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConn_TypeProcessor(t *testing.T) {
	conn, mock := setupConn(t, builders.WithCustomTypeProcessor("STRING", func(v any) any {
		return "<" + v.(string) + ">"
	}))

	mock.ExpectQuery("DESCRIBE default.jdbc_example").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("col_name").OfType("STRING", ""),
			sqlmock.NewColumn("data_type").OfType("STRING", ""),
		).AddRow("key", "int"))

	rs, err := conn.Query(context.Background(), "DESCRIBE default.jdbc_example")
	require.NoError(t, err)

	assert.Equal(t, []core.Row{{"<key>", "<int>"}}, drain(t, rs))
}

func TestResult_CloseOnce(t *testing.T) {
	closed := 0
	callbacks := 0

	rs := builders.NewResultBuilder().
		WithCloseFunc(func() { closed++ }).
		Build()
	rs.SetCallback(func() { callbacks++ })

	rs.Close()
	rs.Close()

	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, callbacks)
	assert.False(t, rs.HasNext())
	_, err := rs.Next()
	assert.Error(t, err)
}
