package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/core/mock"
	"github.com/hivekrb/hivekrb/script"
)

func connected(t *testing.T, opts ...mock.AdapterOption) (*core.Session, *mock.Adapter) {
	t.Helper()

	adapter := mock.NewAdapter(opts...)
	session, _, err := openInScope(t, adapter, core.NewEndpoint("", 0, "hive/_HOST@EXAMPLE.COM"))
	require.NoError(t, err)
	return session, adapter
}

func scriptTexts() []string {
	var out []string
	for _, s := range script.Default() {
		out = append(out, s.Text)
	}
	return out
}

func TestRunner_Run_Order(t *testing.T) {
	r := require.New(t)

	session, adapter := connected(t,
		mock.AdapterWithQueryResult("SELECT * FROM default.jdbc_example", core.Header{"key", "name", "country"}, []core.Row{
			{1, "Paris", "France"},
			{2, "Lyon", "France"},
		}))

	var started []string
	var seen []string
	runner := core.NewRunner(core.WithStatementHook(func(s core.Statement) {
		started = append(started, s.Text)
	}))

	err := runner.Run(context.Background(), session, script.Default(), func(s core.Statement, rows core.ResultStream) error {
		seen = append(seen, s.Text)
		// read only one row, the runner has to drain the rest
		if rows.HasNext() {
			_, err := rows.Next()
			return err
		}
		return nil
	})
	r.NoError(err)

	r.Equal(scriptTexts(), adapter.Driver.Executed())
	r.Equal(scriptTexts(), started)
	r.Equal(scriptTexts()[4:], seen)
	r.Equal(core.SessionStateConnected, session.State())
}

func TestRunner_Run_AbortsOnFailure(t *testing.T) {
	errTable := errors.New("table already exists")
	create := script.Default()[2]

	session, adapter := connected(t, mock.AdapterWithQuerySideEffect(create.Text, func(context.Context) error {
		return errTable
	}))

	err := core.NewRunner().Run(context.Background(), session, script.Default(), nil)
	require.Error(t, err)

	var stmtErr *core.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, create.Text, stmtErr.Statement.Text)
	assert.ErrorIs(t, err, errTable)
	assert.Contains(t, err.Error(), create.Text)

	assert.Equal(t, scriptTexts()[:3], adapter.Driver.Executed())
	assert.Equal(t, core.SessionStateFailed, session.State())
}

func TestRunner_Run_ConsumerError(t *testing.T) {
	session, adapter := connected(t)
	errPrint := errors.New("broken pipe")

	err := core.NewRunner().Run(context.Background(), session, script.Default(), func(core.Statement, core.ResultStream) error {
		return errPrint
	})

	require.ErrorIs(t, err, errPrint)
	// describe is the first query, nothing after it ran
	assert.Equal(t, scriptTexts()[:5], adapter.Driver.Executed())
}

func TestRunner_Run_RowError(t *testing.T) {
	session, _ := connected(t,
		mock.AdapterWithQueryResult("SELECT 1", nil, mock.NewRows(0, 5)),
		mock.AdapterWithResultStreamOpts(mock.ResultStreamWithErrorAt(2)))

	stmt := core.Statement{Text: "SELECT 1", Kind: core.StatementKindQuery}
	err := core.NewRunner().Run(context.Background(), session, []core.Statement{stmt}, nil)

	var stmtErr *core.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, "SELECT 1", stmtErr.Statement.Text)
}

func TestRunner_Run_RequiresConnectedSession(t *testing.T) {
	session, adapter := connected(t)
	session.Close()

	err := core.NewRunner().Run(context.Background(), session, script.Default(), nil)
	require.ErrorIs(t, err, core.ErrSessionNotConnected)
	assert.Empty(t, adapter.Driver.Executed())
}

func TestRunner_Run_StatementTimeout(t *testing.T) {
	slow := core.Statement{Text: "DROP TABLE IF EXISTS jdbc_example", Kind: core.StatementKindDDL}
	session, _ := connected(t, mock.AdapterWithQuerySideEffect(slow.Text, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	err := core.NewRunner(core.WithStatementTimeout(10*time.Millisecond)).
		Run(context.Background(), session, []core.Statement{slow}, nil)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunner_Run_Idempotent(t *testing.T) {
	rows := []core.Row{{1, "Paris", "France"}, {2, "Lyon", "France"}}
	opts := []mock.AdapterOption{
		mock.AdapterWithQueryResult("SELECT * FROM default.jdbc_example WHERE country='France'", nil, rows),
	}

	count := func() int {
		session, _ := connected(t, opts...)
		defer session.Close()

		n := 0
		err := core.NewRunner().Run(context.Background(), session, script.Default(), func(s core.Statement, rs core.ResultStream) error {
			for rs.HasNext() {
				if _, err := rs.Next(); err != nil {
					return err
				}
				n++
			}
			return nil
		})
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, count(), count())
}
