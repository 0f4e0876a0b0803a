package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/core/mock"
)

func openInScope(t *testing.T, adapter core.Adapter, ep core.Endpoint) (*core.Session, []core.SessionState, error) {
	t.Helper()

	identity := mock.NewIdentity("app@EXAMPLE.COM")
	var states []core.SessionState
	var session *core.Session

	err := identity.Impersonate(context.Background(), func(ctx context.Context) error {
		var err error
		session, err = core.OpenSession(ctx, adapter, identity, ep,
			core.WithStateListener(func(s core.SessionState) { states = append(states, s) }))
		return err
	})

	return session, states, err
}

func TestOpenSession_StateSequence(t *testing.T) {
	adapter := mock.NewAdapter()

	session, states, err := openInScope(t, adapter, core.NewEndpoint("", 0, "hive/_HOST@EXAMPLE.COM"))
	require.NoError(t, err)

	assert.Equal(t, []core.SessionState{
		core.SessionStateUnauthenticated,
		core.SessionStateAuthenticated,
		core.SessionStateConnected,
	}, states)
	assert.Equal(t, core.SessionStateConnected, session.State())
	assert.Equal(t, []string{"hive2://localhost:10000/default;principal=hive/_HOST@EXAMPLE.COM"}, adapter.Targets)
	assert.NotEmpty(t, session.GetID())

	session.Close()
	assert.Equal(t, core.SessionStateClosed, session.State())
	assert.True(t, adapter.Driver.IsClosed())
}

func TestOpenSession_Failures(t *testing.T) {
	errUnreachable := errors.New("dial tcp 10.0.0.1:10000: connect: no route to host")

	tests := []struct {
		name       string
		adapter    *mock.Adapter
		wantStates []core.SessionState
	}{
		{
			name:    "unreachable host",
			adapter: mock.NewAdapter(mock.AdapterWithConnectError(errUnreachable)),
			wantStates: []core.SessionState{
				core.SessionStateUnauthenticated,
				core.SessionStateAuthenticated,
				core.SessionStateFailed,
			},
		},
		{
			name:    "handshake rejected",
			adapter: mock.NewAdapter(mock.AdapterWithPingError(errUnreachable)),
			wantStates: []core.SessionState{
				core.SessionStateUnauthenticated,
				core.SessionStateAuthenticated,
				core.SessionStateFailed,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, states, err := openInScope(t, tt.adapter, core.NewEndpoint("db.example.com", 10001, "hive/_HOST@EXAMPLE.COM"))
			require.Error(t, err)
			assert.Nil(t, session)

			var connErr *core.ConnectionError
			require.ErrorAs(t, err, &connErr)
			assert.Equal(t, "hive2://db.example.com:10001/default;principal=hive/_HOST@EXAMPLE.COM", connErr.Target)
			assert.ErrorIs(t, err, errUnreachable)
			assert.Equal(t, tt.wantStates, states)
		})
	}
}

func TestOpenSession_OutsideIdentityScope(t *testing.T) {
	adapter := mock.NewAdapter()
	identity := mock.NewIdentity("app@EXAMPLE.COM")

	var states []core.SessionState
	_, err := core.OpenSession(context.Background(), adapter, identity, core.NewEndpoint("", 0, "hive/h@R"),
		core.WithStateListener(func(s core.SessionState) { states = append(states, s) }))

	require.ErrorIs(t, err, core.ErrNoIdentityScope)
	assert.Empty(t, adapter.Targets, "no network call may happen outside the identity context")
	assert.Equal(t, []core.SessionState{core.SessionStateUnauthenticated, core.SessionStateFailed}, states)
}

func TestSession_FailedIsTerminal(t *testing.T) {
	session, _, err := openInScope(t, mock.NewAdapter(), core.NewEndpoint("", 0, "hive/h@R"))
	require.NoError(t, err)

	session.Fail()
	session.Close()
	assert.Equal(t, core.SessionStateFailed, session.State())

	err = session.Exec(context.Background(), "USE default")
	assert.ErrorIs(t, err, core.ErrSessionNotConnected)
	_, err = session.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, core.ErrSessionNotConnected)
}

func TestSessionState_String(t *testing.T) {
	states := []core.SessionState{
		core.SessionStateUnauthenticated,
		core.SessionStateAuthenticated,
		core.SessionStateConnected,
		core.SessionStateClosed,
		core.SessionStateFailed,
	}
	for _, s := range states {
		assert.Equal(t, s, core.SessionStateFromString(s.String()))
	}
	assert.Equal(t, core.SessionStateUnauthenticated, core.SessionStateFromString("bogus"))
}
