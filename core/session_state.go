package core

type SessionState int

const (
	SessionStateUnauthenticated SessionState = iota
	SessionStateAuthenticated
	SessionStateConnected
	SessionStateClosed
	SessionStateFailed
)

func SessionStateFromString(s string) SessionState {
	switch s {
	case SessionStateUnauthenticated.String():
		return SessionStateUnauthenticated
	case SessionStateAuthenticated.String():
		return SessionStateAuthenticated
	case SessionStateConnected.String():
		return SessionStateConnected
	case SessionStateClosed.String():
		return SessionStateClosed
	case SessionStateFailed.String():
		return SessionStateFailed

	default:
		return SessionStateUnauthenticated
	}
}

func (s SessionState) String() string {
	switch s {
	case SessionStateUnauthenticated:
		return "unauthenticated"
	case SessionStateAuthenticated:
		return "authenticated"
	case SessionStateConnected:
		return "connected"
	case SessionStateClosed:
		return "closed"
	case SessionStateFailed:
		return "failed"

	default:
		return "unauthenticated"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s SessionState) IsTerminal() bool {
	return s == SessionStateClosed || s == SessionStateFailed
}
