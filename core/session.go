package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hivekrb/hivekrb/logging"
	"github.com/hivekrb/hivekrb/models"
)

type (
	// Driver is a single authenticated connection to the remote service.
	Driver interface {
		Exec(ctx context.Context, query string) error
		Query(ctx context.Context, query string) (ResultStream, error)
		Ping(ctx context.Context) error
		Close()
	}

	// Adapter is an object which allows to connect to the remote service via a target string.
	Adapter interface {
		Connect(ctx context.Context, target string, identity Identity) (Driver, error)
	}

	// Identity is an acquired credential which can run work under itself.
	Identity interface {
		Principal() string
		// Impersonate runs fn inside the identity context. The context is left
		// on every return path of fn.
		Impersonate(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// ScopeChecker is an optional interface for identities which can tell
	// whether their context is currently entered.
	ScopeChecker interface {
		InScope(ctx context.Context) bool
	}
)

const DefaultConnectTimeout = 30 * time.Second

type SessionID string

// Session is the single stateful connection of a run.
type Session struct {
	id       SessionID
	endpoint Endpoint
	driver   Driver
	state    SessionState

	log      models.Logger
	onChange func(SessionState)
}

type sessionConfig struct {
	log            models.Logger
	connectTimeout time.Duration
	onChange       func(SessionState)
}

type SessionOption func(*sessionConfig)

func WithSessionLogger(log models.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.log = log
	}
}

// WithConnectTimeout bounds adapter.Connect and the initial ping. Zero disables the bound.
func WithConnectTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.connectTimeout = d
	}
}

// WithStateListener registers a function called on every state transition.
func WithStateListener(fn func(SessionState)) SessionOption {
	return func(c *sessionConfig) {
		c.onChange = fn
	}
}

// OpenSession establishes the session. It has to be called from within
// identity.Impersonate so that every network call runs under the identity.
func OpenSession(ctx context.Context, adapter Adapter, identity Identity, endpoint Endpoint, opts ...SessionOption) (*Session, error) {
	config := &sessionConfig{
		log:            logging.Nop(),
		connectTimeout: DefaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(config)
	}

	id := SessionID(uuid.New().String())
	s := &Session{
		id:       id,
		endpoint: endpoint.withDefaults(),
		state:    SessionStateUnauthenticated,
		log:      config.log.With("session_id", string(id)),
		onChange: config.onChange,
	}
	s.notify()

	target := s.endpoint.Target()

	if identity == nil {
		return nil, s.fail(&ConnectionError{Target: target, Err: ErrNoIdentityScope})
	}
	if checker, ok := identity.(ScopeChecker); ok && !checker.InScope(ctx) {
		return nil, s.fail(&ConnectionError{Target: target, Err: ErrNoIdentityScope})
	}
	s.transition(SessionStateAuthenticated)

	if config.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.connectTimeout)
		defer cancel()
	}

	s.log.Debugf("connecting to %s as %s", target, identity.Principal())
	driver, err := adapter.Connect(ctx, target, identity)
	if err != nil {
		return nil, s.fail(&ConnectionError{Target: target, Err: fmt.Errorf("adapter.Connect: %w", err)})
	}
	s.driver = driver

	if err := driver.Ping(ctx); err != nil {
		return nil, s.fail(&ConnectionError{Target: target, Err: fmt.Errorf("driver.Ping: %w", err)})
	}
	s.transition(SessionStateConnected)
	s.log.Infof("connected to %s", target)

	return s, nil
}

func (s *Session) GetID() SessionID {
	return s.id
}

func (s *Session) State() SessionState {
	return s.state
}

// Exec runs a statement which returns no rows.
func (s *Session) Exec(ctx context.Context, query string) error {
	if s.state != SessionStateConnected {
		return fmt.Errorf("%w (state: %s)", ErrSessionNotConnected, s.state)
	}
	return s.driver.Exec(ctx, query)
}

// Query runs a statement and returns its result stream.
func (s *Session) Query(ctx context.Context, query string) (ResultStream, error) {
	if s.state != SessionStateConnected {
		return nil, fmt.Errorf("%w (state: %s)", ErrSessionNotConnected, s.state)
	}
	return s.driver.Query(ctx, query)
}

// Fail moves the session to the terminal failed state and releases the driver.
func (s *Session) Fail() {
	_ = s.fail(nil)
}

// Close closes a connected session. Closing a failed or closed session is a no-op.
func (s *Session) Close() {
	if s.state.IsTerminal() {
		return
	}
	if s.driver != nil {
		s.driver.Close()
	}
	s.transition(SessionStateClosed)
	s.log.Debug("session closed")
}

func (s *Session) fail(err error) error {
	if s.state.IsTerminal() {
		return err
	}
	if s.driver != nil {
		s.driver.Close()
	}
	s.transition(SessionStateFailed)
	if err != nil {
		s.log.Error(err.Error())
	}
	return err
}

func (s *Session) transition(state SessionState) {
	s.log.Debugf("session state %s -> %s", s.state, state)
	s.state = state
	s.notify()
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.state)
	}
}
