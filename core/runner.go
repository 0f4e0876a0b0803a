package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hivekrb/hivekrb/logging"
	"github.com/hivekrb/hivekrb/models"
)

const DefaultStatementTimeout = 10 * time.Minute

type runnerConfig struct {
	log     models.Logger
	timeout time.Duration
	onStart func(Statement)
}

type RunnerOption func(*runnerConfig)

func WithRunnerLogger(log models.Logger) RunnerOption {
	return func(c *runnerConfig) {
		c.log = log
	}
}

// WithStatementTimeout bounds each statement, including the consumption of its rows.
// Zero disables the bound.
func WithStatementTimeout(d time.Duration) RunnerOption {
	return func(c *runnerConfig) {
		c.timeout = d
	}
}

// WithStatementHook registers a function called right before each statement executes.
func WithStatementHook(fn func(Statement)) RunnerOption {
	return func(c *runnerConfig) {
		c.onStart = fn
	}
}

// Runner executes a script against a session, one statement at a time.
type Runner struct {
	config *runnerConfig
}

func NewRunner(opts ...RunnerOption) *Runner {
	config := &runnerConfig{
		log:     logging.Nop(),
		timeout: DefaultStatementTimeout,
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Runner{config: config}
}

// Run executes the script in order. Result streams of queries are passed to
// onResult and are drained and closed before the next statement starts.
// The first failure fails the session and stops the script.
func (r *Runner) Run(ctx context.Context, session *Session, script []Statement, onResult func(Statement, ResultStream) error) error {
	for _, stmt := range script {
		if err := r.runOne(ctx, session, stmt, onResult); err != nil {
			session.Fail()
			return &StatementError{Statement: stmt, Err: err}
		}
	}

	return nil
}

func (r *Runner) runOne(ctx context.Context, session *Session, stmt Statement, onResult func(Statement, ResultStream) error) error {
	if session.State() != SessionStateConnected {
		return fmt.Errorf("%w (state: %s)", ErrSessionNotConnected, session.State())
	}

	log := r.config.log.With("statement_id", uuid.New().String())

	if r.config.onStart != nil {
		r.config.onStart(stmt)
	}

	if r.config.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.timeout)
		defer cancel()
	}

	start := time.Now()
	log.Debugf("executing %s: %s", stmt.Kind, stmt.Text)

	if !stmt.ProducesRows() {
		if err := session.Exec(ctx, stmt.Text); err != nil {
			return fmt.Errorf("session.Exec: %w", err)
		}
		log.Debugf("%s done in %s", stmt.Kind, time.Since(start))
		return nil
	}

	rows, err := session.Query(ctx, stmt.Text)
	if err != nil {
		return fmt.Errorf("session.Query: %w", err)
	}
	defer rows.Close()

	if onResult != nil {
		if err := onResult(stmt, rows); err != nil {
			return err
		}
	}

	// leftovers are discarded so the stream is fully consumed before moving on
	discarded := 0
	for rows.HasNext() {
		if _, err := rows.Next(); err != nil {
			return fmt.Errorf("rows.Next: %w", err)
		}
		discarded++
	}
	if discarded > 0 {
		log.Debugf("discarded %d unread rows", discarded)
	}

	log.Debugf("query done in %s", time.Since(start))
	return nil
}
