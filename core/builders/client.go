package builders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hivekrb/hivekrb/core"
)

type clientConfig struct {
	typeProcessors map[string]func(any) any
}

type ClientOption func(*clientConfig)

// WithCustomTypeProcessor converts every value of the database type typ
// (as reported by ColumnTypes) with fn. The first processor registered for a type wins.
func WithCustomTypeProcessor(typ string, fn func(any) any) ClientOption {
	return func(cc *clientConfig) {
		t := strings.ToLower(typ)
		if _, ok := cc.typeProcessors[t]; ok {
			return
		}
		cc.typeProcessors[t] = fn
	}
}

// default sql client used by specific adapter implementations
type Client struct {
	db             *sql.DB
	typeProcessors map[string]func(any) any
}

func NewClient(db *sql.DB, opts ...ClientOption) *Client {
	config := clientConfig{
		typeProcessors: make(map[string]func(any) any),
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{
		db:             db,
		typeProcessors: config.typeProcessors,
	}
}

// Conn pins a single connection of the pool. Session scoped commands
// (USE <db>, SET ...) only stick when every statement goes through it.
func (c *Client) Conn(ctx context.Context) (*Conn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return &Conn{
		conn:           conn,
		typeProcessors: c.typeProcessors,
	}, nil
}

func (c *Client) Close() {
	c.db.Close()
}

// connection to use for execution
type Conn struct {
	conn           *sql.Conn
	typeProcessors map[string]func(any) any
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

// Exec executes a statement which returns no rows and reports the number of affected rows.
// -1 is returned when the driver can't tell.
func (c *Conn) Exec(ctx context.Context, query string) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return -1, nil
	}

	return affected, nil
}

func (c *Conn) getTypeProcessor(typ string) func(any) any {
	proc, ok := c.typeProcessors[strings.ToLower(typ)]
	if ok {
		return proc
	}

	return func(val any) any {
		valb, ok := val.([]byte)
		if ok {
			return string(valb)
		}
		return val
	}
}

// Query executes a query on a connection and returns a result stream.
func (c *Conn) Query(ctx context.Context, query string) (*Result, error) {
	started := time.Now()

	dbRows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	header, err := dbRows.Columns()
	if err != nil {
		_ = dbRows.Close()
		return nil, err
	}

	dbCols, err := dbRows.ColumnTypes()
	if err != nil {
		_ = dbRows.Close()
		return nil, err
	}

	// hasNext may be called any number of times per row, so the cursor
	// is only advanced once per consumed row
	var (
		peeked  bool
		has     bool
		iterErr error
	)

	hasNextFunc := func() bool {
		if peeked {
			return has
		}
		peeked = true

		has = dbRows.Next()
		if !has {
			if err := dbRows.Err(); err != nil {
				iterErr = err
				has = true
			}
		}
		return has
	}

	nextFunc := func() (core.Row, error) {
		if !hasNextFunc() {
			return nil, errors.New("no next row")
		}
		peeked = false

		if iterErr != nil {
			return nil, fmt.Errorf("rows.Next: %w", iterErr)
		}

		columns := make([]any, len(dbCols))
		columnPointers := make([]any, len(dbCols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := dbRows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		row := make(core.Row, len(dbCols))
		for i := range dbCols {
			proc := c.getTypeProcessor(dbCols[i].DatabaseTypeName())
			row[i] = proc(columns[i])
		}

		return row, nil
	}

	rows := NewResultBuilder().
		WithNextFunc(nextFunc, hasNextFunc).
		WithHeader(header).
		WithMeta(&core.Meta{
			Query:     query,
			Timestamp: started,
		}).
		WithCloseFunc(func() {
			_ = dbRows.Close()
		}).
		Build()

	return rows, nil
}
