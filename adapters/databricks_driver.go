package adapters

import (
	"context"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/core/builders"
)

var _ core.Driver = (*databricksDriver)(nil)

// databricksDriver runs statements over a database/sql connection.
type databricksDriver struct {
	// c owns the pool, conn is the single pinned session
	c    *builders.Client
	conn *builders.Conn
}

// Exec executes a statement without a result set.
func (d *databricksDriver) Exec(ctx context.Context, query string) error {
	_, err := d.conn.Exec(ctx, query)
	return err
}

// Query executes the given query and returns the result stream.
func (d *databricksDriver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	rows, err := d.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping checks that the session is alive.
func (d *databricksDriver) Ping(ctx context.Context) error {
	return d.conn.Ping(ctx)
}

// Close closes the connection to the server.
func (d *databricksDriver) Close() {
	_ = d.conn.Close()
	d.c.Close()
}
