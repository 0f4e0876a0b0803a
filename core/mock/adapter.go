package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/hivekrb/hivekrb/core"
)

var _ core.Driver = (*Driver)(nil)

// Driver records every statement it receives.
type Driver struct {
	config *adapterConfig

	mu       sync.Mutex
	executed []string
	closed   bool
	// open stream of the last query, used to check that streams never overlap
	open *ResultStream
}

func (d *Driver) record(query string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("driver closed")
	}
	if d.open != nil && !d.open.closed {
		return fmt.Errorf("previous result stream still open when executing %q", query)
	}
	d.executed = append(d.executed, query)
	return nil
}

func (d *Driver) Exec(ctx context.Context, query string) error {
	if err := d.record(query); err != nil {
		return err
	}

	eff, ok := d.config.sideEffects[query]
	if ok {
		if err := eff(ctx); err != nil {
			return fmt.Errorf("side effect error: %w", err)
		}
	}
	return nil
}

func (d *Driver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	if err := d.record(query); err != nil {
		return nil, err
	}

	eff, ok := d.config.sideEffects[query]
	if ok {
		if err := eff(ctx); err != nil {
			return nil, fmt.Errorf("side effect error: %w", err)
		}
	}

	res, ok := d.config.results[query]
	if !ok {
		res = &queryResult{}
	}

	opts := append([]ResultStreamOption{}, d.config.resultStreamOptions...)
	if res.header != nil {
		opts = append(opts, ResultStreamWithHeader(res.header))
	}
	rs := NewResultStream(res.rows, opts...)

	d.mu.Lock()
	d.open = rs
	d.mu.Unlock()

	return rs, nil
}

func (d *Driver) Ping(ctx context.Context) error {
	return d.config.pingErr
}

func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// Executed returns the statements in the order they reached the driver.
func (d *Driver) Executed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.executed...)
}

func (d *Driver) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

var _ core.Adapter = (*Adapter)(nil)

type Adapter struct {
	config *adapterConfig

	// Targets holds every target Connect was called with.
	Targets []string
	// Driver is the last driver handed out.
	Driver *Driver
}

func NewAdapter(opts ...AdapterOption) *Adapter {
	config := &adapterConfig{
		sideEffects:         make(map[string]func(context.Context) error),
		results:             make(map[string]*queryResult),
		resultStreamOptions: []ResultStreamOption{},
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Adapter{
		config: config,
	}
}

func (a *Adapter) Connect(ctx context.Context, target string, _ core.Identity) (core.Driver, error) {
	a.Targets = append(a.Targets, target)
	if a.config.connectErr != nil {
		return nil, a.config.connectErr
	}

	a.Driver = &Driver{config: a.config}
	return a.Driver, nil
}
