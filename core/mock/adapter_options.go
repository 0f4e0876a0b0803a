package mock

import (
	"context"

	"github.com/hivekrb/hivekrb/core"
)

type queryResult struct {
	header core.Header
	rows   []core.Row
}

type adapterConfig struct {
	sideEffects map[string]func(context.Context) error
	results     map[string]*queryResult
	connectErr  error
	pingErr     error

	resultStreamOptions []ResultStreamOption
}

type AdapterOption func(*adapterConfig)

// AdapterWithQuerySideEffect runs sideEffect whenever query is executed.
// A returned error fails the statement.
func AdapterWithQuerySideEffect(query string, sideEffect func(context.Context) error) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.sideEffects[query]
		if ok {
			panic("side effect already registered for query: " + query)
		}

		c.sideEffects[query] = sideEffect
	}
}

// AdapterWithQueryResult sets the rows returned for query.
func AdapterWithQueryResult(query string, header core.Header, rows []core.Row) AdapterOption {
	return func(c *adapterConfig) {
		_, ok := c.results[query]
		if ok {
			panic("result already registered for query: " + query)
		}

		c.results[query] = &queryResult{header: header, rows: rows}
	}
}

func AdapterWithConnectError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.connectErr = err
	}
}

func AdapterWithPingError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.pingErr = err
	}
}

func AdapterWithResultStreamOpts(opts ...ResultStreamOption) AdapterOption {
	return func(c *adapterConfig) {
		c.resultStreamOptions = append(c.resultStreamOptions, opts...)
	}
}
