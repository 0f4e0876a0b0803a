package mock

import (
	"errors"
	"fmt"
	"time"

	"github.com/hivekrb/hivekrb/core"
)

func newNext(rows []core.Row) (func() (core.Row, error), func() bool) {
	index := 0

	hasNext := func() bool {
		return index < len(rows)
	}

	// iterator functions
	next := func() (core.Row, error) {
		if !hasNext() {
			return nil, errors.New("no next row")
		}

		row := rows[index]
		index++
		return row, nil
	}

	return next, hasNext
}

var _ core.ResultStream = (*ResultStream)(nil)

type ResultStream struct {
	next    func() (core.Row, error)
	hasNext func() bool
	config  *resultStreamConfig

	consumed int
	closed   bool
}

func makeDefaultHeader(rows []core.Row) core.Header {
	var header core.Header
	if len(rows) > 0 {
		for i := range rows[0] {
			header = append(header, fmt.Sprintf("header_%d", i))
		}
	}
	return header
}

// NewResultStream returns a mocked result stream with provided rows.
// It creates a header that matches the number of columns in the first row
// in form of: <header_0>, <header_1>, etc.
func NewResultStream(rows []core.Row, opts ...ResultStreamOption) *ResultStream {
	config := &resultStreamConfig{
		nextSleep: 0,
		meta:      &core.Meta{},
		header:    makeDefaultHeader(rows),
		failAt:    -1,
	}
	for _, opt := range opts {
		opt(config)
	}

	next, hasNext := newNext(rows)

	return &ResultStream{
		next:    next,
		hasNext: hasNext,
		config:  config,
	}
}

func (rs *ResultStream) Meta() *core.Meta {
	return rs.config.meta
}

func (rs *ResultStream) Header() core.Header {
	return rs.config.header
}

func (rs *ResultStream) Next() (core.Row, error) {
	if rs.closed {
		return nil, errors.New("result stream closed")
	}
	if rs.config.failAt >= 0 && rs.consumed == rs.config.failAt {
		return nil, errors.New("mocked row error")
	}
	time.Sleep(rs.config.nextSleep)

	row, err := rs.next()
	if err == nil {
		rs.consumed++
	}
	return row, err
}

func (rs *ResultStream) HasNext() bool {
	return !rs.closed && rs.hasNext()
}

func (rs *ResultStream) Close() {
	rs.closed = true
}

// Consumed returns the number of rows handed out so far.
func (rs *ResultStream) Consumed() int {
	return rs.consumed
}

func (rs *ResultStream) IsClosed() bool {
	return rs.closed
}

// NewRows returns a slice of rows in form of:
//
//	{ <index>(int), "row_<index>"(string) }
//
// where the first index is "from" and the last one is one less than "to".
func NewRows(from, to int) []core.Row {
	var rows []core.Row

	for i := from; i < to; i++ {
		rows = append(rows, core.Row{i, fmt.Sprintf("row_%d", i)})
	}
	return rows
}
