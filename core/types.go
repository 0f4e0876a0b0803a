package core

import "time"

type (
	// Row and Header are attributes of ResultStream iterator
	Row    []any
	Header []string

	// Meta holds metadata
	Meta struct {
		// query which produced the result
		Query string
		// time when the query started executing
		Timestamp time.Time
	}

	// ResultStream is a result from executed query and has a form of an iterator.
	// It is forward-only and can't be restarted.
	ResultStream interface {
		Meta() *Meta
		Header() Header
		Next() (Row, error)
		HasNext() bool
		Close()
	}
)

type StatementKind int

const (
	StatementKindDDL StatementKind = iota
	StatementKindDML
	StatementKindQuery
)

func (k StatementKind) String() string {
	switch k {
	case StatementKindDDL:
		return "ddl"
	case StatementKindDML:
		return "dml"
	case StatementKindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Statement is a single unit of an execution script.
type Statement struct {
	Text string
	Kind StatementKind

	// Columns is the number of output columns a query declares.
	// Rows are cut to this width when printed. Zero means all columns.
	Columns int
	// Indent prefixes every printed row with a tab.
	Indent bool
	// Announce is a progress line shown before the statement runs.
	Announce string
}

// ProducesRows reports whether the statement returns a result stream.
func (s Statement) ProducesRows() bool {
	return s.Kind == StatementKindQuery
}
