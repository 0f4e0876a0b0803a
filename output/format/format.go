package format

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hivekrb/hivekrb/core"
)

// Default is the format used when none is requested.
const Default = "tsv"

var ErrUnknownFormat = errors.New("unknown output format")

// Options for a single result.
type Options struct {
	// Indent prefixes each row with a tab.
	Indent bool
}

// Formatter writes a result row by row.
// A formatter is created per result and may keep state until Flush.
type Formatter interface {
	Name() string
	Row(w io.Writer, header core.Header, row []string, opts *Options) error
	// Flush is called once after the last row.
	Flush(w io.Writer, header core.Header, opts *Options) error
}

var registered = map[string]func() Formatter{
	"tsv":   func() Formatter { return NewTSV() },
	"csv":   func() Formatter { return NewCSV() },
	"json":  func() Formatter { return NewJSON() },
	"table": func() Formatter { return NewTable() },
}

// New returns a fresh formatter for the named format.
func New(name string) (Formatter, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registered[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return fn(), nil
}

// Names lists supported formats.
func Names() []string {
	out := make([]string, 0, len(registered))
	for name := range registered {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Cell renders a single value.
func Cell(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
