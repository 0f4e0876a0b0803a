package output

import (
	"fmt"
	"io"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/models"
	"github.com/hivekrb/hivekrb/output/format"
)

// Printer writes statement progress and query results.
type Printer struct {
	w      io.Writer
	format string
	log    models.Logger
}

// NewPrinter validates the format name and returns a printer writing to w.
func NewPrinter(w io.Writer, formatName string, logger models.Logger) (*Printer, error) {
	if _, err := format.New(formatName); err != nil {
		return nil, err
	}
	if formatName == "" {
		formatName = format.Default
	}

	return &Printer{
		w:      w,
		format: formatName,
		log:    logger,
	}, nil
}

// Announce prints the progress line of the statement, if it has one.
func (p *Printer) Announce(stmt core.Statement) {
	if stmt.Announce == "" {
		return
	}
	_, _ = fmt.Fprintln(p.w, stmt.Announce)
}

// Print streams rows to the output and returns how many were written.
// Rows are cut to stmt.Columns values.
func (p *Printer) Print(stmt core.Statement, rows core.ResultStream) (int, error) {
	f, err := format.New(p.format)
	if err != nil {
		return 0, err
	}

	header := rows.Header()
	opts := &format.Options{Indent: stmt.Indent}

	count := 0
	for rows.HasNext() {
		row, err := rows.Next()
		if err != nil {
			return count, fmt.Errorf("result.Next: %w", err)
		}
		if row == nil {
			break
		}

		if err := f.Row(p.w, header, cells(row, stmt.Columns), opts); err != nil {
			return count, fmt.Errorf("%s formatter: %w", f.Name(), err)
		}
		count++
	}

	if err := f.Flush(p.w, header, opts); err != nil {
		return count, fmt.Errorf("%s formatter: %w", f.Name(), err)
	}

	p.log.Debugf("printed %d rows of %q", count, stmt.Text)
	return count, nil
}

// Handle adapts Print to the runner's result callback.
func (p *Printer) Handle(stmt core.Statement, rows core.ResultStream) error {
	_, err := p.Print(stmt, rows)
	return err
}

func cells(row core.Row, columns int) []string {
	if columns > 0 && len(row) > columns {
		row = row[:columns]
	}

	out := make([]string, len(row))
	for i, v := range row {
		out[i] = format.Cell(v)
	}
	return out
}
