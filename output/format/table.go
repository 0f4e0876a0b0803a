package format

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hivekrb/hivekrb/core"
)

var _ Formatter = (*Table)(nil)

// Table collects the rows and renders them as a single table on Flush.
type Table struct {
	rows []table.Row
}

func NewTable() *Table {
	return &Table{}
}

func (*Table) Name() string {
	return "table"
}

func (tf *Table) Row(_ io.Writer, _ core.Header, row []string, _ *Options) error {
	indexed := make(table.Row, 0, len(row)+1)
	indexed = append(indexed, len(tf.rows)+1)
	for _, v := range row {
		indexed = append(indexed, v)
	}
	tf.rows = append(tf.rows, indexed)
	return nil
}

func (tf *Table) Flush(w io.Writer, header core.Header, _ *Options) error {
	width := len(header)
	if len(tf.rows) > 0 {
		width = min(width, len(tf.rows[0])-1)
	}

	tableHeaders := table.Row{""}
	for _, k := range header[:width] {
		tableHeaders = append(tableHeaders, k)
	}

	t := table.NewWriter()
	t.AppendHeader(tableHeaders)
	t.AppendRows(tf.rows)
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false
	t.SuppressTrailingSpaces()

	tf.rows = nil

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
