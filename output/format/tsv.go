package format

import (
	"io"
	"strings"

	"github.com/hivekrb/hivekrb/core"
)

var _ Formatter = (*TSV)(nil)

// TSV writes tab separated lines with no header.
type TSV struct{}

func NewTSV() *TSV {
	return &TSV{}
}

func (*TSV) Name() string {
	return "tsv"
}

func (*TSV) Row(w io.Writer, _ core.Header, row []string, opts *Options) error {
	var sb strings.Builder
	if opts != nil && opts.Indent {
		sb.WriteByte('\t')
	}
	sb.WriteString(strings.Join(row, "\t"))
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

func (*TSV) Flush(io.Writer, core.Header, *Options) error {
	return nil
}
