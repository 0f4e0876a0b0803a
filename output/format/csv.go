package format

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/hivekrb/hivekrb/core"
)

var _ Formatter = (*CSV)(nil)

// CSV writes the header followed by one record per row.
type CSV struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSV() *CSV {
	return &CSV{}
}

func (*CSV) Name() string {
	return "csv"
}

func (cf *CSV) Row(w io.Writer, header core.Header, row []string, _ *Options) error {
	if cf.w == nil {
		cf.w = csv.NewWriter(w)
	}

	if !cf.wroteHeader {
		cf.wroteHeader = true
		if err := cf.w.Write(header[:min(len(header), len(row))]); err != nil {
			return fmt.Errorf("w.Write: %w", err)
		}
	}

	if err := cf.w.Write(row); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}

	// rows are streamed, don't let the writer buffer them
	cf.w.Flush()
	return cf.w.Error()
}

func (cf *CSV) Flush(io.Writer, core.Header, *Options) error {
	if cf.w == nil {
		return nil
	}
	cf.w.Flush()
	return cf.w.Error()
}
