package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hivekrb/hivekrb/core"
)

var _ Formatter = (*JSON)(nil)

// JSON writes one object per line, keyed by column name.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (*JSON) Name() string {
	return "json"
}

func (jf *JSON) record(header core.Header, row []string) map[string]string {
	record := make(map[string]string, len(row))
	for i, val := range row {
		var h string
		if i < len(header) {
			h = header[i]
		} else {
			h = fmt.Sprintf("<unknown-field-%d>", i)
		}
		record[h] = val
	}
	return record
}

func (jf *JSON) Row(w io.Writer, header core.Header, row []string, _ *Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	err := enc.Encode(jf.record(header, row))
	if err != nil {
		return fmt.Errorf("encoder.Encode: %w", err)
	}
	return nil
}

func (*JSON) Flush(io.Writer, core.Header, *Options) error {
	return nil
}
