package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/beltran/gohive/hiveserver"

	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/core/builders"
)

var _ core.Driver = (*hiveDriver)(nil)

const (
	// fetchSize is the number of rows asked for per FetchResults call.
	fetchSize = 1000

	closeTimeout = 10 * time.Second
)

// hiveDriver runs statements in a single HiveServer2 session.
type hiveDriver struct {
	client  *hiveserver.TCLIServiceClient
	trans   thrift.TTransport
	session *hiveserver.TSessionHandle
}

func (d *hiveDriver) execute(ctx context.Context, query string) (*hiveserver.TOperationHandle, error) {
	req := hiveserver.NewTExecuteStatementReq()
	req.SessionHandle = d.session
	req.Statement = query

	resp, err := d.client.ExecuteStatement(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp.GetStatus()); err != nil {
		return nil, err
	}
	if !resp.IsSetOperationHandle() {
		return nil, errors.New("hiveserver2: no operation handle returned")
	}
	return resp.GetOperationHandle(), nil
}

func (d *hiveDriver) closeOperation(ctx context.Context, op *hiveserver.TOperationHandle) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	req := hiveserver.NewTCloseOperationReq()
	req.OperationHandle = op

	resp, err := d.client.CloseOperation(ctx, req)
	if err != nil {
		return err
	}
	return checkStatus(resp.GetStatus())
}

// Exec executes a statement without a result set.
func (d *hiveDriver) Exec(ctx context.Context, query string) error {
	op, err := d.execute(ctx, query)
	if err != nil {
		return err
	}
	return d.closeOperation(ctx, op)
}

// Query executes the given query and returns the result stream.
// Rows are fetched in batches while the stream is read.
func (d *hiveDriver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	op, err := d.execute(ctx, query)
	if err != nil {
		return nil, err
	}

	header := core.Header{}
	if op.GetHasResultSet() {
		header, err = d.header(ctx, op)
		if err != nil {
			_ = d.closeOperation(ctx, op)
			return nil, err
		}
	}

	f := &rowFetcher{
		ctx:  ctx,
		d:    d,
		op:   op,
		more: op.GetHasResultSet(),
	}

	return builders.NewResultBuilder().
		WithNextFunc(f.next, f.hasNext).
		WithHeader(header).
		WithCloseFunc(func() { _ = d.closeOperation(ctx, op) }).
		WithMeta(&core.Meta{
			Query:     query,
			Timestamp: time.Now(),
		}).
		Build(), nil
}

func (d *hiveDriver) header(ctx context.Context, op *hiveserver.TOperationHandle) (core.Header, error) {
	req := hiveserver.NewTGetResultSetMetadataReq()
	req.OperationHandle = op

	resp, err := d.client.GetResultSetMetadata(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp.GetStatus()); err != nil {
		return nil, err
	}

	if !resp.IsSetSchema() {
		return nil, errors.New("hiveserver2: result set without schema")
	}

	columns := resp.GetSchema().GetColumns()
	header := make(core.Header, 0, len(columns))
	for _, c := range columns {
		header = append(header, c.GetColumnName())
	}
	return header, nil
}

// Ping checks that the session is alive.
func (d *hiveDriver) Ping(ctx context.Context) error {
	req := hiveserver.NewTGetInfoReq()
	req.SessionHandle = d.session
	req.InfoType = hiveserver.TGetInfoType_CLI_SERVER_NAME

	resp, err := d.client.GetInfo(ctx, req)
	if err != nil {
		return err
	}
	return checkStatus(resp.GetStatus())
}

// Close closes the session and the transport.
func (d *hiveDriver) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	req := hiveserver.NewTCloseSessionReq()
	req.SessionHandle = d.session
	_, _ = d.client.CloseSession(ctx, req)
	_ = d.trans.Close()
}

// rowFetcher pulls batches of an operation on demand.
type rowFetcher struct {
	ctx  context.Context
	d    *hiveDriver
	op   *hiveserver.TOperationHandle
	buf  []core.Row
	more bool
	err  error
}

func (f *rowFetcher) hasNext() bool {
	for len(f.buf) == 0 && f.more && f.err == nil {
		f.fetch()
	}
	return len(f.buf) > 0 || f.err != nil
}

func (f *rowFetcher) next() (core.Row, error) {
	if !f.hasNext() {
		return nil, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	row := f.buf[0]
	f.buf = f.buf[1:]
	return row, nil
}

func (f *rowFetcher) fetch() {
	req := hiveserver.NewTFetchResultsReq()
	req.OperationHandle = f.op
	req.Orientation = hiveserver.TFetchOrientation_FETCH_NEXT
	req.MaxRows = fetchSize

	resp, err := f.d.client.FetchResults(f.ctx, req)
	if err == nil {
		err = checkStatus(resp.GetStatus())
	}
	if err != nil {
		f.err = err
		return
	}

	rows, err := decodeRowSet(resp.GetResults())
	if err != nil {
		f.err = err
		return
	}
	f.buf = rows
	// hasMoreRows is not reliable across server versions, an empty batch ends the stream
	f.more = len(rows) > 0
}

// decodeRowSet turns a fetched batch into rows. Protocol V6 and later
// answer with columns, older servers with rows.
func decodeRowSet(set *hiveserver.TRowSet) ([]core.Row, error) {
	if set == nil {
		return nil, nil
	}
	if len(set.GetBinaryColumns()) > 0 {
		return nil, errors.New("hiveserver2: binary encoded row sets are not supported")
	}

	if columns := set.GetColumns(); len(columns) > 0 {
		values := make([][]any, len(columns))
		for i, c := range columns {
			v, err := columnValues(c)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}
			if i > 0 && len(v) != len(values[0]) {
				return nil, fmt.Errorf("column %d: %d values, expected %d", i, len(v), len(values[0]))
			}
			values[i] = v
		}

		rows := make([]core.Row, len(values[0]))
		for r := range rows {
			row := make(core.Row, len(columns))
			for c := range columns {
				row[c] = values[c][r]
			}
			rows[r] = row
		}
		return rows, nil
	}

	rows := make([]core.Row, 0, len(set.GetRows()))
	for _, r := range set.GetRows() {
		row := make(core.Row, 0, len(r.GetColVals()))
		for _, v := range r.GetColVals() {
			row = append(row, cellValue(v))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnValues(c *hiveserver.TColumn) ([]any, error) {
	switch {
	case c.IsSetBoolVal():
		return withNulls(c.GetBoolVal().GetValues(), c.GetBoolVal().GetNulls()), nil
	case c.IsSetByteVal():
		return withNulls(c.GetByteVal().GetValues(), c.GetByteVal().GetNulls()), nil
	case c.IsSetI16Val():
		return withNulls(c.GetI16Val().GetValues(), c.GetI16Val().GetNulls()), nil
	case c.IsSetI32Val():
		return withNulls(c.GetI32Val().GetValues(), c.GetI32Val().GetNulls()), nil
	case c.IsSetI64Val():
		return withNulls(c.GetI64Val().GetValues(), c.GetI64Val().GetNulls()), nil
	case c.IsSetDoubleVal():
		return withNulls(c.GetDoubleVal().GetValues(), c.GetDoubleVal().GetNulls()), nil
	case c.IsSetStringVal():
		return withNulls(c.GetStringVal().GetValues(), c.GetStringVal().GetNulls()), nil
	case c.IsSetBinaryVal():
		return withNulls(c.GetBinaryVal().GetValues(), c.GetBinaryVal().GetNulls()), nil
	}
	return nil, errors.New("no values set")
}

// withNulls boxes values, leaving nil where the bit of the null bitmap is set.
func withNulls[T any](values []T, nulls []byte) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if i/8 < len(nulls) && nulls[i/8]&(1<<(i%8)) != 0 {
			continue
		}
		out[i] = v
	}
	return out
}

func cellValue(v *hiveserver.TColumnValue) any {
	switch {
	case v.IsSetBoolVal():
		return optional(v.GetBoolVal().IsSetValue(), v.GetBoolVal().GetValue())
	case v.IsSetByteVal():
		return optional(v.GetByteVal().IsSetValue(), v.GetByteVal().GetValue())
	case v.IsSetI16Val():
		return optional(v.GetI16Val().IsSetValue(), v.GetI16Val().GetValue())
	case v.IsSetI32Val():
		return optional(v.GetI32Val().IsSetValue(), v.GetI32Val().GetValue())
	case v.IsSetI64Val():
		return optional(v.GetI64Val().IsSetValue(), v.GetI64Val().GetValue())
	case v.IsSetDoubleVal():
		return optional(v.GetDoubleVal().IsSetValue(), v.GetDoubleVal().GetValue())
	case v.IsSetStringVal():
		return optional(v.GetStringVal().IsSetValue(), v.GetStringVal().GetValue())
	}
	return nil
}

func optional[T any](set bool, v T) any {
	if !set {
		return nil
	}
	return v
}
