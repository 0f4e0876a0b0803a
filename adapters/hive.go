package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/beltran/gohive/hiveserver"

	"github.com/hivekrb/hivekrb/auth/kerberos"
	"github.com/hivekrb/hivekrb/core"
)

// Register client
func init() {
	_ = register(&Hive{}, "hive", "hive2")
}

var _ core.Adapter = (*Hive)(nil)

// clientProtocol is the TCLIService version asked for when opening a session.
// The server answers with the highest version both sides know.
const clientProtocol = hiveserver.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V8

// Hive talks TCLIService to HiveServer2 in HTTP transport mode
// (hive.server2.transport.mode=http). Authentication is carried only by the
// SPNEGO Negotiate header built from the Kerberos identity, no username,
// password or token is sent.
type Hive struct{}

// spnegoTransport signs every thrift request for spn.
type spnegoTransport struct {
	base   http.RoundTripper
	signer spnegoSigner
	spn    string
}

func (t *spnegoTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// the thrift client shares one header map between requests
	req = req.Clone(req.Context())
	if err := t.signer.SetSPNEGOHeader(req, t.spn); err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// ServerError is a HiveServer2 answer with an error status.
type ServerError struct {
	Status   string
	SQLState string
	Code     int32
	Message  string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	if e.SQLState == "" {
		return fmt.Sprintf("hiveserver2 %s: %s", e.Status, msg)
	}
	return fmt.Sprintf("hiveserver2 %s: %s (SQLState %s, code %d)", e.Status, msg, e.SQLState, e.Code)
}

func checkStatus(status *hiveserver.TStatus) error {
	if status == nil {
		return errors.New("hiveserver2: response without status")
	}
	switch status.GetStatusCode() {
	case hiveserver.TStatusCode_SUCCESS_STATUS, hiveserver.TStatusCode_SUCCESS_WITH_INFO_STATUS:
		return nil
	}
	return &ServerError{
		Status:   status.GetStatusCode().String(),
		SQLState: status.GetSqlState(),
		Code:     status.GetErrorCode(),
		Message:  status.GetErrorMessage(),
	}
}

// Connect parses the target and opens a HiveServer2 session.
// target has the form of:
//
//	hive2://<host>:<port>/<database>;principal=<service principal>[;httpPath=<path>][;ssl=true]
//
// The session starts in <database>.
func (h *Hive) Connect(ctx context.Context, target string, identity core.Identity) (core.Driver, error) {
	ep, err := core.ParseTarget(target)
	if err != nil {
		return nil, err
	}

	signer, ok := identity.(spnegoSigner)
	if !ok {
		return nil, fmt.Errorf("hive: %w", errNoSPNEGO)
	}

	trans, err := thrift.NewTHttpClientWithOptions(ep.URL(), thrift.THttpClientOptions{
		Client: &http.Client{
			Transport: &spnegoTransport{
				base:   http.DefaultTransport,
				signer: signer,
				spn:    kerberos.ServiceSPN(ep.RemotePrincipal, ep.Host),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("invalid hive endpoint %q: %w", ep.URL(), err)
	}

	protocol := thrift.NewTBinaryProtocolConf(trans, nil)
	client := hiveserver.NewTCLIServiceClient(thrift.NewTStandardClient(protocol, protocol))

	req := hiveserver.NewTOpenSessionReq()
	req.ClientProtocol = clientProtocol
	req.Configuration = map[string]string{"use:database": ep.Database}

	resp, err := client.OpenSession(ctx, req)
	if err == nil {
		err = checkStatus(resp.GetStatus())
	}
	if err == nil && !resp.IsSetSessionHandle() {
		err = errors.New("hiveserver2: no session handle returned")
	}
	if err != nil {
		_ = trans.Close()
		return nil, fmt.Errorf("failed opening hive session: %w", err)
	}

	return &hiveDriver{
		client:  client,
		trans:   trans,
		session: resp.GetSessionHandle(),
	}, nil
}
